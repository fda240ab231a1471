package neighborgraph

import (
	"context"
	"fmt"

	"github.com/carbocation/snpmix/catwalk"
	"go.uber.org/zap"
)

// Collaborator answers neighbour and pairwise distance queries. *catwalk.Client
// satisfies it.
type Collaborator interface {
	Neighbours(ctx context.Context, name string, cutoff int) ([]catwalk.Neighbor, error)
	PairwiseDistances(ctx context.Context, names []string) ([]catwalk.PairwiseDistance, error)
}

// DefaultMinPairwiseEdges is the smallest number of pairwise distances for
// which betweenness is computed.
const DefaultMinPairwiseEdges = 2

// Options tune an Analyzer.
type Options struct {
	// MinPairwiseEdges is the number of graph edges needed for the centrality
	// features. Values < 1 mean DefaultMinPairwiseEdges.
	MinPairwiseEdges int
}

// Analyzer extracts the features of one sample at a time.
type Analyzer struct {
	collab Collaborator
	opts   Options
	log    *zap.Logger
}

// NewAnalyzer returns an Analyzer querying collab. A nil log discards output.
func NewAnalyzer(collab Collaborator, opts Options, log *zap.Logger) *Analyzer {
	if opts.MinPairwiseEdges < 1 {
		opts.MinPairwiseEdges = DefaultMinPairwiseEdges
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{collab: collab, opts: opts, log: log}
}

// Analyze computes the features of sampleName at the given SNP cutoff.
func (a *Analyzer) Analyze(ctx context.Context, sampleName string, cutoff int) (*FeatureRecord, error) {
	rec := NewFeatureRecord(sampleName)

	// Step 1: the subject's own neighbours.
	neighbours, err := a.collab.Neighbours(ctx, sampleName, cutoff)
	if err != nil {
		return nil, fmt.Errorf("neighbours of %s at %d: %w", sampleName, cutoff, err)
	}

	names := make([]string, 0, len(neighbours)+1)
	distances := make([]int, 0, len(neighbours))
	for _, n := range neighbours {
		names = append(names, n.Name)
		distances = append(distances, n.Distance)
	}

	rec.Set(ColCountNeighbours, float64(len(neighbours)))
	if err := describe(rec, stepNeighbours, distances); err != nil {
		return nil, fmt.Errorf("%s: neighbour statistics: %w", sampleName, err)
	}

	// Step 2: distances among the neighbours and the subject.
	names = append(names, sampleName)
	pairwise, err := a.collab.PairwiseDistances(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("pairwise distances for %s at %d: %w", sampleName, cutoff, err)
	}

	pairDistances := make([]int, 0, len(pairwise))
	for _, p := range pairwise {
		pairDistances = append(pairDistances, p.Distance)
	}

	rec.Set(ColCountNeighbourMatrix, float64(len(pairwise)))
	if err := describe(rec, stepPairwise, pairDistances); err != nil {
		return nil, fmt.Errorf("%s: pairwise statistics: %w", sampleName, err)
	}

	// Self pairs and pairs outside the neighbourhood never become edges, so
	// the gate counts the graph's edges rather than the rows returned.
	ng := BuildGraph(sampleName, names[:len(names)-1], pairwise)
	if ng.EdgeCount() >= a.opts.MinPairwiseEdges {
		c := ng.Centrality()
		rec.Set(ColVertexBetweenness, c.Vertex)
		rec.Set(ColEdgeBetweenness, c.Edge)

		a.log.Debug("computed centrality",
			zap.String("sample", sampleName),
			zap.Int("cutoff", cutoff),
			zap.Int("vertices", c.Vertices),
			zap.Int("edges", c.Edges),
			zap.Float64("vertex_betweenness", c.Vertex),
			zap.Float64("edge_betweenness", c.Edge),
		)
	}

	return rec, nil
}
