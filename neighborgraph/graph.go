package neighborgraph

import (
	"math"

	"github.com/carbocation/snpmix/catwalk"
	"gonum.org/v1/gonum/graph/simple"
)

// EdgeWeightOffset is added to every SNP distance to form the edge weight, so
// that identical samples are still joined by a positive-weight edge.
const EdgeWeightOffset = 0.01

// Centrality is the rescaled betweenness of the subject sample within its
// neighbour graph.
type Centrality struct {
	// Vertex is the subject's min-max rescaled vertex betweenness, cube
	// rooted.
	Vertex float64

	// Edge is the min-max rescaled, square rooted edge betweenness of the
	// last inserted edge incident to the subject, or 0 if there is none.
	Edge float64

	Vertices int
	Edges    int
}

// NeighbourGraph is the weighted undirected graph over a subject and its
// neighbours. Vertex IDs follow first-seen order with the subject last.
type NeighbourGraph struct {
	g       *simple.WeightedUndirectedGraph
	ids     map[string]int64
	subject int64

	// edges in insertion order, one entry per distinct vertex pair, and the
	// reverse lookup.
	edges     [][2]int64
	edgeIndex map[[2]int64]int

	// lastSubjectEdge is the index into edges of the most recently inserted
	// edge touching the subject, or -1.
	lastSubjectEdge int
}

// BuildGraph builds the neighbour graph of subject. Self pairs and pairs
// naming a vertex outside neighbours ∪ {subject} are ignored. A pair observed
// twice keeps its first position and its latest weight.
func BuildGraph(subject string, neighbours []string, distances []catwalk.PairwiseDistance) *NeighbourGraph {
	ng := &NeighbourGraph{
		g:               simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		ids:             make(map[string]int64, len(neighbours)+1),
		edgeIndex:       make(map[[2]int64]int),
		lastSubjectEdge: -1,
	}

	addVertex := func(name string) int64 {
		if id, ok := ng.ids[name]; ok {
			return id
		}
		id := int64(len(ng.ids))
		ng.ids[name] = id
		ng.g.AddNode(simple.Node(id))
		return id
	}
	for _, n := range neighbours {
		if n != subject {
			addVertex(n)
		}
	}
	ng.subject = addVertex(subject)

	for _, d := range distances {
		u, okU := ng.ids[d.A]
		v, okV := ng.ids[d.B]
		if !okU || !okV || u == v {
			continue
		}
		key := edgeKey(u, v)

		ng.g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(u),
			T: simple.Node(v),
			W: float64(d.Distance) + EdgeWeightOffset,
		})

		idx, seen := ng.edgeIndex[key]
		if !seen {
			idx = len(ng.edges)
			ng.edgeIndex[key] = idx
			ng.edges = append(ng.edges, key)
		}
		if u == ng.subject || v == ng.subject {
			ng.lastSubjectEdge = idx
		}
	}

	return ng
}

func edgeKey(u, v int64) [2]int64 {
	if v < u {
		u, v = v, u
	}
	return [2]int64{u, v}
}

// EdgeCount is the number of distinct vertex pairs joined by an edge.
func (ng *NeighbourGraph) EdgeCount() int {
	return len(ng.edges)
}

// Centrality computes weighted vertex and edge betweenness over the whole
// graph and returns the subject's rescaled values.
func (ng *NeighbourGraph) Centrality() Centrality {
	out := Centrality{Vertices: len(ng.ids), Edges: len(ng.edges)}

	vertexScores, edgeScores := ng.betweenness()
	out.Vertex = Rescale(vertexScores, 1.0/3)[ng.subject]
	if ng.lastSubjectEdge >= 0 {
		out.Edge = Rescale(edgeScores, 0.5)[ng.lastSubjectEdge]
	}

	return out
}

// Rescale maps values linearly onto [0, 1] by min-max, clamps, and raises each
// result to exponent. If all values are equal every result is 0, unlike
// igraph's rescale which returns the midpoint, so that a graph without any
// shortest-path traffic scores 0.
func Rescale(values []float64, exponent float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return out
	}

	for i, v := range values {
		x := (v - lo) / (hi - lo)
		x = math.Max(0, math.Min(1, x))
		out[i] = math.Pow(x, exponent)
	}

	return out
}
