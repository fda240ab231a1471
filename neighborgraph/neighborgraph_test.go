package neighborgraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/carbocation/snpmix/catwalk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollaborator struct {
	neighbours map[string][]catwalk.Neighbor
	pairwise   []catwalk.PairwiseDistance
	err        error
}

func (f *fakeCollaborator) Neighbours(ctx context.Context, name string, cutoff int) ([]catwalk.Neighbor, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []catwalk.Neighbor{}
	for _, n := range f.neighbours[name] {
		if n.Distance <= cutoff {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeCollaborator) PairwiseDistances(ctx context.Context, names []string) ([]catwalk.PairwiseDistance, error) {
	want := make(map[string]bool)
	for _, n := range names {
		want[n] = true
	}
	out := []catwalk.PairwiseDistance{}
	for _, p := range f.pairwise {
		if want[p.A] && want[p.B] {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestColumns(t *testing.T) {
	cols := Columns()
	assert.Len(t, cols, 2*(1+2+len(Percentiles)+MaxSNPThreshold+1)+2)
	assert.Equal(t, ColCountNeighbours, cols[0])
	assert.Equal(t, "1_mean", cols[1])
	assert.Equal(t, "1_percentile_5", cols[3])
	assert.Equal(t, "1_neighbours_snp_0", cols[8])
	assert.Equal(t, "1_neighbours_snp_15", cols[23])
	assert.Equal(t, ColCountNeighbourMatrix, cols[24])
	assert.Equal(t, ColEdgeBetweenness, cols[len(cols)-1])
	assert.Equal(t, ColVertexBetweenness, cols[len(cols)-2])

	cols[0] = "changed"
	assert.Equal(t, ColCountNeighbours, Columns()[0])
}

func TestIsMixedName(t *testing.T) {
	assert.True(t, IsMixedName("a+b"))
	assert.False(t, IsMixedName("a"))
	assert.False(t, IsMixedName("a+b:01-01-2020"))
	assert.False(t, IsMixedName("a:01-01-2020"))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Percentile(sorted, 25), 1e-12)
	assert.InDelta(t, 2.5, Percentile(sorted, 50), 1e-12)
	assert.InDelta(t, 1.15, Percentile(sorted, 5), 1e-12)
	assert.InDelta(t, 3.85, Percentile(sorted, 95), 1e-12)
	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 4.0, Percentile(sorted, 100))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 50))
}

func TestDescribe(t *testing.T) {
	rec := NewFeatureRecord("s")
	require.NoError(t, describe(rec, stepNeighbours, []int{10, 1, 3, 2, 4}))

	get := func(col string) float64 {
		v, ok := rec.Get(col)
		require.True(t, ok, col)
		return v
	}

	assert.InDelta(t, 4.0, get("1_mean"), 1e-12)
	assert.InDelta(t, math.Sqrt(12.5), get("1_sd"), 1e-12)
	assert.InDelta(t, 3.0, get("1_percentile_50"), 1e-12)
	assert.InDelta(t, 2.0, get("1_percentile_25"), 1e-12)
	assert.InDelta(t, 8.8, get("1_percentile_95"), 1e-12)
	assert.Equal(t, 0.0, get("1_neighbours_snp_0"))
	assert.Equal(t, 3.0, get("1_neighbours_snp_3"))
	assert.Equal(t, 4.0, get("1_neighbours_snp_9"))
	assert.Equal(t, 5.0, get("1_neighbours_snp_15"))

	// A single distance yields no statistics.
	rec = NewFeatureRecord("s")
	require.NoError(t, describe(rec, stepPairwise, []int{3}))
	assert.False(t, rec.Has("2_mean"))
	assert.False(t, rec.Has("2_neighbours_snp_3"))
}

func TestRescale(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Rescale([]float64{2, 2, 2}, 0.5))
	assert.Equal(t, []float64{}, Rescale(nil, 0.5))

	got := Rescale([]float64{0, 5, 10}, 1)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, got, 1e-12)

	got = Rescale([]float64{0, 2, 16}, 0.5)
	assert.InDeltaSlice(t, []float64{0, math.Sqrt(0.125), 1}, got, 1e-12)
	for _, v := range got {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestCentralityPathGraph(t *testing.T) {
	// a - b - s - c
	neighbours := []string{"a", "b", "c"}

	edges := []catwalk.PairwiseDistance{
		{A: "a", B: "b", Distance: 1},
		{A: "b", B: "s", Distance: 1},
		{A: "s", B: "c", Distance: 1},
	}
	c := BuildGraph("s", neighbours, edges).Centrality()
	assert.Equal(t, 4, c.Vertices)
	assert.Equal(t, 3, c.Edges)
	assert.InDelta(t, 1.0, c.Vertex, 1e-12)
	// s-c was inserted last and carries the least traffic.
	assert.InDelta(t, 0.0, c.Edge, 1e-12)

	edges = []catwalk.PairwiseDistance{
		{A: "a", B: "b", Distance: 1},
		{A: "s", B: "c", Distance: 1},
		{A: "b", B: "s", Distance: 1},
	}
	c = BuildGraph("s", neighbours, edges).Centrality()
	assert.InDelta(t, 1.0, c.Vertex, 1e-12)
	// b-s is the bridge of the path.
	assert.InDelta(t, 1.0, c.Edge, 1e-12)
}

func TestCentralityLeafSubject(t *testing.T) {
	// s - a - b: s is a leaf, a is the only cut vertex.
	edges := []catwalk.PairwiseDistance{
		{A: "s", B: "a", Distance: 2},
		{A: "a", B: "b", Distance: 0},
	}
	c := BuildGraph("s", []string{"a", "b"}, edges).Centrality()
	assert.Equal(t, 0.0, c.Vertex)
	assert.Equal(t, 0.0, c.Edge)
}

func TestCentralityIsolatedSubject(t *testing.T) {
	edges := []catwalk.PairwiseDistance{
		{A: "a", B: "b", Distance: 1},
		{A: "b", B: "c", Distance: 1},
		{A: "s", B: "s", Distance: 0},
		{A: "s", B: "unknown", Distance: 0},
	}
	c := BuildGraph("s", []string{"a", "b", "c"}, edges).Centrality()
	assert.Equal(t, 2, c.Edges)
	assert.Equal(t, 0.0, c.Vertex)
	assert.Equal(t, 0.0, c.Edge)
}

func TestBetweennessCountsTiedPaths(t *testing.T) {
	// Square a-b-c-d with a tail c-e. Opposite corners are joined by two
	// shortest paths, which share the traffic. Scores count both directions.
	edges := []catwalk.PairwiseDistance{
		{A: "a", B: "b", Distance: 1},
		{A: "b", B: "c", Distance: 1},
		{A: "c", B: "d", Distance: 1},
		{A: "d", B: "a", Distance: 1},
		{A: "c", B: "e", Distance: 1},
	}
	ng := BuildGraph("e", []string{"a", "b", "c", "d"}, edges)
	vertex, edge := ng.betweenness()

	// IDs follow first-seen order: a b c d, then e.
	assert.InDeltaSlice(t, []float64{1, 2, 7, 2, 0}, vertex, 1e-9)
	assert.InDeltaSlice(t, []float64{5, 7, 7, 5, 8}, edge, 1e-9)
}

func TestBetweennessTiesSurviveRounding(t *testing.T) {
	// a-b-c costs 0.01+2.01 and a-d-c costs 1.01+1.01: the same distance
	// apart from floating point rounding.
	edges := []catwalk.PairwiseDistance{
		{A: "a", B: "b", Distance: 0},
		{A: "b", B: "c", Distance: 2},
		{A: "a", B: "d", Distance: 1},
		{A: "d", B: "c", Distance: 1},
	}
	ng := BuildGraph("a", []string{"b", "c", "d"}, edges)
	vertex, _ := ng.betweenness()

	// IDs: b c d a. b and d split the a-c traffic, a alone carries b-d.
	assert.InDeltaSlice(t, []float64{1, 0, 1, 2}, vertex, 1e-9)
}

func TestCentralityGridIsFast(t *testing.T) {
	// Every edge is one SNP, so corner to corner has C(18, 9) shortest paths.
	const k = 10
	name := func(i, j int) string { return fmt.Sprintf("g%d_%d", i, j) }

	var neighbours []string
	var edges []catwalk.PairwiseDistance
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			neighbours = append(neighbours, name(i, j))
			if i+1 < k {
				edges = append(edges, catwalk.PairwiseDistance{A: name(i, j), B: name(i+1, j), Distance: 1})
			}
			if j+1 < k {
				edges = append(edges, catwalk.PairwiseDistance{A: name(i, j), B: name(i, j+1), Distance: 1})
			}
		}
	}
	edges = append(edges, catwalk.PairwiseDistance{A: "s", B: name(0, 0), Distance: 1})

	start := time.Now()
	c := BuildGraph("s", neighbours, edges).Centrality()
	elapsed := time.Since(start)

	assert.Equal(t, k*k+1, c.Vertices)
	assert.Equal(t, 2*k*(k-1)+1, c.Edges)
	assert.Equal(t, 0.0, c.Vertex)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestAnalyzeGatesOnGraphEdges(t *testing.T) {
	// Two rows come back but the self pair never becomes an edge.
	collab := &fakeCollaborator{
		neighbours: map[string][]catwalk.Neighbor{
			"s": {{Name: "a", Distance: 1}, {Name: "b", Distance: 2}},
		},
		pairwise: []catwalk.PairwiseDistance{
			{A: "a", B: "s", Distance: 1},
			{A: "s", B: "s", Distance: 0},
		},
	}

	rec, err := NewAnalyzer(collab, Options{MinPairwiseEdges: 2}, nil).Analyze(context.Background(), "s", 5)
	require.NoError(t, err)

	v, ok := rec.Get(ColCountNeighbourMatrix)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.False(t, rec.Has(ColVertexBetweenness))
	assert.False(t, rec.Has(ColEdgeBetweenness))
}

func TestAnalyze(t *testing.T) {
	collab := &fakeCollaborator{
		neighbours: map[string][]catwalk.Neighbor{
			"s": {{Name: "a", Distance: 2}, {Name: "b", Distance: 1}, {Name: "c", Distance: 1}, {Name: "far", Distance: 30}},
		},
		pairwise: []catwalk.PairwiseDistance{
			{A: "a", B: "b", Distance: 1},
			{A: "b", B: "s", Distance: 1},
			{A: "s", B: "c", Distance: 1},
			{A: "far", B: "s", Distance: 30},
		},
	}

	rec, err := NewAnalyzer(collab, Options{}, nil).Analyze(context.Background(), "s", 5)
	require.NoError(t, err)

	assert.Equal(t, "s", rec.SampleName)
	assert.False(t, rec.Mixed)
	assert.Equal(t, 3, rec.NeighbourCount())

	v, ok := rec.Get("1_mean")
	require.True(t, ok)
	assert.InDelta(t, 4.0/3, v, 1e-12)

	v, ok = rec.Get(ColCountNeighbourMatrix)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = rec.Get("2_neighbours_snp_0")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = rec.Get(ColVertexBetweenness)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, ok = rec.Get(ColEdgeBetweenness)
	require.True(t, ok)
	assert.InDelta(t, 0.0, v, 1e-12)

	assert.True(t, rec.Complete())
}

func TestAnalyzeSparseNeighbourhood(t *testing.T) {
	collab := &fakeCollaborator{
		neighbours: map[string][]catwalk.Neighbor{
			"x+y": {{Name: "a", Distance: 0}},
		},
		pairwise: []catwalk.PairwiseDistance{{A: "a", B: "x+y", Distance: 0}},
	}

	rec, err := NewAnalyzer(collab, Options{}, nil).Analyze(context.Background(), "x+y", 5)
	require.NoError(t, err)

	assert.True(t, rec.Mixed)
	assert.Equal(t, 1, rec.NeighbourCount())
	assert.False(t, rec.Has("1_mean"))
	assert.False(t, rec.Has("2_mean"))
	assert.False(t, rec.Has(ColVertexBetweenness))
	assert.False(t, rec.Complete())

	// Lowering the threshold enables centrality on a single edge.
	rec, err = NewAnalyzer(collab, Options{MinPairwiseEdges: 1}, nil).Analyze(context.Background(), "x+y", 5)
	require.NoError(t, err)
	v, ok := rec.Get(ColVertexBetweenness)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	v, ok = rec.Get(ColEdgeBetweenness)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestAnalyzeMinPairwiseEdges(t *testing.T) {
	collab := &fakeCollaborator{
		neighbours: map[string][]catwalk.Neighbor{
			"s": {{Name: "a", Distance: 1}, {Name: "b", Distance: 1}},
		},
		pairwise: []catwalk.PairwiseDistance{
			{A: "a", B: "s", Distance: 1},
			{A: "b", B: "s", Distance: 1},
		},
	}

	rec, err := NewAnalyzer(collab, Options{MinPairwiseEdges: 4}, nil).Analyze(context.Background(), "s", 5)
	require.NoError(t, err)
	assert.True(t, rec.Has("2_mean"))
	assert.False(t, rec.Has(ColVertexBetweenness))
}

func TestAnalyzeCollaboratorError(t *testing.T) {
	collab := &fakeCollaborator{err: catwalk.ErrCollaboratorUnavailable}

	_, err := NewAnalyzer(collab, Options{}, nil).Analyze(context.Background(), "s", 5)
	assert.True(t, errors.Is(err, catwalk.ErrCollaboratorUnavailable))
}

func TestTableRoundTrip(t *testing.T) {
	full := NewFeatureRecord("a+b")
	for i, col := range Columns() {
		full.Set(col, float64(i)+0.5)
	}
	sparse := NewFeatureRecord("c:01-01-2021")
	sparse.Set(ColCountNeighbours, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []*FeatureRecord{full, sparse}))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(header, "sample_name,mixed,1_count_neighbours,1_mean,"))

	got, err := ReadTable(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, full, got[0])
	assert.Equal(t, "c:01-01-2021", got[1].SampleName)
	assert.False(t, got[1].Mixed)
	assert.Equal(t, 0, got[1].NeighbourCount())
	assert.False(t, got[1].Has("1_mean"))
}

func TestReadTableRejectsUnknownColumns(t *testing.T) {
	_, err := ReadTable(strings.NewReader("sample_name,mixed,1_mean,3_new_feature\ns,false,1,2\n"))
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}
