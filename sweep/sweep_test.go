package sweep

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/carbocation/snpmix/catwalk"
	"github.com/carbocation/snpmix/neighborgraph"
	"github.com/carbocation/snpmix/roc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService places samples on a line; the distance between two samples is
// their index difference plus one.
type fakeService struct {
	samples   []string
	broken    string
	failAt    int
	listCalls int32
}

func newFakeService() *fakeService {
	return &fakeService{
		samples: []string{"o1:01-01-2021", "o1+o2", "o2:02-01-2021", "o3:03-01-2021", "o3+o4", "o4:04-01-2021"},
		failAt:  -1,
	}
}

func (f *fakeService) index(name string) int {
	for i, s := range f.samples {
		if s == name {
			return i
		}
	}
	return -1
}

func dist(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return j - i + 1
}

func (f *fakeService) ListSamples(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&f.listCalls, 1)
	out := append([]string(nil), f.samples...)
	if f.broken != "" {
		out = append(out, f.broken)
	}
	return out, nil
}

func (f *fakeService) Neighbours(ctx context.Context, name string, cutoff int) ([]catwalk.Neighbor, error) {
	if cutoff == f.failAt {
		return nil, catwalk.ErrCollaboratorUnavailable
	}
	if name == f.broken {
		return nil, &catwalk.StatusError{Method: http.MethodGet, Path: "/neighbours/" + name, StatusCode: http.StatusNotFound}
	}

	i := f.index(name)
	out := []catwalk.Neighbor{}
	for j, s := range f.samples {
		if j != i && dist(i, j) <= cutoff {
			out = append(out, catwalk.Neighbor{Name: s, Distance: dist(i, j)})
		}
	}
	return out, nil
}

func (f *fakeService) PairwiseDistances(ctx context.Context, names []string) ([]catwalk.PairwiseDistance, error) {
	out := []catwalk.PairwiseDistance{}
	for a := 0; a < len(names); a++ {
		for b := a + 1; b < len(names); b++ {
			out = append(out, catwalk.PairwiseDistance{A: names[a], B: names[b], Distance: dist(f.index(names[a]), f.index(names[b]))})
		}
	}
	return out, nil
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, uniqueSorted([]int{5, 1, 3, 1, 5}))
	assert.Empty(t, uniqueSorted(nil))
}

func TestRun(t *testing.T) {
	svc := newFakeService()
	svc.broken = "gone:01-01-2021"
	svc.failAt = 13

	opts := DefaultOptions()
	opts.OutDir = t.TempDir()
	opts.Workers = 3
	opts.PlotCurves = true

	results, err := New(svc, opts, nil).Run(context.Background(), []int{13, 10, 1, 10})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.EqualValues(t, 3, atomic.LoadInt32(&svc.listCalls))

	assert.Equal(t, 1, results[0].Cutoff)
	assert.Equal(t, 10, results[1].Cutoff)
	assert.Equal(t, 13, results[2].Cutoff)

	// k1: nobody has a neighbour, so every sample is dropped.
	k1 := results[0]
	require.NoError(t, k1.Err)
	assert.Equal(t, 7, k1.Samples)
	assert.Equal(t, 6, k1.Analyzed)
	assert.Equal(t, 1, k1.Failed)
	assert.Equal(t, 0, k1.Kept)
	for _, s := range k1.Scores {
		assert.True(t, errors.Is(s.Err, roc.ErrInsufficientData), s.Column)
	}
	assert.FileExists(t, filepath.Join(opts.OutDir, "k1", roc.FileName))

	// k10: everyone neighbours everyone.
	k10 := results[1]
	require.NoError(t, k10.Err)
	assert.Equal(t, 6, k10.Kept)
	assert.Equal(t, 2, k10.Mixed)
	require.Len(t, k10.Scores, len(neighborgraph.Columns()))
	for _, s := range k10.Scores {
		require.NoError(t, s.Err, s.Column)
		assert.True(t, s.AUC >= 0 && s.AUC <= 1, s.Column)
	}

	dir := filepath.Join(opts.OutDir, "k10")
	for _, name := range []string{FeaturesFileName, CleanedFeaturesFileName, roc.FileName} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(dir, CurvesDirName, "roc_1_mean.png"))

	f, err := os.Open(filepath.Join(dir, CleanedFeaturesFileName))
	require.NoError(t, err)
	defer f.Close()
	recs, err := neighborgraph.ReadTable(f)
	require.NoError(t, err)
	assert.Len(t, recs, 6)

	g, err := os.Open(filepath.Join(dir, roc.FileName))
	require.NoError(t, err)
	defer g.Close()
	scores, err := roc.ReadScores(g)
	require.NoError(t, err)
	require.Len(t, scores, len(neighborgraph.Columns()))
	assert.Equal(t, neighborgraph.ColCountNeighbours, scores[0].Column)

	// k13: the collaborator went away; nothing was written.
	k13 := results[2]
	assert.True(t, errors.Is(k13.Err, catwalk.ErrCollaboratorUnavailable))
	entries, _ := os.ReadDir(filepath.Join(opts.OutDir, "k13"))
	assert.Empty(t, entries)

	m, err := ReadManifest(opts.OutDir)
	require.NoError(t, err)
	require.Len(t, m.Cutoffs, 3)
	assert.Equal(t, "ok", m.Cutoffs[1].Status)
	assert.Equal(t, "failed", m.Cutoffs[2].Status)
	assert.NotEmpty(t, m.Cutoffs[2].Error)
	assert.Equal(t, neighborgraph.SchemaVersion, m.SchemaVersion)
	assert.Equal(t, len(neighborgraph.Columns()), m.Cutoffs[1].Scored)
}

// matrixService answers from a fixed symmetric distance table.
type matrixService struct {
	names     []string
	distances map[[2]string]int
}

func (m *matrixService) distance(a, b string) int {
	if d, ok := m.distances[[2]string{a, b}]; ok {
		return d
	}
	return m.distances[[2]string{b, a}]
}

func (m *matrixService) ListSamples(ctx context.Context) ([]string, error) {
	return m.names, nil
}

func (m *matrixService) Neighbours(ctx context.Context, name string, cutoff int) ([]catwalk.Neighbor, error) {
	out := []catwalk.Neighbor{}
	for _, other := range m.names {
		if other != name && m.distance(name, other) <= cutoff {
			out = append(out, catwalk.Neighbor{Name: other, Distance: m.distance(name, other)})
		}
	}
	return out, nil
}

func (m *matrixService) PairwiseDistances(ctx context.Context, names []string) ([]catwalk.PairwiseDistance, error) {
	out := []catwalk.PairwiseDistance{}
	for a := 0; a < len(names); a++ {
		for b := a + 1; b < len(names); b++ {
			out = append(out, catwalk.PairwiseDistance{A: names[a], B: names[b], Distance: m.distance(names[a], names[b])})
		}
	}
	return out, nil
}

func TestRunCutoffManualAUC(t *testing.T) {
	const mixed = "o1+o2"
	svc := &matrixService{
		names: []string{mixed, "o1:01-01-2021", "o2:02-01-2021", "o3:03-01-2021"},
		distances: map[[2]string]int{
			{mixed, "o1:01-01-2021"}:           3,
			{mixed, "o2:02-01-2021"}:           2,
			{mixed, "o3:03-01-2021"}:           2,
			{"o1:01-01-2021", "o2:02-01-2021"}: 1,
			{"o1:01-01-2021", "o3:03-01-2021"}: 3,
			{"o2:02-01-2021", "o3:03-01-2021"}: 1,
		},
	}

	opts := DefaultOptions()
	opts.OutDir = t.TempDir()

	res := New(svc, opts, nil).RunCutoff(context.Background(), 3)
	require.NoError(t, res.Err)
	assert.Equal(t, 4, res.Kept)
	assert.Equal(t, 1, res.Mixed)

	var score *roc.Score
	for i := range res.Scores {
		if res.Scores[i].Column == "1_mean" {
			score = &res.Scores[i]
		}
	}
	require.NotNil(t, score)
	require.NoError(t, score.Err)

	// 1_mean: mixed 7/3; o1 7/3, o2 4/3, o3 2. Thresholds 7/3, 2, 4/3 give
	// (0,0) (1/3,1) (2/3,1) (1,1), so the trapezoids sum to 1/6 + 2/3.
	require.Len(t, score.Curve, 4)
	assert.InDelta(t, 1.0/3, score.Curve[1].FPR, 1e-12)
	assert.InDelta(t, 1.0, score.Curve[1].TPR, 1e-12)
	assert.InDelta(t, 5.0/6, score.AUC, 1e-12)
	assert.InDelta(t, math.Sqrt2/3, score.PearsonR, 1e-12)
}

func TestRunCutoffKeepsIncompleteRowsWhenAllowed(t *testing.T) {
	svc := newFakeService()

	opts := DefaultOptions()
	opts.OutDir = t.TempDir()
	opts.RequireComplete = false
	opts.MinNeighbours = 0

	// At cutoff 2 each sample sees only its direct neighbours on the line.
	res := New(svc, opts, nil).RunCutoff(context.Background(), 2)
	require.NoError(t, res.Err)
	assert.Equal(t, 6, res.Kept)

	opts.RequireComplete = true
	res = New(svc, opts, nil).RunCutoff(context.Background(), 2)
	require.NoError(t, res.Err)
	assert.Less(t, res.Kept, 6)
}

func TestRunCutoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.OutDir = t.TempDir()

	res := New(newFakeService(), opts, nil).RunCutoff(ctx, 5)
	assert.True(t, errors.Is(res.Err, context.Canceled))
	_, err := os.Stat(CutoffDir(opts.OutDir, 5))
	assert.True(t, os.IsNotExist(err))
}

func TestStageDiscard(t *testing.T) {
	dir := t.TempDir()

	var s stage
	require.NoError(t, s.write(filepath.Join(dir, "a.csv"), func(w io.Writer) error {
		_, err := w.Write([]byte("x"))
		return err
	}))
	assert.Error(t, s.write(filepath.Join(dir, "b.csv"), func(w io.Writer) error {
		return errors.New("boom")
	}))
	s.discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
