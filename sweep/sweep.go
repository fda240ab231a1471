// Package sweep evaluates the neighbour-graph features at every cutoff of a
// sweep and persists the per-cutoff feature and score tables.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/carbocation/snpmix/catwalk"
	"github.com/carbocation/snpmix/neighborgraph"
	"github.com/carbocation/snpmix/roc"
	"go.uber.org/zap"
)

const (
	FeaturesFileName        = "mixanalysis.csv"
	CleanedFeaturesFileName = "mixanalysis-cleaned.csv"
	CurvesDirName           = "roc_curves"
)

// Collaborator is everything the sweep needs from the distance service.
type Collaborator interface {
	neighborgraph.Collaborator
	ListSamples(ctx context.Context) ([]string, error)
}

type Options struct {
	// OutDir receives one k<cutoff> directory per cutoff and the manifest.
	OutDir string `json:"out_dir"`

	// Workers is the number of cutoffs evaluated concurrently.
	Workers int `json:"workers"`

	// MinNeighbours drops samples with fewer neighbours before scoring.
	MinNeighbours int `json:"min_neighbours"`

	// RequireComplete drops samples lacking any feature before scoring.
	RequireComplete bool `json:"require_complete"`

	// PlotCurves renders one ROC curve PNG per scored feature.
	PlotCurves bool `json:"plot_curves"`

	Analysis neighborgraph.Options `json:"analysis"`
}

func DefaultOptions() Options {
	return Options{
		OutDir:          ".",
		Workers:         1,
		MinNeighbours:   2,
		RequireComplete: true,
		Analysis:        neighborgraph.Options{MinPairwiseEdges: neighborgraph.DefaultMinPairwiseEdges},
	}
}

// CutoffResult is the outcome of one cutoff. When Err is set none of the
// cutoff's files were written.
type CutoffResult struct {
	Cutoff int
	Dir    string

	// Samples is the number of samples listed by the service.
	Samples int
	// Analyzed and Failed partition Samples.
	Analyzed int
	Failed   int
	// Kept is the number of analyzed samples that survived the drop policy,
	// Mixed how many of those are mixes.
	Kept  int
	Mixed int

	Scores   []roc.Score
	Duration time.Duration

	Err error
}

type Orchestrator struct {
	collab   Collaborator
	analyzer *neighborgraph.Analyzer
	opts     Options
	log      *zap.Logger
}

func New(collab Collaborator, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		collab:   collab,
		analyzer: neighborgraph.NewAnalyzer(collab, opts.Analysis, log),
		opts:     opts,
		log:      log,
	}
}

// CutoffDir is the output directory of one cutoff.
func CutoffDir(outDir string, cutoff int) string {
	return filepath.Join(outDir, "k"+strconv.Itoa(cutoff))
}

// Run evaluates every cutoff, in ascending order of cutoff regardless of
// completion order. A failing cutoff is reported in its CutoffResult and does
// not affect the others. The returned error covers only the manifest.
func (o *Orchestrator) Run(ctx context.Context, cutoffs []int) ([]CutoffResult, error) {
	started := time.Now()

	ks := uniqueSorted(cutoffs)
	results := make([]CutoffResult, len(ks))

	o.log.Info("starting sweep", zap.Ints("cutoffs", ks), zap.Int("workers", o.opts.Workers), zap.String("out_dir", o.opts.OutDir))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.opts.Workers)
	for i, k := range ks {
		// Will block after Workers simultaneous cutoffs are running
		semaphore <- struct{}{}

		wg.Add(1)
		go func(i, k int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = o.RunCutoff(ctx, k)
		}(i, k)
	}
	wg.Wait()

	if err := writeManifest(o.opts.OutDir, newManifest(o.opts, started, results)); err != nil {
		return results, fmt.Errorf("writing manifest: %w", err)
	}

	return results, nil
}

// RunCutoff evaluates a single cutoff and writes its outputs.
func (o *Orchestrator) RunCutoff(ctx context.Context, cutoff int) CutoffResult {
	start := time.Now()
	res := CutoffResult{Cutoff: cutoff, Dir: CutoffDir(o.opts.OutDir, cutoff)}
	log := o.log.With(zap.Int("cutoff", cutoff))

	defer func() {
		res.Duration = time.Since(start)
		if res.Err != nil {
			log.Error("cutoff failed", zap.Error(res.Err), zap.Duration("duration", res.Duration))
			return
		}
		log.Info("cutoff finished",
			zap.Int("samples", res.Samples),
			zap.Int("failed", res.Failed),
			zap.Int("kept", res.Kept),
			zap.Int("mixed", res.Mixed),
			zap.Duration("duration", res.Duration),
		)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	// The sample list can change between cutoffs, so it is fetched anew.
	names, err := o.collab.ListSamples(ctx)
	if err != nil {
		res.Err = fmt.Errorf("listing samples: %w", err)
		return res
	}
	res.Samples = len(names)

	records := make([]*neighborgraph.FeatureRecord, 0, len(names))
	for _, name := range names {
		rec, err := o.analyzer.Analyze(ctx, name, cutoff)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, catwalk.ErrCollaboratorUnavailable) {
				res.Err = err
				return res
			}
			res.Failed++
			log.Warn("sample excluded", zap.String("sample", name), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	res.Analyzed = len(records)

	cleaned := o.keep(records)
	res.Kept = len(cleaned)
	for _, rec := range cleaned {
		if rec.Mixed {
			res.Mixed++
		}
	}

	res.Scores = roc.ScoreTable(cleaned, neighborgraph.Columns())
	for _, s := range res.Scores {
		if s.Err != nil {
			log.Debug("feature not scored", zap.String("feature", s.Column), zap.Error(s.Err))
		}
	}

	if err := o.persist(res, records, cleaned); err != nil {
		res.Err = err
	}

	return res
}

// keep applies the drop policy.
func (o *Orchestrator) keep(records []*neighborgraph.FeatureRecord) []*neighborgraph.FeatureRecord {
	out := make([]*neighborgraph.FeatureRecord, 0, len(records))
	for _, rec := range records {
		if rec.NeighbourCount() < o.opts.MinNeighbours {
			continue
		}
		if o.opts.RequireComplete && !rec.Complete() {
			continue
		}
		out = append(out, rec)
	}

	return out
}

func (o *Orchestrator) persist(res CutoffResult, all, cleaned []*neighborgraph.FeatureRecord) error {
	var s stage

	err := func() error {
		if err := s.write(filepath.Join(res.Dir, FeaturesFileName), func(w io.Writer) error {
			return neighborgraph.WriteTable(w, all)
		}); err != nil {
			return err
		}

		if err := s.write(filepath.Join(res.Dir, CleanedFeaturesFileName), func(w io.Writer) error {
			return neighborgraph.WriteTable(w, cleaned)
		}); err != nil {
			return err
		}

		if err := s.write(filepath.Join(res.Dir, roc.FileName), func(w io.Writer) error {
			return roc.WriteScores(w, res.Scores)
		}); err != nil {
			return err
		}

		if !o.opts.PlotCurves {
			return nil
		}
		for _, score := range res.Scores {
			if score.Err != nil {
				continue
			}
			score := score
			path := filepath.Join(res.Dir, CurvesDirName, "roc_"+score.Column+".png")
			if err := s.write(path, func(w io.Writer) error { return roc.PlotCurve(w, score) }); err != nil {
				return err
			}
		}

		return nil
	}()
	if err != nil {
		s.discard()
		return err
	}

	return s.commit()
}

func uniqueSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)

	j := 0
	for i, v := range out {
		if i > 0 && v == out[j-1] {
			continue
		}
		out[j] = v
		j++
	}

	return out[:j]
}
