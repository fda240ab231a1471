package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/sweep"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate the neighbour-graph features at every configured SNP cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newCatwalkClient()

		if cfg.Sweep.LoadSamples != "" {
			path, err := filepath.Abs(cfg.Sweep.LoadSamples)
			if err != nil {
				return err
			}
			if err := client.LoadSamplesFromFile(ctx, path); err != nil {
				return err
			}

			settle := time.Duration(cfg.Sweep.SettleSec) * time.Second
			logger.Log.Info("loaded samples, waiting for the service to settle",
				zap.String("path", path), zap.Duration("settle", settle))
			select {
			case <-time.After(settle):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		o := sweep.New(client, cfg.SweepOptions(), logger.Log.Named("sweep"))
		results, err := o.Run(ctx, cfg.Sweep.Cutoffs)
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), results)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 && failed == len(results) {
			return fmt.Errorf("all %d cutoffs failed", failed)
		}

		return nil
	},
}

// addSweepFlags registers the flags shared by sweep and analyze.
func addSweepFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("out-dir", ".", "Directory receiving one k<cutoff> directory per cutoff")
	f.Int("min-neighbours", 2, "Drop samples with fewer neighbours before scoring")
	f.Bool("require-complete", true, "Drop samples lacking any feature before scoring")
	f.Bool("plot-curves", false, "Render a ROC curve PNG per feature")
	f.Int("min-pairwise-edges", 2, "Neighbour-to-neighbour edges needed for the centrality features")

	bindFlags(cmd, map[string]string{
		"out-dir":            "sweep.outDir",
		"min-neighbours":     "sweep.minNeighbours",
		"require-complete":   "sweep.requireComplete",
		"plot-curves":        "sweep.plotCurves",
		"min-pairwise-edges": "analysis.minPairwiseEdges",
	})
}

func printSummary(w io.Writer, results []sweep.CutoffResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "cutoff\tsamples\tanalyzed\tfailed\tkept\tmixed\tbest feature\tauc\tstatus")
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}

		best, auc := "-", "-"
		top := math.Inf(-1)
		for _, s := range r.Scores {
			if s.Err == nil && s.AUC > top {
				top = s.AUC
				best, auc = s.Column, fmt.Sprintf("%.3f", s.AUC)
			}
		}

		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.Cutoff, r.Samples, r.Analyzed, r.Failed, r.Kept, r.Mixed, best, auc, status)
	}
	tw.Flush()
}

func init() {
	addSweepFlags(sweepCmd)
	f := sweepCmd.Flags()
	f.IntSlice("cutoffs", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "SNP cutoffs to evaluate")
	f.Int("workers", 1, "Cutoffs evaluated concurrently")
	f.String("load-samples", "", "mfsl file catwalk loads before the sweep")
	f.Int("settle", 0, "Seconds to wait after loading samples")

	keys := flagKeys[sweepCmd]
	keys["cutoffs"] = "sweep.cutoffs"
	keys["workers"] = "sweep.workers"
	keys["load-samples"] = "sweep.loadSamples"
	keys["settle"] = "sweep.settleSec"

	rootCmd.AddCommand(sweepCmd)
}
