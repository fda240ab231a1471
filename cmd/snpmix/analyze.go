package main

import (
	"fmt"
	"strconv"

	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/sweep"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cutoff>",
	Short: "Compute neighbour-graph features and ROC scores for one SNP cutoff",
	Long: `Analyzes every sample known to catwalk at the given cutoff and writes
mixanalysis.csv, mixanalysis-cleaned.csv and roc.csv to <out-dir>/k<cutoff>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := strconv.Atoi(args[0])
		if err != nil || cutoff < 0 {
			return fmt.Errorf("invalid cutoff %q", args[0])
		}

		o := sweep.New(newCatwalkClient(), cfg.SweepOptions(), logger.Log.Named("sweep"))
		res := o.RunCutoff(cmd.Context(), cutoff)
		if res.Err != nil {
			return res.Err
		}

		printSummary(cmd.OutOrStdout(), []sweep.CutoffResult{res})
		return nil
	},
}

func init() {
	addSweepFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
