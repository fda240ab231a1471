package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix"
	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/neighborgraph"
	"github.com/carbocation/snpmix/roc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreOut     string
	scorePlotDir string
)

var scoreCmd = &cobra.Command{
	Use:   "score <feature table>",
	Short: "Score every feature column of a mixanalysis table with ROC AUC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := storageClientFor(ctx, args[0])
		if err != nil {
			return err
		}
		if client != nil {
			defer client.Close()
		}

		f, err := snpmix.OpenInput(ctx, args[0], client)
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := neighborgraph.ReadTable(f)
		if err != nil {
			return err
		}

		scores := roc.ScoreTable(records, neighborgraph.Columns())
		for _, s := range scores {
			if s.Err != nil {
				logger.Log.Warn("feature not scored", zap.String("column", s.Column), zap.Error(s.Err))
			}
		}

		var w io.Writer = cmd.OutOrStdout()
		if scoreOut != "-" {
			out, err := os.Create(scoreOut)
			if err != nil {
				return pfx.Err(err)
			}
			defer out.Close()
			w = out
		}
		if err := roc.WriteScores(w, scores); err != nil {
			return err
		}

		if scorePlotDir == "" {
			return nil
		}
		return plotCurves(scorePlotDir, scores)
	},
}

func plotCurves(dir string, scores []roc.Score) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pfx.Err(err)
	}

	for _, s := range scores {
		if s.Err != nil {
			continue
		}

		f, err := os.Create(filepath.Join(dir, "roc_"+s.Column+".png"))
		if err != nil {
			return pfx.Err(err)
		}
		err = roc.PlotCurve(f, s)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", roc.FileName, "Score table destination, - for stdout")
	scoreCmd.Flags().StringVar(&scorePlotDir, "plot-dir", "", "Also render one ROC curve PNG per feature into this directory")
	rootCmd.AddCommand(scoreCmd)
}
