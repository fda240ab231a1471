package main

import (
	"os"

	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix/heatmap"
	"github.com/carbocation/snpmix/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var heatmapTSV string

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <sweep dir>...",
	Short: "Draw the feature × cutoff AUC heatmap of one or more sweeps",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := heatmap.LoadDirs(args, logger.Log.Named("heatmap"))
		if err != nil {
			return err
		}

		m, err := heatmap.Assemble(tables)
		if err != nil {
			return err
		}

		switch heatmapTSV {
		case "":
		case "-":
			if err := m.WriteTSV(cmd.OutOrStdout()); err != nil {
				return err
			}
		default:
			f, err := os.Create(heatmapTSV)
			if err != nil {
				return pfx.Err(err)
			}
			err = m.WriteTSV(f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil {
				return pfx.Err(err)
			}
		}

		opts := heatmap.DefaultRenderOptions()
		opts.Min, opts.Max = cfg.Heatmap.Min, cfg.Heatmap.Max
		if err := m.RenderPNG(cfg.Heatmap.Output, opts); err != nil {
			return pfx.Err(err)
		}

		logger.Log.Info("wrote heatmap",
			zap.String("path", cfg.Heatmap.Output),
			zap.Int("features", len(m.Features)),
			zap.Int("cutoffs", len(m.Cutoffs)),
		)
		return nil
	},
}

func init() {
	f := heatmapCmd.Flags()
	f.String("output", "auc_heatmap.png", "Heatmap PNG destination")
	f.Float64("min", 0.5, "AUC at the light end of the colour scale")
	f.Float64("max", 1, "AUC at the dark end of the colour scale")
	f.StringVar(&heatmapTSV, "tsv", "", "Also write the AUC matrix as TSV, - for stdout")

	bindFlags(heatmapCmd, map[string]string{
		"output": "heatmap.output",
		"min":    "heatmap.min",
		"max":    "heatmap.max",
	})

	rootCmd.AddCommand(heatmapCmd)
}
