package main

import (
	"fmt"
	"path/filepath"

	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/mfsl"
	"github.com/carbocation/snpmix/mixer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mixLoad bool

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Create artificial mixed samples from an mfsl file",
	Long: `Pairs samples collected within --days of each other, masks every original
with random Ns and simulated amplicon dropouts, and mixes --number of the pairs.
Writes mixed.fasta (originals followed by mixes) and mixed.csv to --out-dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mc := cfg.Mix
		if mc.Input == "" {
			return fmt.Errorf("mix needs --input or mix.input")
		}

		client, err := storageClientFor(ctx, mc.Input, mc.BEDFile)
		if err != nil {
			return err
		}
		if client != nil {
			defer client.Close()
		}

		samples, err := mfsl.Parse(ctx, mc.Input, client)
		if err != nil {
			return err
		}

		mixerConfig := mc.MixerConfig()
		if mc.BEDFile != "" {
			records, err := mixer.ReadBED(ctx, mc.BEDFile, client)
			if err != nil {
				return err
			}
			if mixerConfig.PrimerGaps, err = mixer.DerivePrimerGaps(records); err != nil {
				return err
			}
		}

		res, err := mixer.Run(mixerConfig, samples, logger.Log.Named("mixer"))
		if err != nil {
			return err
		}

		if err := mixer.WriteOutputs(mc.OutDir, res.All()); err != nil {
			return err
		}

		out := filepath.Join(mc.OutDir, mixer.SamplesFileName)
		logger.Log.Info("wrote mixed samples",
			zap.String("path", out),
			zap.Int("originals", len(res.Originals)),
			zap.Int("mixed", len(res.Mixed)),
			zap.Int("eligible_pairs", res.EligiblePairs),
		)

		if !mixLoad {
			return nil
		}

		abs, err := filepath.Abs(out)
		if err != nil {
			return err
		}
		return newCatwalkClient().LoadSamplesFromFile(ctx, abs)
	},
}

func init() {
	f := mixCmd.Flags()
	f.String("input", "", "mfsl file of real samples (local path or gs://)")
	f.String("out-dir", ".", "Directory for mixed.fasta and mixed.csv")
	f.Int("number", 100, "Number of mixed samples to create")
	f.Float64("days", 7, "Only mix samples collected less than this many days apart")
	f.Int("random-ns", 0, "Canonical bases masked at random in every original sample")
	f.Int("primer-gaps", 0, "Amplicon dropouts simulated in every original sample")
	f.String("bed", "", "Amplicon insert BED file defining the primer gaps")
	f.Int64("seed", 1, "Random seed")
	f.BoolVar(&mixLoad, "load", false, "Load the written samples into catwalk")

	bindFlags(mixCmd, map[string]string{
		"input":       "mix.input",
		"out-dir":     "mix.outDir",
		"number":      "mix.number",
		"days":        "mix.days",
		"random-ns":   "mix.randomNs",
		"primer-gaps": "mix.primerGaps",
		"bed":         "mix.bedFile",
		"seed":        "mix.seed",
	})

	rootCmd.AddCommand(mixCmd)
}
