package main

import (
	"fmt"

	"github.com/carbocation/snpmix/logger"
	"github.com/carbocation/snpmix/mfsl"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Inspect and edit the samples held by catwalk",
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the name of every sample",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newCatwalkClient().ListSamples(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var samplesAddKeep bool

var samplesAddCmd = &cobra.Command{
	Use:   "add <mfsl file>",
	Short: "Add the samples of an mfsl file one request at a time",
	Long: `Reads the file locally and adds each sample through the service's single
sample endpoint. Use sweep --load-samples to have the service read a file itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		storageClient, err := storageClientFor(ctx, args[0])
		if err != nil {
			return err
		}
		if storageClient != nil {
			defer storageClient.Close()
		}

		samples, err := mfsl.Parse(ctx, args[0], storageClient)
		if err != nil {
			return err
		}

		client := newCatwalkClient()
		added := 0
		for _, s := range samples {
			if s.ParseErr != nil {
				logger.Log.Warn("skipping sample with malformed header",
					zap.String("header", s.Header), zap.Error(s.ParseErr))
				continue
			}
			if err := client.AddSample(ctx, s.Name, s.Sequence, samplesAddKeep); err != nil {
				return fmt.Errorf("adding %s: %w", s.Name, err)
			}
			added++
		}

		logger.Log.Info("added samples", zap.Int("added", added), zap.Int("read", len(samples)))
		return nil
	},
}

var samplesRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove samples by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newCatwalkClient()
		for _, name := range args {
			if err := client.RemoveSample(cmd.Context(), name); err != nil {
				return fmt.Errorf("removing %s: %w", name, err)
			}
		}
		return nil
	},
}

func init() {
	samplesAddCmd.Flags().BoolVar(&samplesAddKeep, "keep", true, "Ask the service to retain the samples")

	samplesCmd.AddCommand(samplesListCmd, samplesAddCmd, samplesRemoveCmd)
	rootCmd.AddCommand(samplesCmd)
}
