// snpmix builds artificial mixed samples, measures how well neighbour-graph
// features discriminate them across a sweep of SNP cutoffs, and summarises the
// sweep as an AUC heatmap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/snpmix"
	"github.com/carbocation/snpmix/catwalk"
	"github.com/carbocation/snpmix/compileinfo"
	"github.com/carbocation/snpmix/config"
	"github.com/carbocation/snpmix/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	v          = config.New()
	cfg        *config.Config
	configFile string

	// flagKeys maps, per command, flag names onto config keys. Only the
	// running command's flags are bound, so commands can share keys.
	flagKeys = map[*cobra.Command]map[string]string{}
)

var rootCmd = &cobra.Command{
	Use:           "snpmix",
	Short:         "Mixed-sample simulation and neighbour-graph feature evaluation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range []*cobra.Command{cmd.Root(), cmd} {
			for flag, key := range flagKeys[c] {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
		}

		var err error
		if cfg, err = config.Load(v, configFile); err != nil {
			return err
		}

		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
			return err
		}
		logger.Log.Debug("starting", compileinfo.Get().Fields()...)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// bindFlags registers flag → config key pairs for cmd.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	flagKeys[cmd] = keys
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a snpmix.yaml config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Log destination: stderr, stdout or a file path")
	rootCmd.PersistentFlags().String("catwalk-url", catwalk.DefaultBaseURL, "Base URL of the catwalk service")

	bindFlags(rootCmd, map[string]string{
		"log-level":   "logging.level",
		"log-format":  "logging.format",
		"log-output":  "logging.outputPath",
		"catwalk-url": "catwalk.url",
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.Error("snpmix failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newCatwalkClient() *catwalk.Client {
	opts := cfg.Catwalk.ClientOptions()
	opts.Logger = logger.Log.Named("catwalk")

	return catwalk.NewClient(cfg.Catwalk.URL, opts)
}

// storageClientFor returns a Google Storage client when any of paths is a
// gs:// URL, and nil otherwise.
func storageClientFor(ctx context.Context, paths ...string) (*storage.Client, error) {
	for _, p := range paths {
		if snpmix.IsGoogleStoragePath(p) {
			client, err := storage.NewClient(ctx)
			if err != nil {
				return nil, pfx.Err(err)
			}
			return client, nil
		}
	}

	return nil, nil
}
