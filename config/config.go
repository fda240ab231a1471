// Package config loads snpmix settings from snpmix.yaml, SNPMIX_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carbocation/snpmix/catwalk"
	"github.com/carbocation/snpmix/mixer"
	"github.com/carbocation/snpmix/neighborgraph"
	"github.com/carbocation/snpmix/sweep"
	"github.com/spf13/viper"
)

const EnvPrefix = "SNPMIX"

type Config struct {
	Catwalk  CatwalkConfig
	Mix      MixConfig
	Analysis AnalysisConfig
	Sweep    SweepConfig
	Heatmap  HeatmapConfig
	Logging  LoggingConfig
}

type CatwalkConfig struct {
	URL        string
	TimeoutSec int
	Retry      RetryConfig
}

type RetryConfig struct {
	MaxAttempts    int
	InitialDelayMs int
	MaxDelayMs     int
	Multiplier     float64
	Jitter         float64
}

type MixConfig struct {
	Input      string
	OutDir     string
	Number     int
	Days       float64
	RandomNs   int
	PrimerGaps int
	BEDFile    string
	Seed       int64
}

type AnalysisConfig struct {
	MinPairwiseEdges int
}

type SweepConfig struct {
	OutDir          string
	Cutoffs         []int
	Workers         int
	MinNeighbours   int
	RequireComplete bool
	PlotCurves      bool

	// LoadSamples, when set, is an mfsl path the service loads before the
	// sweep starts. SettleSec is how long to wait afterwards.
	LoadSamples string
	SettleSec   int
}

type HeatmapConfig struct {
	Output string
	Min    float64
	Max    float64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// New returns a viper instance with snpmix's search paths, environment
// binding and defaults. Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("snpmix")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.snpmix")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

// Load reads the config file, if any, and decodes the settings. configFile
// overrides the search paths when non-empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catwalk.url", catwalk.DefaultBaseURL)
	v.SetDefault("catwalk.timeoutSec", int(catwalk.DefaultTimeout/time.Second))

	retry := catwalk.DefaultRetryPolicy()
	v.SetDefault("catwalk.retry.maxAttempts", retry.MaxAttempts)
	v.SetDefault("catwalk.retry.initialDelayMs", int(retry.InitialDelay/time.Millisecond))
	v.SetDefault("catwalk.retry.maxDelayMs", int(retry.MaxDelay/time.Millisecond))
	v.SetDefault("catwalk.retry.multiplier", retry.Multiplier)
	v.SetDefault("catwalk.retry.jitter", retry.JitterFraction)

	v.SetDefault("mix.outDir", ".")
	v.SetDefault("mix.number", 100)
	v.SetDefault("mix.days", 7.0)
	v.SetDefault("mix.randomNs", 0)
	v.SetDefault("mix.primerGaps", 0)
	v.SetDefault("mix.seed", 1)

	v.SetDefault("analysis.minPairwiseEdges", neighborgraph.DefaultMinPairwiseEdges)

	s := sweep.DefaultOptions()
	v.SetDefault("sweep.outDir", s.OutDir)
	v.SetDefault("sweep.cutoffs", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	v.SetDefault("sweep.workers", s.Workers)
	v.SetDefault("sweep.minNeighbours", s.MinNeighbours)
	v.SetDefault("sweep.requireComplete", s.RequireComplete)
	v.SetDefault("sweep.plotCurves", false)
	v.SetDefault("sweep.settleSec", 0)

	v.SetDefault("heatmap.output", "auc_heatmap.png")
	v.SetDefault("heatmap.min", 0.5)
	v.SetDefault("heatmap.max", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputPath", "stderr")
}

func (c *Config) Validate() error {
	switch {
	case c.Mix.Number < 0:
		return fmt.Errorf("mix.number must not be negative")
	case c.Mix.Days <= 0:
		return fmt.Errorf("mix.days must be positive")
	case c.Mix.RandomNs < 0 || c.Mix.PrimerGaps < 0:
		return fmt.Errorf("mix.randomNs and mix.primerGaps must not be negative")
	case c.Mix.PrimerGaps > 0 && c.Mix.BEDFile == "":
		return fmt.Errorf("mix.primerGaps needs mix.bedFile")
	case c.Sweep.Workers < 1:
		return fmt.Errorf("sweep.workers must be at least 1")
	case c.Analysis.MinPairwiseEdges < 1:
		return fmt.Errorf("analysis.minPairwiseEdges must be at least 1")
	case c.Heatmap.Max <= c.Heatmap.Min:
		return fmt.Errorf("heatmap.max must exceed heatmap.min")
	}

	for _, k := range c.Sweep.Cutoffs {
		if k < 0 {
			return fmt.Errorf("sweep.cutoffs: %d is negative", k)
		}
	}

	return nil
}

// ClientOptions maps the catwalk section onto client options.
func (c CatwalkConfig) ClientOptions() catwalk.Options {
	return catwalk.Options{
		Timeout: time.Duration(c.TimeoutSec) * time.Second,
		Retry: catwalk.RetryPolicy{
			MaxAttempts:    c.Retry.MaxAttempts,
			InitialDelay:   time.Duration(c.Retry.InitialDelayMs) * time.Millisecond,
			MaxDelay:       time.Duration(c.Retry.MaxDelayMs) * time.Millisecond,
			Multiplier:     c.Retry.Multiplier,
			JitterFraction: c.Retry.Jitter,
		},
	}
}

// MixerConfig maps the mix section onto a mixer configuration. Primer gaps
// are filled in by the caller once the BED file has been read.
func (c MixConfig) MixerConfig() mixer.Config {
	return mixer.Config{
		NumberOfMixed:      c.Number,
		Days:               c.Days,
		NumberOfRandomNs:   c.RandomNs,
		NumberOfPrimerGaps: c.PrimerGaps,
		Seed:               c.Seed,
	}
}

// SweepOptions combines the sweep and analysis sections.
func (c *Config) SweepOptions() sweep.Options {
	return sweep.Options{
		OutDir:          c.Sweep.OutDir,
		Workers:         c.Sweep.Workers,
		MinNeighbours:   c.Sweep.MinNeighbours,
		RequireComplete: c.Sweep.RequireComplete,
		PlotCurves:      c.Sweep.PlotCurves,
		Analysis:        c.AnalysisOptions(),
	}
}

func (c *Config) AnalysisOptions() neighborgraph.Options {
	return neighborgraph.Options{MinPairwiseEdges: c.Analysis.MinPairwiseEdges}
}
