package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Catwalk.URL)
	assert.Equal(t, 7.0, cfg.Mix.Days)
	assert.Equal(t, 2, cfg.Analysis.MinPairwiseEdges)
	assert.Equal(t, 2, cfg.Sweep.MinNeighbours)
	assert.True(t, cfg.Sweep.RequireComplete)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, cfg.Sweep.Cutoffs)
	assert.Equal(t, "info", cfg.Logging.Level)

	opts := cfg.Catwalk.ClientOptions()
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 5, opts.Retry.MaxAttempts)
	assert.Equal(t, 200*time.Millisecond, opts.Retry.InitialDelay)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snpmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catwalk:
  url: http://catwalk:5000
mix:
  number: 40
  days: 3.5
  seed: 42
analysis:
  minPairwiseEdges: 4
sweep:
  cutoffs: [3, 5, 8]
  workers: 2
  requireComplete: false
`), 0644))

	t.Setenv("SNPMIX_SWEEP_MINNEIGHBOURS", "3")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://catwalk:5000", cfg.Catwalk.URL)
	assert.Equal(t, 40, cfg.Mix.Number)
	assert.Equal(t, 3.5, cfg.Mix.Days)
	assert.EqualValues(t, 42, cfg.Mix.Seed)
	assert.Equal(t, []int{3, 5, 8}, cfg.Sweep.Cutoffs)
	assert.Equal(t, 3, cfg.Sweep.MinNeighbours)

	opts := cfg.SweepOptions()
	assert.Equal(t, 2, opts.Workers)
	assert.False(t, opts.RequireComplete)
	assert.Equal(t, 4, opts.Analysis.MinPairwiseEdges)

	mc := cfg.Mix.MixerConfig()
	assert.Equal(t, 40, mc.NumberOfMixed)
	assert.EqualValues(t, 42, mc.Seed)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	bad := *cfg
	bad.Mix.PrimerGaps = 2
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Sweep.Cutoffs = []int{3, -1}
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Analysis.MinPairwiseEdges = 0
	assert.Error(t, bad.Validate())
}
