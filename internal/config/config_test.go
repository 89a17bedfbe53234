package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
filter:
  watchlist: [BHP, CBA, XYZ]
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "surprise", cfg.Pipeline.Profile)
	assert.Equal(t, 5, cfg.Pipeline.TopN)
	assert.Equal(t, 10, cfg.Pipeline.Concurrency)
	assert.True(t, cfg.Filter.RequirePriceSensitive)
	assert.Equal(t, 300_000.0, cfg.Gate.MinAvgVolume)
	assert.Equal(t, 2e9, cfg.Gate.MaxMarketCap)
	assert.Equal(t, "asxwatch.db", cfg.Store.Path)
	assert.False(t, cfg.Email.Enabled)
	assert.Len(t, cfg.Filter.Watchlist, 3)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
pipeline:
  profile: broad
  top_n: 10
filter:
  watchlist: [BHP]
  require_price_sensitive: false
gate:
  min_avg_volume: 500000
`))
	require.NoError(t, err)

	assert.Equal(t, "broad", cfg.Pipeline.Profile)
	assert.Equal(t, 10, cfg.Pipeline.TopN)
	assert.False(t, cfg.Filter.RequirePriceSensitive)
	assert.Equal(t, 500_000.0, cfg.Gate.MinAvgVolume)
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
pipeline:
  profile: aggressive
filter:
  watchlist: [BHP]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown lexicon profile")
}

func TestLoadRejectsEmptyWatchlist(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
pipeline:
  profile: surprise
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watchlist")
}

func TestLoadRejectsIncompleteEmail(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
filter:
  watchlist: [BHP]
email:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestLoadRejectsAnalyzerWithoutKey(t *testing.T) {
	_, err := Load(writeConfigFile(t, `
filter:
  watchlist: [BHP]
analyzer:
  enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.api_key")
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
