package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyayadrishti/casemetrics/internal/metrics"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, metrics.DefaultParams(), cfg.Params)
	assert.Equal(t, "cases.csv", cfg.Data.Cases)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Params, cfg.Params)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
data:
  cases: /srv/cases.csv
  hearings: /srv/hearings.csv
params:
  hearing_weight: 30
  contamination: 0.1
log:
  level: debug
  format: json
cache_size: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/cases.csv", cfg.Data.Cases)
	assert.Equal(t, "/srv/hearings.csv", cfg.Data.Hearings)
	assert.Equal(t, 30, cfg.Params.HearingWeight)
	assert.Equal(t, 0.1, cfg.Params.Contamination)
	// keys absent from the file keep their defaults
	assert.Equal(t, 10, cfg.Params.YearWeight)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.CacheSize)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "params: [not, a, map]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("strings and numbers", func(t *testing.T) {
		t.Setenv("CASEMETRICS_CASES", "env-cases.csv")
		t.Setenv("CASEMETRICS_DB", "/tmp/env.db")
		t.Setenv("CASEMETRICS_HEARING_WEIGHT", "40")
		t.Setenv("CASEMETRICS_CONTAMINATION", "0.02")
		t.Setenv("CASEMETRICS_LISTEN_ADDR", ":9090")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, "env-cases.csv", cfg.Data.Cases)
		assert.Equal(t, "/tmp/env.db", cfg.DBPath)
		assert.Equal(t, 40, cfg.Params.HearingWeight)
		assert.Equal(t, 0.02, cfg.Params.Contamination)
		assert.Equal(t, ":9090", cfg.Server.Addr)
	})

	t.Run("env beats file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		writeFile(t, path, "params:\n  year_weight: 25\n")
		t.Setenv("CASEMETRICS_YEAR_WEIGHT", "6")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Params.YearWeight)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("CASEMETRICS_CACHE_SIZE", "lots")
		cfg := DefaultConfig()
		err := cfg.applyEnvOverrides()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CASEMETRICS_CACHE_SIZE")
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.BaselineDelay = 500
	err := cfg.Validate()
	var pe *metrics.ParamError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, "baseline_delay", pe.Name)

	cfg = DefaultConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CacheSize = -1
	assert.Error(t, cfg.Validate())
}

func TestDiscover(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeFile(t, path, "")
		t.Setenv(EnvConfig, path)

		got, err := Discover("ignored.yaml")
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("env pointing nowhere is an error", func(t *testing.T) {
		t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Discover("")
		assert.Error(t, err)
	})

	t.Run("flag", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		path := filepath.Join(t.TempDir(), "flag.yaml")
		writeFile(t, path, "")

		got, err := Discover(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)

		_, err = Discover(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("walk up", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		root := t.TempDir()
		writeFile(t, filepath.Join(root, FileName), "")
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		t.Chdir(nested)

		got, err := Discover("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, FileName), got)
	})
}
