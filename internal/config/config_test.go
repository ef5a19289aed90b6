package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"HYBRID_DB_PATH", "HYBRID_LOG_LEVEL", "HYBRID_LOG_PRETTY", "HYBRID_SEED"} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "./data/hybrid.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, uint64(1234), cfg.Seed)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HYBRID_DB_PATH", "/tmp/runs.db")
	t.Setenv("HYBRID_LOG_LEVEL", "DEBUG")
	t.Setenv("HYBRID_LOG_PRETTY", "false")
	t.Setenv("HYBRID_SEED", "99")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, uint64(99), cfg.Seed)
}

func TestInvalid(t *testing.T) {
	tcs := []struct {
		name, key, value string
	}{
		{"log level", "HYBRID_LOG_LEVEL", "verbose"},
		{"seed", "HYBRID_SEED", "-1"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HYBRID_SEED")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HYBRID_SEED=7\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("HYBRID_SEED")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
}
