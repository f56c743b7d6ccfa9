package config

import (
	"runtime"
	"testing"
	"time"

	"gostatcheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults verifies defaults when nothing is set
func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SIGNIFICANCE_LEVEL", "WORKERS", "RUNS", "STATCHECK_MAX_WORDS", "GRIM_MODEL", "OPENAI_API_KEY", "DATABASE_URL", "LLM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Analysis.SignificanceLevel)
	assert.Equal(t, runtime.NumCPU(), cfg.Analysis.Workers)
	assert.Equal(t, 1, cfg.Analysis.Runs)
	assert.Equal(t, 500, cfg.Statcheck.MaxWords)
	assert.Equal(t, 8, cfg.Statcheck.OverlapWords)
	assert.Equal(t, "gpt-4o-mini", cfg.Statcheck.Model)
	assert.Equal(t, 1000, cfg.GRIM.MaxWords)
	assert.Equal(t, 200, cfg.GRIM.OverlapWords)
	assert.Equal(t, "gpt-4o", cfg.GRIM.Model)
	assert.Equal(t, 0.01, cfg.GRIM.Temperature)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.StorageEnabled())

	err = cfg.RequireExtraction()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

// TestLoadOverrides verifies environment values win over defaults
func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIGNIFICANCE_LEVEL", "0.01")
	t.Setenv("WORKERS", "3")
	t.Setenv("RUNS", "5")
	t.Setenv("GRIM_OVERLAP_WORDS", "50")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/statcheck")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.Analysis.SignificanceLevel)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.Equal(t, 5, cfg.Analysis.Runs)
	assert.Equal(t, 50, cfg.GRIM.OverlapWords)
	assert.NoError(t, cfg.RequireExtraction())
	assert.True(t, cfg.StorageEnabled())
}

// TestLoadRejectsInvalid verifies validation of each bounded setting
func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SIGNIFICANCE_LEVEL", "1.5"},
		{"SIGNIFICANCE_LEVEL", "0"},
		{"WORKERS", "0"},
		{"RUNS", "6"},
		{"STATCHECK_OVERLAP_WORDS", "500"},
		{"GRIM_MAX_WORDS", "-1"},
		{"STATCHECK_TEMPERATURE", "3"},
		{"LLM_TIMEOUT_SECONDS", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
