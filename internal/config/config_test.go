package config

import (
	"testing"
	"time"

	"anovalab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"ANOVA_ALPHA", "ANOVA_REQUIRE_BALANCED", "ANOVA_EXACT_P", "ANOVA_CONCURRENCY",
		"ANOVA_DATA_FILE", "ANOVA_SKIP_MALFORMED", "ANOVA_FORMAT", "ANOVA_XLSX_OUT",
		"DATABASE_URL", "DB_CONNECT_TIMEOUT", "PORT", "GIN_MODE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
	assert.False(t, cfg.Analysis.RequireBalanced)
	assert.False(t, cfg.Analysis.ExactP)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.False(t, cfg.Input.SkipMalformed)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ANOVA_ALPHA", "0.01")
	t.Setenv("ANOVA_REQUIRE_BALANCED", "true")
	t.Setenv("ANOVA_EXACT_P", "1")
	t.Setenv("ANOVA_CONCURRENCY", "2")
	t.Setenv("ANOVA_DATA_FILE", "study.csv")
	t.Setenv("ANOVA_SKIP_MALFORMED", "true")
	t.Setenv("ANOVA_FORMAT", "Markdown")
	t.Setenv("DB_CONNECT_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Analysis.Alpha)
	assert.True(t, cfg.Analysis.RequireBalanced)
	assert.True(t, cfg.Analysis.ExactP)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, "study.csv", cfg.Input.DataFile)
	assert.True(t, cfg.Input.SkipMalformed)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.ConnectTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"alpha above one":  {"ANOVA_ALPHA": "1.5"},
		"zero concurrency": {"ANOVA_CONCURRENCY": "0"},
		"unknown format":   {"ANOVA_FORMAT": "pdf"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ANOVA_ALPHA", "")
			t.Setenv("ANOVA_CONCURRENCY", "")
			t.Setenv("ANOVA_FORMAT", "")
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
