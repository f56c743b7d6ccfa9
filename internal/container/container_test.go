package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gostatcheck/adapters/llm"
	"gostatcheck/internal/config"
	"gostatcheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("WORKERS", "2")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	c, err := New(loadConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 0.05, c.Checker.Alpha())
	assert.Equal(t, 2, c.Executor.Workers())
	assert.Nil(t, c.Runs)
	assert.NoError(t, c.Close())

	report, err := c.GRIM.CheckRecords(context.Background(), "inline", nil)
	require.NoError(t, err)
	assert.Zero(t, report.Summary.Total)
}

func TestInitExtraction_RequiresKey(t *testing.T) {
	c, err := New(loadConfig(t))
	require.NoError(t, err)

	err = c.InitExtraction(nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestInitExtraction_DocumentPipeline(t *testing.T) {
	c, err := New(loadConfig(t))
	require.NoError(t, err)

	client := &llm.MockLLMClient{Responses: []string{
		`tests = [{"test_type": "t", "df1": 30, "df2": null, "test_value": 1.96, "operator": "=", "reported_p_value": 0.059, "epsilon": null, "tail": "two"}]`,
		`tests = [{"reported_mean": "5.20", "sample_size": 9, "discrete_reasoning": "Likert item"}]`,
	}}
	require.NoError(t, c.InitExtraction(client))

	path := filepath.Join(t.TempDir(), "paper.md")
	require.NoError(t, os.WriteFile(path, []byte("# Results\n\nWe found *t*(30) = 1.96, *p* = .059."), 0o644))

	report, err := c.Statcheck.CheckFile(context.Background(), path, 1)
	require.NoError(t, err)
	require.Len(t, report.Statcheck, 1)
	assert.True(t, report.Statcheck[0].Verdict.Consistent)
	assert.Equal(t, path, report.Source)

	report, err = c.GRIM.CheckText(context.Background(), "inline", "M = 5.20, n = 9", 1)
	require.NoError(t, err)
	require.Len(t, report.GRIM, 1)
	assert.False(t, report.GRIM[0].Verdict.Consistent)

	require.Len(t, client.Requests, 2)
	assert.Equal(t, "gpt-4o-mini", client.Requests[0].Model)
	assert.Equal(t, "gpt-4o", client.Requests[1].Model)
}
