package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckMean(t *testing.T) {
	out, err := run(t, "check-mean", "5.20", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Consistent:")
	assert.Contains(t, out, "No")
	assert.Contains(t, out, "5.22")

	out, err = run(t, "check-mean", "5.22", "9")
	require.NoError(t, err)
	assert.NotContains(t, out, "Nearest possible mean")
}

func TestCheckMean_Rejected(t *testing.T) {
	_, err := run(t, "check-mean", "5.2", "0")
	assert.ErrorContains(t, err, "sample_size")
}

func TestCheckTest(t *testing.T) {
	out, err := run(t, "check-test", "t", "1.96", "--df1", "30", "--p", ".059")
	require.NoError(t, err)
	assert.Contains(t, out, "t(30) = 1.96")
	assert.Contains(t, out, "0.05873 to 0.05996")
	assert.Contains(t, out, "consistent")

	out, err = run(t, "check-test", "F", "2.50", "--df1", "2", "--df2", "20", "--p", ".04", "--operator", "<")
	require.NoError(t, err)
	assert.Contains(t, out, "gross_inconsistency")
	assert.Contains(t, out, "Gross inconsistency")
}

func TestCheckTest_Alpha(t *testing.T) {
	_, err := run(t, "--alpha", "1.5", "check-test", "t", "1.96", "--df1", "30", "--p", ".059")
	assert.Error(t, err)
}

func TestRecords_CSVToXLSX(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tests.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"test_type,df1,df2,test_value,operator,reported_p_value,epsilon,tail\n"+
			"t,30,,1.96,=,.059,,two\n"+
			"f,2,20,2.50,<,.04,,\n"), 0o644))
	outPath := filepath.Join(dir, "checked.xlsx")

	out, err := run(t, "records", "statcheck", in, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "APA Reporting")
	assert.Contains(t, out, "1 inconsistent (1 gross)")

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestRecords_JSONMeans(t *testing.T) {
	in := filepath.Join(t.TempDir(), "means.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"means": [
		{"reported_mean": "5.22", "sample_size": 9},
		{"reported_mean": 3.5, "sample_size": 40}
	]}`), 0o644))

	out, err := run(t, "records", "grim", in)
	require.NoError(t, err)
	assert.Contains(t, out, "5.22")
	assert.NotContains(t, out, "3.5 ", "means GRIM cannot test are hidden")

	out, err = run(t, "records", "grim", in, "--all", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"applicable": false`)
}

func TestRecords_UnknownKind(t *testing.T) {
	_, err := run(t, "records", "anova", "x.csv")
	assert.ErrorContains(t, err, "unknown record kind")
}

func TestRuns_NeedStorage(t *testing.T) {
	_, err := run(t, "runs", "list")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestStatcheck_NeedsKey(t *testing.T) {
	_, err := run(t, "statcheck", "paper.txt")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}
