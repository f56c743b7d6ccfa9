package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gostatcheck/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "w" + string(rune('a'+i%26))
	}
	return strings.Join(w, " ")
}

// TestSegmentOverlap verifies window size, step and that the last word is covered
func TestSegmentOverlap(t *testing.T) {
	segments, err := Segment(words(10), 5, 2)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Len(t, strings.Fields(segments[0]), 5)
	assert.Len(t, strings.Fields(segments[1]), 5)
	assert.Len(t, strings.Fields(segments[2]), 4)

	first := strings.Fields(segments[0])
	second := strings.Fields(segments[1])
	assert.Equal(t, first[3:], second[:2])
}

func TestSegmentShortText(t *testing.T) {
	segments, err := Segment("t(30) = 1.96, p = .059", 500, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"t(30) = 1.96, p = .059"}, segments)
}

// TestSegmentRejects verifies empty text and bad window settings
func TestSegmentRejects(t *testing.T) {
	_, err := Segment("  \n ", 500, 8)
	assert.True(t, errors.Is(err, core.ErrNoSegments))

	_, err = Segment("a b", 5, 5)
	assert.Error(t, err)
	_, err = Segment("a b", 0, 0)
	assert.Error(t, err)
}

// TestReaderFormats verifies each supported format becomes plain text
func TestReaderFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":  "t(30) = 1.96, p = .059",
		"b.html": "<html><body><p>t(30) = <b>1.96</b>, p = .059</p></body></html>",
		"c.md":   "# Results\n\nt(30) = **1.96**, p = .059\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	reader := NewReader()
	for name := range files {
		text, err := reader.ReadText(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, text, "1.96", name)
		assert.NotContains(t, text, "<b>", name)
		assert.NotContains(t, text, "**", name)
	}
}

// TestReaderRejectsUnsupported verifies PDF and unknown extensions are refused
func TestReaderRejectsUnsupported(t *testing.T) {
	reader := NewReader()
	assert.False(t, reader.Supports("paper.pdf"))
	assert.True(t, reader.Supports("PAPER.HTM"))

	_, err := reader.ReadText("paper.pdf")
	assert.True(t, errors.Is(err, core.ErrUnsupportedFormat))

	_, err = reader.ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
