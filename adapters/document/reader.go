// Package document turns source files into plain text and splits that text
// into overlapping word windows for extraction.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/ports"

	"github.com/gomarkdown/markdown"
	"github.com/k3a/html2text"
)

// Reader reads .txt, .html, .htm and .md files
type Reader struct{}

// NewReader creates a document reader
func NewReader() *Reader {
	return &Reader{}
}

// Supports reports whether the extension of path is readable
func (r *Reader) Supports(path string) bool {
	switch extension(path) {
	case ".txt", ".html", ".htm", ".md", ".markdown":
		return true
	}
	return false
}

// ReadText returns the plain text of the file at path
func (r *Reader) ReadText(path string) (string, error) {
	if !r.Supports(path) {
		return "", fmt.Errorf("%w: %q (supported: .txt, .html, .htm, .md)", core.ErrUnsupportedFormat, filepath.Ext(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return ToText(extension(path), raw), nil
}

// ToText converts file content of the given extension to plain text
func ToText(ext string, raw []byte) string {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return html2text.HTML2Text(string(raw))
	case ".md", ".markdown":
		return html2text.HTML2Text(string(markdown.ToHTML(raw, nil, nil)))
	default:
		return string(raw)
	}
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
}

var _ ports.DocumentReader = (*Reader)(nil)
