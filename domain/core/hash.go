package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeTableHash fingerprints a rendered result table. Row order matters.
func ComputeTableHash(rows [][]string) Hash {
	var data strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				data.WriteByte('\x1f')
			}
			data.WriteString(cell)
		}
		data.WriteByte('\x1e')
	}
	return NewHash([]byte(data.String()))
}
