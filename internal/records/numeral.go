package records

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Numeral keeps a reported number exactly as written. It decodes from a JSON
// number, a JSON string or null, so "1.50" and 1.50 both keep their two places.
type Numeral string

// UnmarshalJSON implements json.Unmarshaler
func (n *Numeral) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeral(strings.TrimSpace(s))
	default:
		*n = Numeral(data)
	}
	return nil
}

// MarshalJSON writes numeric text as a JSON number and anything else as a string
func (n Numeral) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(n), 64); err == nil && json.Valid([]byte(n)) {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

// Empty reports whether no value was given
func (n Numeral) Empty() bool {
	return strings.TrimSpace(string(n)) == ""
}

func (n Numeral) String() string {
	return string(n)
}
