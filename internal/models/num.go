package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a lenient JSON number. Numbers and numeric strings decode as valid
// values; null, other types and non-finite values decode as unset.
type Num struct {
	V     float64
	Valid bool
}

// N returns a valid Num holding v.
func N(v float64) Num {
	return Num{V: v, Valid: true}
}

// UnmarshalJSON never fails; unusable input leaves n unset.
func (n *Num) UnmarshalJSON(b []byte) error {
	*n = Num{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Num{V: f, Valid: true}
	return nil
}

// MarshalJSON writes null for unset values.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}

// Or returns the value, or def when unset.
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.V
}

// Int returns the value truncated to an int, 0 when unset.
func (n Num) Int() int {
	if !n.Valid {
		return 0
	}
	return int(n.V)
}

// decodeFields decodes each key of raw into its destination, ignoring
// fields that are missing or have the wrong shape.
func decodeFields(raw map[string]json.RawMessage, dst map[string]any) {
	for key, target := range dst {
		v, ok := raw[key]
		if !ok {
			continue
		}
		_ = json.Unmarshal(v, target)
	}
}
