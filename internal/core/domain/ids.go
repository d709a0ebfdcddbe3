package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier that the fleet backend may send either as a JSON string
// or as a JSON number. Both forms normalise to the same string.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalScalar(data)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(s)
	return nil
}

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Stamp is a timestamp as reported by the backend. The format is not fixed
// (epoch seconds or ISO text), so it is carried verbatim.
type Stamp string

// UnmarshalJSON accepts strings, numbers and null.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	v, err := unmarshalScalar(data)
	if err != nil {
		return fmt.Errorf("stamp: %w", err)
	}
	*s = Stamp(v)
	return nil
}

func unmarshalScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	// Integral floats ("3.0") collapse to their integer form so that the
	// same team id is not seen twice.
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", err
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return n.String(), nil
}
