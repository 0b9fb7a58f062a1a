package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ID identifies a finding or a source. Producers emit ids as either strings
// or numbers; both decode to the same textual form, so 1, 1.0 and "1" are
// equal. Strings are kept verbatim.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: decode string id")
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return eris.Wrapf(err, "model: id must be a string or number, got %s", data)
	}
	*id = ID(canonicalNumber(n.String()))
	return nil
}

// maxExactInt bounds floats whose integral value prints exactly.
const maxExactInt = 1 << 53

// canonicalNumber renders integral numbers without a fraction or exponent.
// Other numbers keep their literal text.
func canonicalNumber(lit string) string {
	if _, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.Trunc(f) != f || math.Abs(f) > maxExactInt {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// UnmarshalYAML accepts any scalar node.
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return eris.Errorf("model: id must be a scalar (line %d)", value.Line)
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	if value.Tag == "!!int" || value.Tag == "!!float" {
		*id = ID(canonicalNumber(value.Value))
		return nil
	}
	*id = ID(value.Value)
	return nil
}

// IDStrings converts ids to plain strings.
func IDStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
