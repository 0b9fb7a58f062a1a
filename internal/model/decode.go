package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a report document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a report document. It fails only when the input cannot be
// mapped onto the report shape at all; missing or empty fields are left for
// the evaluators to report.
func Decode(data []byte, format Format) (*Report, error) {
	var r Report
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, eris.Wrap(err, "model: decode yaml report")
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, eris.Wrap(err, "model: decode json report")
		}
	default:
		return nil, eris.Errorf("model: unsupported report format %q", format)
	}
	return &r, nil
}

// Read decodes a report from r.
func Read(r io.Reader, format Format) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "model: read report")
	}
	return Decode(data, format)
}

// LoadFile reads and decodes the report at path, choosing the format from
// the file extension.
func LoadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read report %s", path)
	}
	r, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, eris.Wrapf(err, "model: load %s", path)
	}
	return r, nil
}
