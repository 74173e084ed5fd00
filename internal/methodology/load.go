package methodology

import (
	"bytes"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format is a methodology file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", eris.Errorf("methodology: unsupported file extension %q", filepath.Ext(path))
}

// Parse decodes a methodology. Unknown keys are rejected so that a typo in
// a field name cannot silently fall back to a default.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, eris.Wrap(err, "methodology: parse json")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, eris.Wrap(err, "methodology: parse yaml")
		}
	default:
		return nil, eris.Errorf("methodology: unknown format %q", format)
	}
	return &cfg, nil
}

// Load reads and decodes a methodology file. It does not validate.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "methodology: read %s", path)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, eris.Wrapf(err, "methodology: load %s", path)
	}
	return cfg, nil
}

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// DefaultID is the methodology shipped with the binary.
const DefaultID = "experience-transformation-design"

// Defaults decodes every embedded methodology.
func Defaults() ([]*Config, error) {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, eris.Wrap(err, "methodology: read embedded defaults")
	}
	out := make([]*Config, 0, len(entries))
	for _, e := range entries {
		data, err := defaultsFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "methodology: read embedded %s", e.Name())
		}
		cfg, err := Parse(data, FormatYAML)
		if err != nil {
			return nil, eris.Wrapf(err, "methodology: embedded %s", e.Name())
		}
		out = append(out, cfg)
	}
	return out, nil
}
