package dataload

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/impact-cli/internal/model"
)

// LoadAssumptions reads impact assumptions ({kpi_id: {scenario: rate}})
// from a .json, .yaml or .yml file.
func LoadAssumptions(path string) (model.ImpactAssumptions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataload: read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeAssumptions(b, false)
	case ".yaml", ".yml":
		return DecodeAssumptions(b, true)
	}
	return nil, eris.Errorf("dataload: unsupported assumptions file %q", path)
}

// DecodeAssumptions parses JSON, or YAML when isYAML is set, and rejects
// unknown scenario names.
func DecodeAssumptions(b []byte, isYAML bool) (model.ImpactAssumptions, error) {
	var out model.ImpactAssumptions
	if isYAML {
		if err := yaml.Unmarshal(b, &out); err != nil {
			return nil, eris.Wrap(err, "dataload: decode assumptions yaml")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&out); err != nil {
			return nil, eris.Wrap(err, "dataload: decode assumptions json")
		}
	}
	for kpiID, vals := range out {
		for s := range vals {
			if !s.Valid() {
				return nil, eris.Errorf("dataload: assumption for %s has unknown scenario %q", kpiID, s)
			}
		}
	}
	return out, nil
}
