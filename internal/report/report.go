// Package report renders calculation results for people and spreadsheets.
package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-cli/internal/model"
)

// Format names an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", eris.Errorf("report: unknown format %q (want table, json, csv or xlsx)", s)
}

// Write renders res to w in the given format.
func Write(w io.Writer, res *model.CalculationResult, format Format) error {
	if res == nil {
		return eris.New("report: nil result")
	}
	switch format {
	case FormatTable, "":
		return WriteTable(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatXLSX:
		return WriteXLSX(w, res)
	}
	return eris.Errorf("report: unknown format %q", format)
}

// WriteJSON writes indented JSON. Output is stable for identical results.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

func orderedScenarios(res *model.CalculationResult) []model.ScenarioResult {
	out := make([]model.ScenarioResult, 0, len(res.Scenarios))
	for _, s := range model.Scenarios() {
		if sr, ok := res.Scenarios[s]; ok {
			out = append(out, sr)
		}
	}
	return out
}
