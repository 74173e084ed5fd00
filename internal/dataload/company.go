// Package dataload reads company data bundles and impact assumptions from
// files so they can be handed to the engine.
package dataload

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/confidence"
	"github.com/sells-group/impact-cli/internal/model"
)

// Identity rows in tabular company files.
const (
	RowCompanyName = "company_name"
	RowIndustry    = "industry"
)

// Columns recognised in tabular company files. Only field and value are
// required.
const (
	colField  = "field"
	colValue  = "value"
	colTier   = "tier"
	colScore  = "score"
	colSource = "source"
	colAsOf   = "as_of"

	colSourceQuality = "source_quality"
	colSpecificity   = "specificity"
	colSampleSize    = "sample_size"
)

// LoadCompany reads a company bundle from a .json, .csv or .xlsx file.
func LoadCompany(path string) (model.CompanyData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return model.CompanyData{}, eris.Wrapf(err, "dataload: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return DecodeCompanyJSON(f)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return model.CompanyData{}, eris.Wrapf(err, "dataload: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		rows, err := ReadCSV(f)
		if err != nil {
			return model.CompanyData{}, eris.Wrapf(err, "dataload: read %s", path)
		}
		return ParseCompanyRows(rows)
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return model.CompanyData{}, eris.Wrapf(err, "dataload: read %s", path)
		}
		return ParseCompanyRows(rows)
	}
	return model.CompanyData{}, eris.Errorf("dataload: unsupported company file %q", path)
}

// DecodeCompanyJSON decodes {company_name, industry, fields:{...}}. Numeric
// values decode as json.Number.
func DecodeCompanyJSON(r io.Reader) (model.CompanyData, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data model.CompanyData
	if err := dec.Decode(&data); err != nil {
		return model.CompanyData{}, eris.Wrap(err, "dataload: decode company json")
	}
	if data.Fields == nil {
		data.Fields = map[string]model.DataPointInput{}
	}
	return data, nil
}

// DecodeCompanyBytes is DecodeCompanyJSON over a byte slice.
func DecodeCompanyBytes(b []byte) (model.CompanyData, error) {
	return DecodeCompanyJSON(bytes.NewReader(b))
}

// ParseCompanyRows turns a header row plus field,value,tier,score,source
// rows into a bundle. A row without a score but with any of the
// source_quality, specificity or sample_size factors gets a composite score
// with recency taken from as_of. A row without a tier but with a score gets
// the tier implied by the score. Values that do not parse as numbers are
// kept as strings and so count as missing downstream.
func ParseCompanyRows(rows [][]string) (model.CompanyData, error) {
	return parseCompanyRows(rows, time.Now())
}

func parseCompanyRows(rows [][]string, now time.Time) (model.CompanyData, error) {
	if len(rows) == 0 {
		return model.CompanyData{}, eris.New("dataload: empty company file")
	}
	cols := indexHeader(rows[0])
	if _, ok := cols[colField]; !ok {
		return model.CompanyData{}, eris.Errorf("dataload: header missing %q column", colField)
	}
	if _, ok := cols[colValue]; !ok {
		return model.CompanyData{}, eris.Errorf("dataload: header missing %q column", colValue)
	}

	data := model.CompanyData{Fields: make(map[string]model.DataPointInput)}
	for i, row := range rows[1:] {
		line := i + 2
		name := cell(row, cols, colField)
		if name == "" {
			continue
		}
		raw := cell(row, cols, colValue)

		switch name {
		case RowCompanyName:
			data.CompanyName = raw
			continue
		case RowIndustry:
			data.Industry = raw
			continue
		}

		dp := model.DataPointInput{
			Value:          parseValue(raw),
			ConfidenceTier: model.Tier(strings.ToLower(cell(row, cols, colTier))),
			Source:         cell(row, cols, colSource),
		}
		if s := cell(row, cols, colAsOf); s != "" {
			asOf, err := parseDate(s)
			if err != nil {
				return model.CompanyData{}, eris.Wrapf(err, "dataload: line %d: as_of", line)
			}
			dp.DataAsOf = &asOf
		}
		if s := cell(row, cols, colScore); s != "" {
			score, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return model.CompanyData{}, eris.Wrapf(err, "dataload: line %d: score %q", line, s)
			}
			dp.ConfidenceScore = score
		} else {
			score, ok, err := compositeScore(row, cols, dp.DataAsOf, now)
			if err != nil {
				return model.CompanyData{}, eris.Wrapf(err, "dataload: line %d", line)
			}
			if ok {
				dp.ConfidenceScore = score
			}
		}
		if dp.ConfidenceTier == "" && dp.ConfidenceScore > 0 {
			dp.ConfidenceTier = confidence.TierFromScore(dp.ConfidenceScore)
		}
		if _, dup := data.Fields[name]; dup {
			zap.L().Warn("dataload: duplicate field, keeping last", zap.String("field", name), zap.Int("line", line))
		}
		data.Fields[name] = dp
	}
	return data, nil
}

// compositeScore scores a row from its quality factors. ok is false when the
// row carries none of them.
func compositeScore(row []string, cols map[string]int, asOf *time.Time, now time.Time) (float64, bool, error) {
	f := confidence.Factors{Recency: confidence.RecencyScore(asOf, now)}
	var found bool
	for _, c := range []struct {
		name string
		dst  *float64
	}{
		{colSourceQuality, &f.SourceQuality},
		{colSpecificity, &f.Specificity},
		{colSampleSize, &f.SampleSize},
	} {
		s := cell(row, cols, c.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, eris.Wrapf(err, "%s %q", c.name, s)
		}
		*c.dst = v
		found = true
	}
	if !found {
		return 0, false, nil
	}
	return confidence.CompositeScore(f), true, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseValue reads spreadsheet-style numbers such as "$1,250,000" or "25%".
// Anything else is returned unchanged.
func parseValue(s string) any {
	clean := strings.NewReplacer(",", "", "$", "", "_", "", " ", "").Replace(s)
	pct := strings.HasSuffix(clean, "%")
	clean = strings.TrimSuffix(clean, "%")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || clean == "" {
		return s
	}
	if pct {
		f /= 100
	}
	return f
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognised date %q", s)
}
