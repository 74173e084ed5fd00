package model

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// DataPointInput is one company data value together with its provenance.
type DataPointInput struct {
	Value           any        `json:"value"`
	ConfidenceTier  Tier       `json:"confidence_tier"`
	ConfidenceScore float64    `json:"confidence_score"`
	Source          string     `json:"source,omitempty"`
	DataAsOf        *time.Time `json:"data_as_of,omitempty"`
	IsOverride      bool       `json:"is_override,omitempty"`
	OverrideReason  string     `json:"override_reason,omitempty"`
}

// Float returns the value as a finite float64. Strings are never coerced:
// a malformed value cannot be trusted.
func (d DataPointInput) Float() (float64, bool) {
	var f float64
	switch v := d.Value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Tier returns the declared tier, defaulting an empty tier to estimated.
func (d DataPointInput) Tier() Tier {
	return d.ConfidenceTier.Normalize()
}

// Usable reports whether the data point is numeric and carries a known tier.
func (d DataPointInput) Usable() bool {
	if _, ok := d.Float(); !ok {
		return false
	}
	return d.Tier().Valid()
}

// CompanyData is the bundle of data points supplied for one calculation.
type CompanyData struct {
	CompanyName string                    `json:"company_name"`
	Industry    string                    `json:"industry"`
	Fields      map[string]DataPointInput `json:"fields"`
}

// Lookup returns the numeric value and tier of a field. ok is false when the
// field is absent, non-numeric, or declares an unknown tier.
func (c CompanyData) Lookup(name string) (float64, Tier, bool) {
	dp, found := c.Fields[name]
	if !found || !dp.Usable() {
		return 0, "", false
	}
	v, _ := dp.Float()
	return v, dp.Tier(), true
}

// Has reports whether the field is present and usable.
func (c CompanyData) Has(name string) bool {
	_, _, ok := c.Lookup(name)
	return ok
}

// AvailableFields returns the sorted names of all usable fields.
func (c CompanyData) AvailableFields() []string {
	out := make([]string, 0, len(c.Fields))
	for name, dp := range c.Fields {
		if dp.Usable() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// With returns a copy of c with the named field replaced or added. The
// receiver's field map is left untouched.
func (c CompanyData) With(name string, dp DataPointInput) CompanyData {
	fields := make(map[string]DataPointInput, len(c.Fields)+1)
	for k, v := range c.Fields {
		fields[k] = v
	}
	fields[name] = dp
	c.Fields = fields
	return c
}

// Without returns a copy of c with the named field removed.
func (c CompanyData) Without(name string) CompanyData {
	fields := make(map[string]DataPointInput, len(c.Fields))
	for k, v := range c.Fields {
		if k != name {
			fields[k] = v
		}
	}
	c.Fields = fields
	return c
}
