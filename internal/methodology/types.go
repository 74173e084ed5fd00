// Package methodology defines the versioned, declarative configuration that
// parameterizes an impact calculation, with validation, file loading, and a
// (id, version)-keyed library.
package methodology

import (
	"fmt"

	"github.com/sells-group/impact-cli/internal/model"
)

// DiscountPolicy selects how per-input tier discounts combine for a KPI.
type DiscountPolicy string

const (
	// PolicyMinimum applies the most conservative discount among the inputs.
	PolicyMinimum DiscountPolicy = "minimum"
	// PolicyMean applies the arithmetic mean of the inputs' discounts.
	PolicyMean DiscountPolicy = "mean"
)

// Valid reports whether p is a known policy.
func (p DiscountPolicy) Valid() bool {
	return p == PolicyMinimum || p == PolicyMean
}

// Config is one immutable methodology version. Edits produce a new version;
// a loaded Config is never mutated.
type Config struct {
	ID                   string              `json:"id" yaml:"id"`
	Name                 string              `json:"name" yaml:"name"`
	Version              string              `json:"version" yaml:"version"`
	ServiceType          string              `json:"service_type" yaml:"service_type"`
	ApplicableIndustries []string            `json:"applicable_industries" yaml:"applicable_industries"`
	KPIs                 []KPIConfig         `json:"kpis" yaml:"kpis"`
	RealizationCurve     []float64           `json:"realization_curve" yaml:"realization_curve"`
	ConfidenceDiscounts  ConfidenceDiscounts `json:"confidence_discounts" yaml:"confidence_discounts"`
	HeadlineBasis        model.HeadlineBasis `json:"headline_basis,omitempty" yaml:"headline_basis,omitempty"`
	DiscountPolicy       DiscountPolicy      `json:"discount_policy,omitempty" yaml:"discount_policy,omitempty"`
	Enabled              *bool               `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// KPIConfig is one line item of a methodology.
type KPIConfig struct {
	ID                 string           `json:"id" yaml:"id"`
	Label              string           `json:"label,omitempty" yaml:"label,omitempty"`
	Weight             float64          `json:"weight" yaml:"weight"`
	Formula            string           `json:"formula" yaml:"formula"`
	Inputs             []string         `json:"inputs" yaml:"inputs"`
	BenchmarkInput     string           `json:"benchmark_input,omitempty" yaml:"benchmark_input,omitempty"`
	BenchmarkRanges    *BenchmarkRanges `json:"benchmark_ranges,omitempty" yaml:"benchmark_ranges,omitempty"`
	BenchmarkSource    string           `json:"benchmark_source,omitempty" yaml:"benchmark_source,omitempty"`
	BenchmarkSourceURL string           `json:"benchmark_source_url,omitempty" yaml:"benchmark_source_url,omitempty"`
	Enabled            *bool            `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the KPI participates in calculations. An
// omitted flag means enabled.
func (k KPIConfig) IsEnabled() bool {
	return k.Enabled == nil || *k.Enabled
}

// BenchmarkRanges are the externally sourced impact rates per scenario.
type BenchmarkRanges struct {
	Conservative float64 `json:"conservative" yaml:"conservative"`
	Moderate     float64 `json:"moderate" yaml:"moderate"`
	Aggressive   float64 `json:"aggressive" yaml:"aggressive"`
}

// For returns the rate for scenario s.
func (b BenchmarkRanges) For(s model.Scenario) (float64, bool) {
	switch s {
	case model.ScenarioConservative:
		return b.Conservative, true
	case model.ScenarioModerate:
		return b.Moderate, true
	case model.ScenarioAggressive:
		return b.Aggressive, true
	}
	return 0, false
}

// ConfidenceDiscounts maps each tier to a multiplier in (0, 1]. Every tier
// must be declared; a missing entry is a validation error rather than an
// implicit 1.0.
type ConfidenceDiscounts struct {
	CompanyReported   *float64 `json:"company_reported" yaml:"company_reported"`
	IndustryBenchmark *float64 `json:"industry_benchmark" yaml:"industry_benchmark"`
	CrossIndustry     *float64 `json:"cross_industry" yaml:"cross_industry"`
	Estimated         *float64 `json:"estimated" yaml:"estimated"`
}

// Discount returns the multiplier declared for t.
func (d ConfidenceDiscounts) Discount(t model.Tier) (float64, bool) {
	var p *float64
	switch t {
	case model.TierCompanyReported:
		p = d.CompanyReported
	case model.TierIndustryBenchmark:
		p = d.IndustryBenchmark
	case model.TierCrossIndustry:
		p = d.CrossIndustry
	case model.TierEstimated:
		p = d.Estimated
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// DefaultDiscounts returns the standard 1.0 / 0.8 / 0.6 / 0.4 table.
func DefaultDiscounts() ConfidenceDiscounts {
	return NewDiscounts(1.0, 0.8, 0.6, 0.4)
}

// NewDiscounts builds a fully populated discount table.
func NewDiscounts(companyReported, industryBenchmark, crossIndustry, estimated float64) ConfidenceDiscounts {
	return ConfidenceDiscounts{
		CompanyReported:   &companyReported,
		IndustryBenchmark: &industryBenchmark,
		CrossIndustry:     &crossIndustry,
		Estimated:         &estimated,
	}
}

// Key identifies a methodology version.
type Key struct {
	ID      string
	Version string
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.ID, k.Version)
}

// Key returns the (id, version) identity of c.
func (c *Config) Key() Key {
	return Key{ID: c.ID, Version: c.Version}
}

// Headline returns the declared headline basis, defaulting to adjusted.
func (c *Config) Headline() model.HeadlineBasis {
	if c.HeadlineBasis == "" {
		return model.HeadlineAdjusted
	}
	return c.HeadlineBasis
}

// Policy returns the declared discount policy, defaulting to minimum.
func (c *Config) Policy() DiscountPolicy {
	if c.DiscountPolicy == "" {
		return PolicyMinimum
	}
	return c.DiscountPolicy
}

// IsEnabled reports whether the methodology is offered for new
// calculations. An omitted flag means enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// EnabledKPIs returns enabled KPIs in declaration order.
func (c *Config) EnabledKPIs() []KPIConfig {
	out := make([]KPIConfig, 0, len(c.KPIs))
	for _, k := range c.KPIs {
		if k.IsEnabled() {
			out = append(out, k)
		}
	}
	return out
}

// TotalWeight sums the weights of enabled KPIs.
func (c *Config) TotalWeight() float64 {
	var total float64
	for _, k := range c.EnabledKPIs() {
		total += k.Weight
	}
	return total
}

// Clone returns a deep copy so callers cannot reach a cached config's
// slices or pointers.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.ApplicableIndustries = append([]string(nil), c.ApplicableIndustries...)
	out.RealizationCurve = append([]float64(nil), c.RealizationCurve...)
	out.ConfidenceDiscounts = ConfidenceDiscounts{
		CompanyReported:   cloneFloat(c.ConfidenceDiscounts.CompanyReported),
		IndustryBenchmark: cloneFloat(c.ConfidenceDiscounts.IndustryBenchmark),
		CrossIndustry:     cloneFloat(c.ConfidenceDiscounts.CrossIndustry),
		Estimated:         cloneFloat(c.ConfidenceDiscounts.Estimated),
	}
	if c.Enabled != nil {
		en := *c.Enabled
		out.Enabled = &en
	}
	out.KPIs = make([]KPIConfig, len(c.KPIs))
	for i, k := range c.KPIs {
		k.Inputs = append([]string(nil), k.Inputs...)
		if k.BenchmarkRanges != nil {
			br := *k.BenchmarkRanges
			k.BenchmarkRanges = &br
		}
		if k.Enabled != nil {
			en := *k.Enabled
			k.Enabled = &en
		}
		out.KPIs[i] = k
	}
	return &out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
