package methodology

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/impact-cli/internal/kpi"
	"github.com/sells-group/impact-cli/internal/model"
)

// KindInvalidMethodology tags configuration errors that are fatal to a
// calculation call.
const KindInvalidMethodology = "invalid_methodology"

// ValidationError lists every problem found in a methodology. It is
// returned as a single error so callers can tell "fix the methodology"
// apart from "some metrics were skipped".
type ValidationError struct {
	Key      Key
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("methodology: invalid %s: %s", e.Key, strings.Join(e.Problems, "; "))
}

// Kind returns KindInvalidMethodology.
func (e *ValidationError) Kind() string {
	return KindInvalidMethodology
}

// IsValidationError reports whether err (or any error it wraps) is a
// *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the shape of cfg against reg. A nil registry means the
// built-in one. KPIs absent from the registry are allowed: they are skipped
// at calculation time.
func Validate(cfg *Config, reg *kpi.Registry) error {
	if cfg == nil {
		return &ValidationError{Problems: []string{"config is nil"}}
	}
	if reg == nil {
		reg = kpi.Default()
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.ID == "" {
		addf("id is required")
	}
	if cfg.Version == "" {
		addf("version is required")
	}
	if len(cfg.KPIs) == 0 {
		addf("at least one kpi is required")
	}

	for _, tier := range model.Tiers() {
		d, ok := cfg.ConfidenceDiscounts.Discount(tier)
		switch {
		case !ok:
			addf("confidence_discounts.%s is required", tier)
		case math.IsNaN(d) || d <= 0 || d > 1:
			addf("confidence_discounts.%s must be within (0, 1], got %g", tier, d)
		}
	}

	seen := make(map[string]bool, len(cfg.KPIs))
	for i, k := range cfg.KPIs {
		if k.ID == "" {
			addf("kpis[%d].id is required", i)
			continue
		}
		if seen[k.ID] {
			addf("kpis[%d].id %q is duplicated", i, k.ID)
		}
		seen[k.ID] = true

		if math.IsNaN(k.Weight) || k.Weight < 0 || k.Weight > 1 {
			addf("kpi %s: weight must be within [0, 1], got %g", k.ID, k.Weight)
		}
		if br := k.BenchmarkRanges; br != nil {
			vals := []float64{br.Conservative, br.Moderate, br.Aggressive}
			finite := true
			for _, v := range vals {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
					finite = false
				}
			}
			if !finite {
				addf("kpi %s: benchmark_ranges must be finite and non-negative", k.ID)
			} else if !(br.Conservative <= br.Moderate && br.Moderate <= br.Aggressive) {
				addf("kpi %s: benchmark_ranges must be ordered conservative (%g) <= moderate (%g) <= aggressive (%g)",
					k.ID, br.Conservative, br.Moderate, br.Aggressive)
			}
		}
		if k.BenchmarkInput != "" {
			if def, ok := reg.Lookup(k.ID); ok && def.BenchmarkInput != k.BenchmarkInput {
				addf("kpi %s: benchmark_input %q has no formula support (formula consumes %q)",
					k.ID, k.BenchmarkInput, def.BenchmarkInput)
			}
		}
	}

	if len(cfg.RealizationCurve) == 0 {
		addf("realization_curve must have at least one entry")
	}
	for i, pct := range cfg.RealizationCurve {
		if math.IsNaN(pct) || pct < 0 || pct > 1 {
			addf("realization_curve[%d] must be within [0, 1], got %g", i, pct)
		}
	}

	if cfg.HeadlineBasis != "" && !cfg.HeadlineBasis.Valid() {
		addf("headline_basis %q is not one of raw, adjusted, weighted", cfg.HeadlineBasis)
	}
	if cfg.DiscountPolicy != "" && !cfg.DiscountPolicy.Valid() {
		addf("discount_policy %q is not one of minimum, mean", cfg.DiscountPolicy)
	}

	if len(problems) > 0 {
		return &ValidationError{Key: cfg.Key(), Problems: problems}
	}
	return nil
}

// KPIInputs returns the sorted union of a KPI's declared inputs and the
// registry definition's required inputs.
func KPIInputs(k KPIConfig, reg *kpi.Registry) []string {
	set := make(map[string]struct{}, len(k.Inputs))
	for _, in := range k.Inputs {
		set[in] = struct{}{}
	}
	if reg != nil {
		if def, ok := reg.Lookup(k.ID); ok {
			for _, in := range def.RequiredInputs {
				set[in] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// RequiredInputs returns the sorted union of inputs across enabled KPIs.
// Fields needed only by disabled KPIs are excluded.
func (c *Config) RequiredInputs(reg *kpi.Registry) []string {
	set := make(map[string]struct{})
	for _, k := range c.EnabledKPIs() {
		for _, in := range KPIInputs(k, reg) {
			set[in] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
