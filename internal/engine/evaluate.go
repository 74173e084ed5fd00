package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/kpi"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
)

// Skip reasons recorded on audit entries.
const (
	ReasonNotInRegistry = "KPI not found in registry"
	ReasonNoAssumption  = "no impact assumption provided"

	reasonMissingPrefix = "missing required inputs: "
	reasonFormulaPrefix = "formula error: "
)

// CategoryUnknown labels skipped entries whose KPI is not registered.
const CategoryUnknown = "unknown"

// ResolveBenchmark returns the scenario rate for a KPI. Benchmark ranges in
// the methodology take precedence over caller-supplied assumptions.
func ResolveBenchmark(k methodology.KPIConfig, s model.Scenario, assumptions model.ImpactAssumptions) (float64, model.BenchmarkSource, bool) {
	if k.BenchmarkRanges != nil {
		if v, ok := k.BenchmarkRanges.For(s); ok {
			return v, model.BenchmarkFromConfig, true
		}
	}
	if v, ok := assumptions.Lookup(k.ID, s); ok {
		return v, model.BenchmarkFromAssumption, true
	}
	return 0, "", false
}

// Evaluate computes one KPI for one scenario. It never fails: every
// per-metric problem is returned as a skipped entry carrying the reason.
func (e *Engine) Evaluate(data model.CompanyData, cfg *methodology.Config, k methodology.KPIConfig, s model.Scenario, assumptions model.ImpactAssumptions) model.KPIAuditEntry {
	entry := model.KPIAuditEntry{
		KPIID:              k.ID,
		KPILabel:           k.Label,
		FormulaDescription: k.Formula,
		InputsUsed:         map[string]float64{},
		InputTiers:         map[string]model.Tier{},
		BenchmarkCitation:  k.BenchmarkSource,
		Weight:             k.Weight,
		Category:           CategoryUnknown,
	}

	def, ok := e.reg.Lookup(k.ID)
	if !ok {
		return skip(entry, s, ReasonNotInRegistry)
	}
	entry.Category = string(def.Category)
	if entry.KPILabel == "" {
		entry.KPILabel = def.Label
	}
	if entry.FormulaDescription == "" {
		entry.FormulaDescription = def.Description
	}

	bench, source, ok := ResolveBenchmark(k, s, assumptions)
	if !ok {
		return skip(entry, s, ReasonNoAssumption)
	}
	entry.BenchmarkValue = bench
	entry.BenchmarkSource = source

	names := methodology.KPIInputs(k, e.reg)
	tiers := make([]model.Tier, 0, len(names))
	var missing []string
	for _, name := range names {
		v, tier, ok := data.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		entry.InputsUsed[name] = v
		entry.InputTiers[name] = tier
		tiers = append(tiers, tier)
	}
	if len(missing) > 0 {
		return skip(entry, s, reasonMissingPrefix+strings.Join(missing, ", "))
	}

	in := make(kpi.Inputs, len(entry.InputsUsed)+1)
	for name, v := range entry.InputsUsed {
		in[name] = v
	}
	in[def.BenchmarkInput] = bench

	raw, err := runFormula(def.Formula, in)
	if err != nil {
		return skip(entry, s, reasonFormulaPrefix+err.Error())
	}

	discount := Discount(cfg, tiers)
	entry.RawImpact = raw
	entry.ConfidenceDiscount = discount
	entry.AdjustedImpact = raw * discount
	entry.WeightedImpact = entry.AdjustedImpact * k.Weight
	return entry
}

// runFormula isolates a single formula: errors, panics and non-finite
// results all come back as an error.
func runFormula(f kpi.Formula, in kpi.Inputs) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	v, err = f(in)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("result is not finite (%g)", v)
	}
	return v, nil
}

func skip(entry model.KPIAuditEntry, s model.Scenario, reason string) model.KPIAuditEntry {
	entry.Skipped = true
	entry.SkipReason = reason
	zap.L().Debug("engine: kpi skipped",
		zap.String("kpi", entry.KPIID),
		zap.String("scenario", string(s)),
		zap.String("reason", reason),
	)
	return entry
}
