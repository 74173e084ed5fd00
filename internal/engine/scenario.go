package engine

import (
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
)

func (e *Engine) runScenario(data model.CompanyData, cfg *methodology.Config, s model.Scenario, assumptions model.ImpactAssumptions) model.ScenarioResult {
	kpis := cfg.EnabledKPIs()
	entries := make([]model.KPIAuditEntry, 0, len(kpis))
	for _, k := range kpis {
		entries = append(entries, e.Evaluate(data, cfg, k, s, assumptions))
	}

	sr := Aggregate(s, cfg.Headline(), entries)
	sr.YearProjections = Project(sr.TotalAnnualImpact, cfg.RealizationCurve)
	if n := len(sr.YearProjections); n > 0 {
		sr.CumulativeImpact = sr.YearProjections[n-1].CumulativeImpact
	}
	if cost, ok := EngagementCost(data, e.costField); ok {
		sr.ROIPercentage, sr.ROIMultiple, sr.EngagementCost = ROI(sr.TotalAnnualImpact, cost)
	}
	return sr
}

// Aggregate totals a scenario's audit entries. Skipped entries contribute
// nothing; the headline total is the one selected by basis.
func Aggregate(s model.Scenario, basis model.HeadlineBasis, entries []model.KPIAuditEntry) model.ScenarioResult {
	if entries == nil {
		entries = []model.KPIAuditEntry{}
	}
	sr := model.ScenarioResult{
		Scenario:            s,
		KPIResults:          entries,
		HeadlineBasis:       basis,
		ImpactByCategory:    map[string]float64{},
		ImpactByCategoryRaw: map[string]float64{},
		YearProjections:     []model.YearProjection{},
	}

	var skipped []string
	for _, entry := range entries {
		if entry.Skipped {
			skipped = append(skipped, entry.KPIID)
			continue
		}
		sr.TotalAnnualImpactRaw += entry.RawImpact
		sr.TotalAnnualImpactAdjusted += entry.AdjustedImpact
		sr.TotalAnnualImpactWeighted += entry.WeightedImpact
		sr.ImpactByCategory[entry.Category] += entry.AdjustedImpact
		sr.ImpactByCategoryRaw[entry.Category] += entry.RawImpact
	}
	sr.SkippedKPIs = sortedUnique(skipped)

	switch basis {
	case model.HeadlineRaw:
		sr.TotalAnnualImpact = sr.TotalAnnualImpactRaw
	case model.HeadlineWeighted:
		sr.TotalAnnualImpact = sr.TotalAnnualImpactWeighted
	default:
		sr.HeadlineBasis = model.HeadlineAdjusted
		sr.TotalAnnualImpact = sr.TotalAnnualImpactAdjusted
	}
	return sr
}
