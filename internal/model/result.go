package model

// BenchmarkSource records where a KPI's scenario rate came from.
type BenchmarkSource string

const (
	BenchmarkFromConfig     BenchmarkSource = "config"
	BenchmarkFromAssumption BenchmarkSource = "assumption"
)

// KPIAuditEntry is the explainability record for one KPI in one scenario.
type KPIAuditEntry struct {
	KPIID              string             `json:"kpi_id"`
	KPILabel           string             `json:"kpi_label"`
	FormulaDescription string             `json:"formula_description"`
	InputsUsed         map[string]float64 `json:"inputs_used"`
	InputTiers         map[string]Tier    `json:"input_tiers"`
	BenchmarkValue     float64            `json:"benchmark_value"`
	BenchmarkSource    BenchmarkSource    `json:"benchmark_source,omitempty"`
	BenchmarkCitation  string             `json:"benchmark_citation,omitempty"`
	RawImpact          float64            `json:"raw_impact"`
	ConfidenceDiscount float64            `json:"confidence_discount"`
	AdjustedImpact     float64            `json:"adjusted_impact"`
	Weight             float64            `json:"weight"`
	WeightedImpact     float64            `json:"weighted_impact"`
	Category           string             `json:"category"`
	Skipped            bool               `json:"skipped"`
	SkipReason         string             `json:"skip_reason,omitempty"`
}

// YearProjection is one period of a scenario's realization schedule.
type YearProjection struct {
	Year                  int     `json:"year"`
	RealizationPercentage float64 `json:"realization_percentage"`
	ProjectedImpact       float64 `json:"projected_impact"`
	CumulativeImpact      float64 `json:"cumulative_impact"`
}

// HeadlineBasis selects which scenario total is reported as the headline
// figure and fed into projection and ROI.
type HeadlineBasis string

const (
	HeadlineRaw      HeadlineBasis = "raw"
	HeadlineAdjusted HeadlineBasis = "adjusted"
	HeadlineWeighted HeadlineBasis = "weighted"
)

// Valid reports whether b is a known basis.
func (b HeadlineBasis) Valid() bool {
	switch b {
	case HeadlineRaw, HeadlineAdjusted, HeadlineWeighted:
		return true
	}
	return false
}

// ScenarioResult aggregates every audit entry and projection for a scenario.
// ROI fields are nil when no positive engagement cost was supplied.
type ScenarioResult struct {
	Scenario                  Scenario           `json:"scenario"`
	KPIResults                []KPIAuditEntry    `json:"kpi_results"`
	HeadlineBasis             HeadlineBasis      `json:"headline_basis"`
	TotalAnnualImpact         float64            `json:"total_annual_impact"`
	TotalAnnualImpactRaw      float64            `json:"total_annual_impact_raw"`
	TotalAnnualImpactAdjusted float64            `json:"total_annual_impact_adjusted"`
	TotalAnnualImpactWeighted float64            `json:"total_annual_impact_weighted"`
	ImpactByCategory          map[string]float64 `json:"impact_by_category"`
	ImpactByCategoryRaw       map[string]float64 `json:"impact_by_category_raw"`
	YearProjections           []YearProjection   `json:"year_projections"`
	CumulativeImpact          float64            `json:"cumulative_impact"`
	ROIPercentage             *float64           `json:"roi_percentage,omitempty"`
	ROIMultiple               *float64           `json:"roi_multiple,omitempty"`
	EngagementCost            *float64           `json:"engagement_cost,omitempty"`
	SkippedKPIs               []string           `json:"skipped_kpis"`
}

// CalculationResult is the full output of one engine invocation.
type CalculationResult struct {
	CompanyName        string                      `json:"company_name"`
	Industry           string                      `json:"industry"`
	MethodologyID      string                      `json:"methodology_id"`
	MethodologyVersion string                      `json:"methodology_version"`
	Scenarios          map[Scenario]ScenarioResult `json:"scenarios"`
	DataCompleteness   float64                     `json:"data_completeness"`
	MissingInputs      []string                    `json:"missing_inputs"`
	AvailableInputs    []string                    `json:"available_inputs"`
	Warnings           []string                    `json:"warnings"`
}

// Scenario returns the result for s and whether it exists.
func (r *CalculationResult) Scenario(s Scenario) (ScenarioResult, bool) {
	sr, ok := r.Scenarios[s]
	return sr, ok
}
