package model

import "math"

// ScenarioValues holds a per-scenario impact rate. Scenarios may be omitted.
type ScenarioValues map[Scenario]float64

// ImpactAssumptions are caller-supplied impact rates keyed by KPI id, used
// for KPIs whose methodology entry carries no benchmark ranges.
type ImpactAssumptions map[string]ScenarioValues

// Lookup returns the assumption for a KPI and scenario. Non-finite values
// are treated as absent.
func (a ImpactAssumptions) Lookup(kpiID string, s Scenario) (float64, bool) {
	vals, ok := a[kpiID]
	if !ok {
		return 0, false
	}
	v, ok := vals[s]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
