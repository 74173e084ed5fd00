package model

// Scenario is one of the three benchmark postures applied across all KPIs.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioModerate     Scenario = "moderate"
	ScenarioAggressive   Scenario = "aggressive"
)

// Scenarios returns the scenarios in ascending order of ambition.
func Scenarios() []Scenario {
	return []Scenario{ScenarioConservative, ScenarioModerate, ScenarioAggressive}
}

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioConservative, ScenarioModerate, ScenarioAggressive:
		return true
	}
	return false
}
