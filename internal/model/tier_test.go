package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierRankOrdering(t *testing.T) {
	t.Parallel()

	tiers := Tiers()
	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i-1].Rank(), tiers[i].Rank(), "%s should outrank %s", tiers[i-1], tiers[i])
	}
	assert.Equal(t, -1, Tier("unknown").Rank())
}

func TestTierValid(t *testing.T) {
	t.Parallel()

	for _, tier := range Tiers() {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, Tier("").Valid())
	assert.False(t, Tier("override").Valid())
}

func TestScenariosOrdered(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Scenario{ScenarioConservative, ScenarioModerate, ScenarioAggressive}, Scenarios())
	assert.False(t, Scenario("optimistic").Valid())
}

func TestImpactAssumptionsLookup(t *testing.T) {
	t.Parallel()

	a := ImpactAssumptions{
		"conversion_rate_lift": {ScenarioModerate: 0.05},
	}

	v, ok := a.Lookup("conversion_rate_lift", ScenarioModerate)
	assert.True(t, ok)
	assert.InDelta(t, 0.05, v, 1e-12)

	_, ok = a.Lookup("conversion_rate_lift", ScenarioAggressive)
	assert.False(t, ok)

	_, ok = a.Lookup("churn_reduction", ScenarioModerate)
	assert.False(t, ok)

	var nilMap ImpactAssumptions
	_, ok = nilMap.Lookup("x", ScenarioModerate)
	assert.False(t, ok)
}
