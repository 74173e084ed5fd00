package methodology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/impact-cli/internal/model"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	assert.Equal(t, model.HeadlineAdjusted, cfg.Headline())
	assert.Equal(t, PolicyMinimum, cfg.Policy())

	cfg.HeadlineBasis = model.HeadlineWeighted
	cfg.DiscountPolicy = PolicyMean
	assert.Equal(t, model.HeadlineWeighted, cfg.Headline())
	assert.Equal(t, PolicyMean, cfg.Policy())
}

func TestConfig_EnabledKPIs(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.KPIs[1].Enabled = ptr(false)

	enabled := cfg.EnabledKPIs()
	require.Len(t, enabled, 1)
	assert.Equal(t, "conversion_rate_lift", enabled[0].ID)
	assert.InDelta(t, 0.6, cfg.TotalWeight(), 1e-9)

	cfg.KPIs[1].Enabled = ptr(true)
	assert.Len(t, cfg.EnabledKPIs(), 2)
	assert.InDelta(t, 1.0, cfg.TotalWeight(), 1e-9)
}

func TestConfig_CloneIsDeep(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.KPIs[0].Enabled = ptr(true)
	cfg.Enabled = ptr(true)
	cp := cfg.Clone()

	*cp.Enabled = false
	assert.True(t, cfg.IsEnabled())

	cp.KPIs[0].Inputs[0] = "changed"
	cp.KPIs[0].BenchmarkRanges.Moderate = 0.99
	*cp.KPIs[0].Enabled = false
	cp.RealizationCurve[0] = 0
	*cp.ConfidenceDiscounts.Estimated = 0.1

	assert.Equal(t, "online_revenue", cfg.KPIs[0].Inputs[0])
	assert.Equal(t, 0.05, cfg.KPIs[0].BenchmarkRanges.Moderate)
	assert.True(t, cfg.KPIs[0].IsEnabled())
	assert.Equal(t, 0.4, cfg.RealizationCurve[0])
	d, ok := cfg.ConfidenceDiscounts.Discount(model.TierEstimated)
	require.True(t, ok)
	assert.Equal(t, 0.4, d)

	var nilCfg *Config
	assert.Nil(t, nilCfg.Clone())
}

func TestBenchmarkRanges_For(t *testing.T) {
	t.Parallel()
	br := BenchmarkRanges{Conservative: 1, Moderate: 2, Aggressive: 3}
	tests := []struct {
		scenario model.Scenario
		want     float64
		ok       bool
	}{
		{model.ScenarioConservative, 1, true},
		{model.ScenarioModerate, 2, true},
		{model.ScenarioAggressive, 3, true},
		{model.Scenario("bogus"), 0, false},
	}
	for _, tt := range tests {
		got, ok := br.For(tt.scenario)
		assert.Equal(t, tt.ok, ok, tt.scenario)
		assert.Equal(t, tt.want, got, tt.scenario)
	}
}

func TestConfidenceDiscounts_Missing(t *testing.T) {
	t.Parallel()
	d := ConfidenceDiscounts{CompanyReported: ptr(1.0)}
	v, ok := d.Discount(model.TierCompanyReported)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = d.Discount(model.TierEstimated)
	assert.False(t, ok)
	_, ok = d.Discount(model.Tier("bogus"))
	assert.False(t, ok)
}

func TestKey_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "test-method@1.0", testConfig().Key().String())
}
