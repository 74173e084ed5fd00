package confidence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/impact-cli/internal/model"
)

func TestEffectiveConfidence(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	decay := DecayConfig{HalfLifeDays: 365, Floor: 0.1}

	tests := []struct {
		name  string
		raw   float64
		asOf  time.Time
		decay DecayConfig
		want  float64
	}{
		{"current", 0.9, now, decay, 0.9},
		{"undated", 0.9, time.Time{}, decay, 0.9},
		{"future", 0.9, now.AddDate(1, 0, 0), decay, 0.9},
		{"one half-life", 0.8, now.AddDate(-1, 0, 0), decay, 0.4},
		{"two half-lives", 0.8, now.AddDate(-2, 0, 0), decay, 0.2},
		{"floor", 0.8, now.AddDate(-20, 0, 0), decay, 0.1},
		{"zero raw", 0, now.AddDate(-1, 0, 0), decay, 0},
		{"default half-life", 0.8, now.AddDate(-1, 0, 0), DecayConfig{Floor: 0.1}, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, EffectiveConfidence(tt.raw, tt.asOf, now, tt.decay), 0.01)
		})
	}
}

func TestRescore(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(-1, 0, 0)
	older := now.AddDate(-2, 0, 0)
	data := model.CompanyData{
		CompanyName: "Acme",
		Fields: map[string]model.DataPointInput{
			"dated":    {Value: 1, ConfidenceTier: model.TierCompanyReported, ConfidenceScore: 0.9, DataAsOf: &old},
			"untiered": {Value: 1, ConfidenceScore: 0.7},
			"override": {Value: 1, ConfidenceScore: 0.9, DataAsOf: &old, IsOverride: true},
			"unscored": {Value: 1, DataAsOf: &older},
		},
	}

	got := Rescore(data, now, DefaultDecay())
	assert.Equal(t, "Acme", got.CompanyName)
	assert.InDelta(t, 0.45, got.Fields["dated"].ConfidenceScore, 0.01)
	assert.Equal(t, model.TierCompanyReported, got.Fields["dated"].ConfidenceTier)
	assert.Equal(t, model.TierIndustryBenchmark, got.Fields["untiered"].ConfidenceTier)
	assert.Equal(t, 0.9, got.Fields["override"].ConfidenceScore)
	assert.InDelta(t, 0.70, got.Fields["unscored"].ConfidenceScore, 1e-9)
	assert.Equal(t, model.TierIndustryBenchmark, got.Fields["unscored"].ConfidenceTier)

	// The input is not mutated.
	assert.Equal(t, 0.9, data.Fields["dated"].ConfidenceScore)
	assert.Equal(t, model.Tier(""), data.Fields["untiered"].ConfidenceTier)
}
