package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Builtins(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.Equal(t, []string{
		"aov_increase",
		"churn_reduction",
		"conversion_rate_lift",
		"nps_referral_revenue",
		"support_cost_savings",
	}, reg.IDs())
	assert.Equal(t, 5, reg.Len())

	def, ok := reg.Lookup("churn_reduction")
	require.True(t, ok)
	assert.Equal(t, []string{"current_churn_rate", "customer_count", "revenue_per_customer"}, def.RequiredInputs)
	assert.Equal(t, "reduction_percentage", def.BenchmarkInput)
	assert.Equal(t, CategoryRetention, def.Category)
	assert.Equal(t, "currency", def.Unit)

	_, ok = reg.Lookup("not_a_kpi")
	assert.False(t, ok)
}

func TestNewRegistry_Rejects(t *testing.T) {
	t.Parallel()

	noop := func(Inputs) (float64, error) { return 0, nil }

	tests := []struct {
		name string
		defs []Definition
		want string
	}{
		{"missing id", []Definition{{Formula: noop, BenchmarkInput: "x"}}, "missing id"},
		{"missing formula", []Definition{{ID: "a", BenchmarkInput: "x"}}, "missing formula"},
		{"missing benchmark", []Definition{{ID: "a", Formula: noop}}, "missing benchmark input"},
		{"duplicate", []Definition{
			{ID: "a", Formula: noop, BenchmarkInput: "x"},
			{ID: "a", Formula: noop, BenchmarkInput: "x"},
		}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry(tt.defs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry_CopiesRequiredInputs(t *testing.T) {
	t.Parallel()

	inputs := []string{"a"}
	reg, err := NewRegistry(Definition{
		ID:             "k",
		RequiredInputs: inputs,
		BenchmarkInput: "rate",
		Formula:        func(Inputs) (float64, error) { return 0, nil },
	})
	require.NoError(t, err)

	inputs[0] = "mutated"
	def, _ := reg.Lookup("k")
	assert.Equal(t, []string{"a"}, def.RequiredInputs)

	ids := reg.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"k"}, reg.IDs())
}
