package methodology

func testConfig() *Config {
	return &Config{
		ID:      "test-method",
		Name:    "Test Method",
		Version: "1.0",
		KPIs: []KPIConfig{
			{
				ID:              "conversion_rate_lift",
				Weight:          0.6,
				Inputs:          []string{"online_revenue"},
				BenchmarkInput:  "lift_percentage",
				BenchmarkRanges: &BenchmarkRanges{Conservative: 0.02, Moderate: 0.05, Aggressive: 0.09},
			},
			{
				ID:              "support_cost_savings",
				Weight:          0.4,
				Inputs:          []string{"current_support_contacts"},
				BenchmarkRanges: &BenchmarkRanges{Conservative: 0.10, Moderate: 0.20, Aggressive: 0.35},
			},
		},
		RealizationCurve:    []float64{0.4, 0.7, 0.9},
		ConfidenceDiscounts: DefaultDiscounts(),
	}
}

func ptr[T any](v T) *T { return &v }
