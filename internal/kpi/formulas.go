package kpi

import "github.com/rotisserie/eris"

// Builtin returns the definitions shipped with the engine.
func Builtin() []Definition {
	return []Definition{
		{
			ID:             "conversion_rate_lift",
			Label:          "Conversion Rate Improvement",
			Description:    "Incremental revenue from higher conversion after UX/CX redesign: online_revenue * lift_percentage.",
			RequiredInputs: []string{"online_revenue"},
			BenchmarkInput: "lift_percentage",
			Category:       CategoryRevenue,
			Formula:        conversionRateLift,
		},
		{
			ID:             "aov_increase",
			Label:          "Average Order Value Increase",
			Description:    "Revenue from higher average order value: order_volume * current_aov * lift_percentage.",
			RequiredInputs: []string{"order_volume", "current_aov"},
			BenchmarkInput: "lift_percentage",
			Category:       CategoryRevenue,
			Formula:        aovIncrease,
		},
		{
			ID:             "churn_reduction",
			Label:          "Revenue Saved from Churn Reduction",
			Description:    "Revenue retained by reducing churn: churn_rate * customer_count * reduction_percentage * revenue_per_customer.",
			RequiredInputs: []string{"current_churn_rate", "customer_count", "revenue_per_customer"},
			BenchmarkInput: "reduction_percentage",
			Category:       CategoryRetention,
			Formula:        churnReduction,
		},
		{
			ID:             "support_cost_savings",
			Label:          "Support Cost Savings",
			Description:    "Savings from fewer support contacts: current_support_contacts * reduction_percentage * cost_per_contact.",
			RequiredInputs: []string{"current_support_contacts", "cost_per_contact"},
			BenchmarkInput: "reduction_percentage",
			Category:       CategoryCostSavings,
			Formula:        supportCostSavings,
		},
		{
			ID:             "nps_referral_revenue",
			Label:          "NPS-Linked Referral Revenue",
			Description:    "Referral revenue from NPS improvement: annual_revenue * (nps_point_improvement / 7) * 0.01.",
			RequiredInputs: []string{"annual_revenue"},
			BenchmarkInput: "nps_point_improvement",
			Category:       CategoryRevenue,
			Formula:        npsReferralRevenue,
		},
	}
}

// Get returns a named input or an error if the caller did not supply it.
func (in Inputs) Get(name string) (float64, error) {
	v, ok := in[name]
	if !ok {
		return 0, eris.Errorf("input %q not supplied", name)
	}
	return v, nil
}

func (in Inputs) nonNegative(names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := in.Get(name)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, eris.Errorf("%s cannot be negative, got %g", name, v)
		}
		out[i] = v
	}
	return out, nil
}

func (in Inputs) fraction(name string) (float64, error) {
	v, err := in.Get(name)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, eris.Errorf("%s must be within 0-1.0, got %g", name, v)
	}
	return v, nil
}

func conversionRateLift(in Inputs) (float64, error) {
	vals, err := in.nonNegative("online_revenue")
	if err != nil {
		return 0, err
	}
	lift, err := in.fraction("lift_percentage")
	if err != nil {
		return 0, err
	}
	return vals[0] * lift, nil
}

func aovIncrease(in Inputs) (float64, error) {
	vals, err := in.nonNegative("order_volume", "current_aov")
	if err != nil {
		return 0, err
	}
	lift, err := in.fraction("lift_percentage")
	if err != nil {
		return 0, err
	}
	orders, aov := vals[0], vals[1]
	return orders * (aov*(1+lift) - aov), nil
}

func churnReduction(in Inputs) (float64, error) {
	churn, err := in.fraction("current_churn_rate")
	if err != nil {
		return 0, err
	}
	vals, err := in.nonNegative("customer_count", "revenue_per_customer")
	if err != nil {
		return 0, err
	}
	reduction, err := in.fraction("reduction_percentage")
	if err != nil {
		return 0, err
	}
	customers, revPerCustomer := vals[0], vals[1]
	saved := churn * customers * reduction
	return saved * revPerCustomer, nil
}

func supportCostSavings(in Inputs) (float64, error) {
	vals, err := in.nonNegative("current_support_contacts", "cost_per_contact")
	if err != nil {
		return 0, err
	}
	reduction, err := in.fraction("reduction_percentage")
	if err != nil {
		return 0, err
	}
	return vals[0] * reduction * vals[1], nil
}

func npsReferralRevenue(in Inputs) (float64, error) {
	vals, err := in.nonNegative("annual_revenue", "nps_point_improvement")
	if err != nil {
		return 0, err
	}
	return vals[0] * (vals[1] / 7.0) * 0.01, nil
}
