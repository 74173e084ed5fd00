package engine

import (
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
)

// Discount combines the tier discounts of a KPI's inputs under cfg's
// policy. Under the minimum policy a KPI mixing one company-reported and one
// estimated input is discounted as if entirely estimated. A KPI with no
// inputs takes the estimated discount. tiers must be in a stable order so
// the mean policy sums identically on every call.
func Discount(cfg *methodology.Config, tiers []model.Tier) float64 {
	if len(tiers) == 0 {
		d, _ := cfg.ConfidenceDiscounts.Discount(model.TierEstimated)
		return d
	}

	switch cfg.Policy() {
	case methodology.PolicyMean:
		var sum float64
		for _, t := range tiers {
			d, _ := cfg.ConfidenceDiscounts.Discount(t)
			sum += d
		}
		return sum / float64(len(tiers))
	default:
		lowest := 1.0
		for i, t := range tiers {
			d, _ := cfg.ConfidenceDiscounts.Discount(t)
			if i == 0 || d < lowest {
				lowest = d
			}
		}
		return lowest
	}
}
