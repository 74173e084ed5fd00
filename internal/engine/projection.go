package engine

import "github.com/sells-group/impact-cli/internal/model"

// Project spreads an annual total over the realization curve, one year per
// entry. The curve is used as given: it is neither clamped nor normalized.
func Project(total float64, curve []float64) []model.YearProjection {
	out := make([]model.YearProjection, len(curve))
	var cumulative float64
	for i, pct := range curve {
		projected := total * pct
		cumulative += projected
		out[i] = model.YearProjection{
			Year:                  i + 1,
			RealizationPercentage: pct,
			ProjectedImpact:       projected,
			CumulativeImpact:      cumulative,
		}
	}
	return out
}
