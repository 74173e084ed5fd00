// Package confidence scores the trustworthiness of company data points and
// maps scores onto the four confidence tiers.
package confidence

import (
	"math"
	"time"

	"github.com/sells-group/impact-cli/internal/model"
)

// Score thresholds for TierFromScore.
const (
	CompanyReportedMin   = 0.85
	IndustryBenchmarkMin = 0.65
	CrossIndustryMin     = 0.45
)

// UnknownRecency is the score given to data with no date.
const UnknownRecency = 0.30

var recencyByAge = []float64{1.0, 0.85, 0.70, 0.50, 0.35, 0.25}

const staleRecency = 0.20

// RecencyScore scores freshness by calendar-year age relative to now.
// Future-dated data scores 1.0.
func RecencyScore(dataAsOf *time.Time, now time.Time) float64 {
	if dataAsOf == nil || dataAsOf.IsZero() {
		return UnknownRecency
	}
	age := now.Year() - dataAsOf.Year()
	if age < 0 {
		return 1.0
	}
	if age < len(recencyByAge) {
		return recencyByAge[age]
	}
	return staleRecency
}

// Factors are the inputs to a composite confidence score, each in [0, 1].
type Factors struct {
	SourceQuality float64
	Recency       float64
	Specificity   float64
	SampleSize    float64
}

// CompositeScore weights the factors 0.40/0.25/0.20/0.15 and clamps the
// result to [0, 1].
func CompositeScore(f Factors) float64 {
	raw := f.SourceQuality*0.40 + f.Recency*0.25 + f.Specificity*0.20 + f.SampleSize*0.15
	return math.Max(0, math.Min(1, raw))
}

// TierFromScore maps a score onto a tier.
func TierFromScore(score float64) model.Tier {
	switch {
	case score >= CompanyReportedMin:
		return model.TierCompanyReported
	case score >= IndustryBenchmarkMin:
		return model.TierIndustryBenchmark
	case score >= CrossIndustryMin:
		return model.TierCrossIndustry
	default:
		return model.TierEstimated
	}
}
