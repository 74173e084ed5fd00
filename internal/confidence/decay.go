package confidence

import (
	"math"
	"time"

	"github.com/sells-group/impact-cli/internal/model"
)

// DecayConfig controls how quickly a data point's confidence fades.
type DecayConfig struct {
	HalfLifeDays int     `mapstructure:"half_life_days" yaml:"half_life_days"`
	Floor        float64 `mapstructure:"floor" yaml:"floor"`
}

// DefaultDecay halves confidence every year, never below 0.2.
func DefaultDecay() DecayConfig {
	return DecayConfig{HalfLifeDays: 365, Floor: 0.2}
}

// EffectiveConfidence computes the time-decayed confidence of a data point:
// max(floor, raw * 2^(-ageDays / halfLifeDays)).
func EffectiveConfidence(raw float64, dataAsOf time.Time, now time.Time, decay DecayConfig) float64 {
	if raw <= 0 {
		return 0
	}
	if dataAsOf.IsZero() {
		return raw
	}

	ageDays := now.Sub(dataAsOf).Hours() / 24
	if ageDays <= 0 {
		return raw
	}

	halfLife := float64(decay.HalfLifeDays)
	if halfLife <= 0 {
		halfLife = 365
	}

	decayed := raw * math.Pow(2, -ageDays/halfLife)
	if decayed < decay.Floor {
		return decay.Floor
	}
	return decayed
}

// Rescore returns a copy of data with each dated score decayed to now. A
// dated point with no score is scored by recency alone. Declared tiers are
// kept; a point with no tier gets one derived from its new score.
// Overrides are left untouched.
func Rescore(data model.CompanyData, now time.Time, decay DecayConfig) model.CompanyData {
	out := data
	out.Fields = make(map[string]model.DataPointInput, len(data.Fields))
	for name, dp := range data.Fields {
		if !dp.IsOverride {
			switch {
			case dp.DataAsOf == nil:
			case dp.ConfidenceScore == 0:
				dp.ConfidenceScore = RecencyScore(dp.DataAsOf, now)
			default:
				dp.ConfidenceScore = EffectiveConfidence(dp.ConfidenceScore, *dp.DataAsOf, now, decay)
			}
			if dp.ConfidenceTier == "" && dp.ConfidenceScore > 0 {
				dp.ConfidenceTier = TierFromScore(dp.ConfidenceScore)
			}
		}
		out.Fields[name] = dp
	}
	return out
}
