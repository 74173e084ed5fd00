package model

// Tier is the declared trust level of a company data point.
type Tier string

const (
	TierCompanyReported   Tier = "company_reported"
	TierIndustryBenchmark Tier = "industry_benchmark"
	TierCrossIndustry     Tier = "cross_industry"
	TierEstimated         Tier = "estimated"
)

// Tiers lists every tier from most to least trustworthy.
func Tiers() []Tier {
	return []Tier{TierCompanyReported, TierIndustryBenchmark, TierCrossIndustry, TierEstimated}
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCompanyReported, TierIndustryBenchmark, TierCrossIndustry, TierEstimated:
		return true
	}
	return false
}

// Rank orders tiers by trust: 3 for company_reported down to 0 for
// estimated. Unknown tiers rank -1.
func (t Tier) Rank() int {
	switch t {
	case TierCompanyReported:
		return 3
	case TierIndustryBenchmark:
		return 2
	case TierCrossIndustry:
		return 1
	case TierEstimated:
		return 0
	}
	return -1
}

// Normalize maps an empty tier to estimated and leaves anything else as-is.
func (t Tier) Normalize() Tier {
	if t == "" {
		return TierEstimated
	}
	return t
}
