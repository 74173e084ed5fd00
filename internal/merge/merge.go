// Package merge combines company data gathered from several sources into a
// single bundle, resolving overlaps by confidence tier.
package merge

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/model"
)

// DefaultThreshold is the relative discrepancy above which a conflict is
// flagged for review.
const DefaultThreshold = 0.10

// Conflict records one field supplied by two sources.
type Conflict struct {
	Field            string     `json:"field"`
	ExistingValue    any        `json:"existing_value"`
	ExistingSource   string     `json:"existing_source,omitempty"`
	ExistingTier     model.Tier `json:"existing_tier"`
	IncomingValue    any        `json:"incoming_value"`
	IncomingSource   string     `json:"incoming_source,omitempty"`
	IncomingTier     model.Tier `json:"incoming_tier"`
	ChosenValue      any        `json:"chosen_value"`
	Resolution       string     `json:"resolution"`
	Discrepancy      *float64   `json:"discrepancy,omitempty"`
	FlaggedForReview bool       `json:"flagged_for_review"`
}

// Merger merges company data bundles.
type Merger struct {
	threshold float64
}

// New creates a Merger. A non-positive threshold uses DefaultThreshold.
func New(threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Merger{threshold: threshold}
}

// Merge starts from primary and folds in each secondary in order. Gaps are
// filled silently. When both sides have a field the higher tier wins and a
// tie keeps the value already merged. Identity fields come from primary.
// Conflicts are returned in merge order, fields sorted within a secondary.
func (m *Merger) Merge(primary model.CompanyData, secondaries ...model.CompanyData) (model.CompanyData, []Conflict) {
	merged := model.CompanyData{
		CompanyName: primary.CompanyName,
		Industry:    primary.Industry,
		Fields:      make(map[string]model.DataPointInput, len(primary.Fields)),
	}
	for name, dp := range primary.Fields {
		merged.Fields[name] = dp
	}

	conflicts := make([]Conflict, 0)
	for _, sec := range secondaries {
		for _, name := range fieldNames(sec) {
			incoming := sec.Fields[name]
			existing, ok := merged.Fields[name]
			if !ok {
				merged.Fields[name] = incoming
				continue
			}

			winner, loser := existing, incoming
			if rank(incoming) > rank(existing) {
				winner, loser = incoming, existing
			}

			c := Conflict{
				Field:          name,
				ExistingValue:  existing.Value,
				ExistingSource: existing.Source,
				ExistingTier:   existing.Tier(),
				IncomingValue:  incoming.Value,
				IncomingSource: incoming.Source,
				IncomingTier:   incoming.Tier(),
				ChosenValue:    winner.Value,
				Resolution: fmt.Sprintf("chose %s (rank %d) over %s (rank %d)",
					winner.Tier(), rank(winner), loser.Tier(), rank(loser)),
			}
			a, aok := existing.Float()
			b, bok := incoming.Float()
			if aok && bok {
				d := Discrepancy(a, b)
				c.Discrepancy = &d
				c.FlaggedForReview = d > m.threshold
			}
			if c.FlaggedForReview {
				zap.L().Warn("merge: discrepancy flagged for review",
					zap.String("field", name),
					zap.Float64("discrepancy", *c.Discrepancy),
				)
			}
			conflicts = append(conflicts, c)
			merged.Fields[name] = winner
		}
	}
	return merged, conflicts
}

// Discrepancy is |a-b| / max(|a|, |b|), or 0 when both are zero.
func Discrepancy(a, b float64) float64 {
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}

func rank(dp model.DataPointInput) int {
	return dp.Tier().Rank()
}

func fieldNames(d model.CompanyData) []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
