package engine

import "github.com/sells-group/impact-cli/internal/model"

// EngagementCost reads the engagement cost from field. ok is false unless
// the value is usable and strictly positive.
func EngagementCost(data model.CompanyData, field string) (float64, bool) {
	v, _, ok := data.Lookup(field)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// ROI returns the percentage return and multiple of total over cost. cost
// must be positive.
func ROI(total, cost float64) (pct, multiple, engagementCost *float64) {
	p := (total - cost) / cost * 100
	m := total / cost
	c := cost
	return &p, &m, &c
}
