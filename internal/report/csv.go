package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/impact-cli/internal/model"
)

var auditHeader = []string{
	"scenario", "kpi_id", "kpi_label", "category", "weight", "benchmark_value", "benchmark_source",
	"raw_impact", "confidence_discount", "adjusted_impact", "weighted_impact", "skipped", "skip_reason",
}

// WriteCSV writes one row per scenario and KPI. Currency columns are fixed
// to cents.
func WriteCSV(w io.Writer, res *model.CalculationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, sr := range orderedScenarios(res) {
		for _, e := range sr.KPIResults {
			if err := cw.Write(auditRow(sr.Scenario, e)); err != nil {
				return eris.Wrap(err, "report: write csv row")
			}
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

func auditRow(s model.Scenario, e model.KPIAuditEntry) []string {
	return []string{
		string(s),
		e.KPIID,
		e.KPILabel,
		e.Category,
		ratio(e.Weight),
		ratio(e.BenchmarkValue),
		string(e.BenchmarkSource),
		cents(e.RawImpact),
		ratio(e.ConfidenceDiscount),
		cents(e.AdjustedImpact),
		cents(e.WeightedImpact),
		strconv.FormatBool(e.Skipped),
		e.SkipReason,
	}
}

// cents rounds half away from zero to two places.
func cents(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
