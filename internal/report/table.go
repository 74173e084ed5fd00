package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/impact-cli/internal/model"
)

var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// WriteTable writes a human-readable summary followed by each scenario's
// audit trail.
func WriteTable(w io.Writer, res *model.CalculationResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Company:\t%s\n", res.CompanyName)
	if res.Industry != "" {
		fmt.Fprintf(tw, "Industry:\t%s\n", res.Industry)
	}
	fmt.Fprintf(tw, "Methodology:\t%s v%s\n", res.MethodologyID, res.MethodologyVersion)
	fmt.Fprintf(tw, "Completeness:\t%.0f%%\n", res.DataCompleteness*100)
	if len(res.MissingInputs) > 0 {
		fmt.Fprintf(tw, "Missing:\t%s\n", strings.Join(res.MissingInputs, ", "))
	}
	fmt.Fprintln(tw)

	scenarios := orderedScenarios(res)
	fmt.Fprintln(tw, "SCENARIO\tHEADLINE\tRAW\tADJUSTED\tWEIGHTED\tCUMULATIVE\tROI")
	for _, sr := range scenarios {
		roi := "-"
		if sr.ROIMultiple != nil {
			roi = printer.Sprintf("%.1fx", *sr.ROIMultiple)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			sr.Scenario,
			money(sr.TotalAnnualImpact),
			money(sr.TotalAnnualImpactRaw),
			money(sr.TotalAnnualImpactAdjusted),
			money(sr.TotalAnnualImpactWeighted),
			money(sr.CumulativeImpact),
			roi,
		)
	}

	for _, sr := range scenarios {
		fmt.Fprintf(tw, "\n[%s]\n", sr.Scenario)
		fmt.Fprintln(tw, "KPI\tCATEGORY\tBENCHMARK\tRAW\tDISCOUNT\tADJUSTED\tWEIGHTED\tNOTE")
		for _, e := range sr.KPIResults {
			if e.Skipped {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\tskipped: %s\n", e.KPIID, e.Category, e.SkipReason)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%.2f\t%s\t%s\t\n",
				e.KPIID, e.Category, e.BenchmarkValue,
				money(e.RawImpact), e.ConfidenceDiscount,
				money(e.AdjustedImpact), money(e.WeightedImpact),
			)
		}
		if len(sr.YearProjections) > 0 {
			years := make([]string, len(sr.YearProjections))
			for i, yp := range sr.YearProjections {
				years[i] = fmt.Sprintf("Y%d %s", yp.Year, money(yp.ProjectedImpact))
			}
			fmt.Fprintf(tw, "Projection:\t%s\n", strings.Join(years, "  "))
		}
		if len(sr.ImpactByCategory) > 0 {
			cats := make([]string, 0, len(sr.ImpactByCategory))
			for c := range sr.ImpactByCategory {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			parts := make([]string, len(cats))
			for i, c := range cats {
				parts[i] = c + " " + money(sr.ImpactByCategory[c])
			}
			fmt.Fprintf(tw, "By category:\t%s\n", strings.Join(parts, "  "))
		}
	}

	for _, warn := range res.Warnings {
		fmt.Fprintf(tw, "\nWARNING: %s\n", warn)
	}
	return tw.Flush()
}
