package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/impact-cli/internal/model"
)

const summarySheet = "Summary"

// WriteXLSX writes a workbook with a summary sheet and one audit sheet per
// scenario.
func WriteXLSX(w io.Writer, res *model.CalculationResult) error {
	f, err := buildWorkbook(res)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

func buildWorkbook(res *model.CalculationResult) (*xlsx.File, error) {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(summarySheet)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add summary sheet")
	}
	addStrings(summary, "Company", res.CompanyName)
	addStrings(summary, "Industry", res.Industry)
	addStrings(summary, "Methodology", res.MethodologyID+" v"+res.MethodologyVersion)
	row := summary.AddRow()
	row.AddCell().SetString("Data completeness")
	row.AddCell().SetFloat(res.DataCompleteness)
	summary.AddRow()

	addStrings(summary, "Scenario", "Headline", "Raw", "Adjusted", "Weighted", "Cumulative", "ROI multiple")
	scenarios := orderedScenarios(res)
	for _, sr := range scenarios {
		row := summary.AddRow()
		row.AddCell().SetString(string(sr.Scenario))
		for _, v := range []float64{
			sr.TotalAnnualImpact,
			sr.TotalAnnualImpactRaw,
			sr.TotalAnnualImpactAdjusted,
			sr.TotalAnnualImpactWeighted,
			sr.CumulativeImpact,
		} {
			row.AddCell().SetFloat(v)
		}
		if sr.ROIMultiple != nil {
			row.AddCell().SetFloat(*sr.ROIMultiple)
		}
	}
	for _, warn := range res.Warnings {
		addStrings(summary, "Warning", warn)
	}

	for _, sr := range scenarios {
		sheet, err := f.AddSheet(string(sr.Scenario))
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: add %s sheet", sr.Scenario)
		}
		addStrings(sheet, auditHeader...)
		for _, e := range sr.KPIResults {
			addStrings(sheet, auditRow(sr.Scenario, e)...)
		}
		sheet.AddRow()
		addStrings(sheet, "Year", "Realization", "Projected", "Cumulative")
		for _, yp := range sr.YearProjections {
			row := sheet.AddRow()
			row.AddCell().SetInt(yp.Year)
			row.AddCell().SetFloat(yp.RealizationPercentage)
			row.AddCell().SetFloat(yp.ProjectedImpact)
			row.AddCell().SetFloat(yp.CumulativeImpact)
		}
	}
	return f, nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
