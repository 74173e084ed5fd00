package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/impact-cli/internal/model"
)

func sampleResult() *model.CalculationResult {
	multiple := 2.5
	pct := 150.0
	cost := 2_000_000.0
	entries := []model.KPIAuditEntry{
		{
			KPIID: "conversion_rate_lift", KPILabel: "Conversion Rate Improvement", Category: "revenue",
			Weight: 1, BenchmarkValue: 0.05, BenchmarkSource: model.BenchmarkFromConfig,
			RawImpact: 5_000_000, ConfidenceDiscount: 1, AdjustedImpact: 5_000_000, WeightedImpact: 5_000_000,
			InputsUsed: map[string]float64{"online_revenue": 100_000_000},
			InputTiers: map[string]model.Tier{"online_revenue": model.TierCompanyReported},
		},
		{
			KPIID: "churn_reduction", Category: "retention", Weight: 0.2,
			Skipped: true, SkipReason: "missing required inputs: customer_count",
			InputsUsed: map[string]float64{}, InputTiers: map[string]model.Tier{},
		},
	}
	sr := model.ScenarioResult{
		Scenario:                  model.ScenarioModerate,
		KPIResults:                entries,
		HeadlineBasis:             model.HeadlineAdjusted,
		TotalAnnualImpact:         5_000_000,
		TotalAnnualImpactRaw:      5_000_000,
		TotalAnnualImpactAdjusted: 5_000_000,
		TotalAnnualImpactWeighted: 5_000_000,
		ImpactByCategory:          map[string]float64{"revenue": 5_000_000},
		ImpactByCategoryRaw:       map[string]float64{"revenue": 5_000_000},
		YearProjections: []model.YearProjection{
			{Year: 1, RealizationPercentage: 0.4, ProjectedImpact: 2_000_000, CumulativeImpact: 2_000_000},
			{Year: 2, RealizationPercentage: 0.7, ProjectedImpact: 3_500_000, CumulativeImpact: 5_500_000},
		},
		CumulativeImpact: 5_500_000,
		ROIPercentage:    &pct,
		ROIMultiple:      &multiple,
		EngagementCost:   &cost,
		SkippedKPIs:      []string{"churn_reduction"},
	}
	cons := sr
	cons.Scenario = model.ScenarioConservative
	cons.KPIResults = entries[1:]
	cons.TotalAnnualImpact = 0
	cons.ROIMultiple = nil

	return &model.CalculationResult{
		CompanyName:        "Acme",
		Industry:           "retail",
		MethodologyID:      "experience-transformation-design",
		MethodologyVersion: "1.0",
		Scenarios: map[model.Scenario]model.ScenarioResult{
			model.ScenarioModerate:     sr,
			model.ScenarioConservative: cons,
		},
		DataCompleteness: 0.5,
		MissingInputs:    []string{"customer_count"},
		AvailableInputs:  []string{"online_revenue"},
		Warnings:         []string{"Missing inputs: customer_count. KPIs requiring these will be skipped."},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, " json ": FormatJSON, "csv": FormatCSV, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatTable))
	out := buf.String()

	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "experience-transformation-design v1.0")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "$5,000,000")
	assert.Contains(t, out, "2.5x")
	assert.Contains(t, out, "skipped: missing required inputs: customer_count")
	assert.Contains(t, out, "Y2 $3,500,000")
	assert.Contains(t, out, "WARNING: Missing inputs")

	// Scenarios print in ascending order regardless of map order.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("[conservative]")), bytes.Index(buf.Bytes(), []byte("[moderate]")))
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	res := sampleResult()
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, res, FormatJSON))
	require.NoError(t, Write(&b, res, FormatJSON))
	assert.Equal(t, a.String(), b.String())

	var decoded model.CalculationResult
	require.NoError(t, json.Unmarshal(a.Bytes(), &decoded))
	assert.Equal(t, res.MissingInputs, decoded.MissingInputs)
	assert.Equal(t, 2.5, *decoded.Scenarios[model.ScenarioModerate].ROIMultiple)
	assert.Nil(t, decoded.Scenarios[model.ScenarioConservative].ROIMultiple)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, auditHeader, rows[0])
	assert.Equal(t, "conservative", rows[1][0])
	assert.Equal(t, "true", rows[1][11])

	mod := rows[2]
	assert.Equal(t, "moderate", mod[0])
	assert.Equal(t, "conversion_rate_lift", mod[1])
	assert.Equal(t, "0.05", mod[5])
	assert.Equal(t, "config", mod[6])
	assert.Equal(t, "5000000.00", mod[7])
	assert.Equal(t, "false", mod[11])
}

func TestCents(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.00", cents(0))
	assert.Equal(t, "1234.57", cents(1234.567))
	assert.Equal(t, "-2.50", cents(-2.5))
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Write(out, sampleResult(), FormatXLSX))
	require.NoError(t, out.Close())

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, summarySheet, f.Sheets[0].Name)
	assert.Equal(t, "conservative", f.Sheets[1].Name)
	assert.Equal(t, "moderate", f.Sheets[2].Name)
	assert.Equal(t, "Acme", f.Sheets[0].Rows[0].Cells[1].String())
	assert.Equal(t, "kpi_id", f.Sheets[2].Rows[0].Cells[1].String())
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, nil, FormatJSON))
	assert.Error(t, Write(&buf, sampleResult(), Format("pdf")))
}
