package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/impact-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testCalculation(company, methodologyID string, created time.Time) *model.Calculation {
	return &model.Calculation{
		Input: model.CompanyData{
			CompanyName: company,
			Industry:    "retail",
			Fields: map[string]model.DataPointInput{
				"online_revenue": {Value: 100_000_000.0, ConfidenceTier: model.TierCompanyReported, ConfidenceScore: 0.9},
			},
		},
		Assumptions: model.ImpactAssumptions{
			"custom_kpi": {model.ScenarioModerate: 0.05},
		},
		Result: &model.CalculationResult{
			CompanyName:        company,
			Industry:           "retail",
			MethodologyID:      methodologyID,
			MethodologyVersion: "1.0",
			Scenarios: map[model.Scenario]model.ScenarioResult{
				model.ScenarioModerate: {
					Scenario:          model.ScenarioModerate,
					KPIResults:        []model.KPIAuditEntry{},
					HeadlineBasis:     model.HeadlineAdjusted,
					TotalAnnualImpact: 5_000_000,
					SkippedKPIs:       []string{},
				},
			},
			DataCompleteness: 1,
			MissingInputs:    []string{},
			AvailableInputs:  []string{"online_revenue"},
			Warnings:         []string{},
		},
		CreatedAt: created,
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		calc := testCalculation("Acme Corp", "etd", time.Time{})
		require.NoError(t, s.SaveCalculation(ctx, calc))
		assert.NotEmpty(t, calc.ID)
		assert.False(t, calc.CreatedAt.IsZero())
		assert.Equal(t, "Acme Corp", calc.CompanyName)
		assert.Equal(t, "etd", calc.MethodologyID)
		assert.Equal(t, "1.0", calc.MethodologyVersion)

		got, err := s.GetCalculation(ctx, calc.ID)
		require.NoError(t, err)
		assert.Equal(t, calc.ID, got.ID)
		assert.Equal(t, "retail", got.Industry)
		assert.InDelta(t, 5_000_000, got.Result.Scenarios[model.ScenarioModerate].TotalAnnualImpact, 1e-6)
		v, tier, ok := got.Input.Lookup("online_revenue")
		require.True(t, ok)
		assert.InDelta(t, 100_000_000, v, 1e-6)
		assert.Equal(t, model.TierCompanyReported, tier)
		rate, ok := got.Assumptions.Lookup("custom_kpi", model.ScenarioModerate)
		require.True(t, ok)
		assert.InDelta(t, 0.05, rate, 1e-12)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetCalculation(context.Background(), "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("NoAssumptions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		calc := testCalculation("Acme Corp", "etd", time.Time{})
		calc.Assumptions = nil
		require.NoError(t, s.SaveCalculation(ctx, calc))

		got, err := s.GetCalculation(ctx, calc.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Assumptions)
	})

	t.Run("RejectsMissingResult", func(t *testing.T) {
		s := newStore(t)
		err := s.SaveCalculation(context.Background(), &model.Calculation{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no result")
	})

	t.Run("ListFiltersAndOrders", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, c := range []*model.Calculation{
			testCalculation("Acme Corp", "etd", base),
			testCalculation("Acme Corp", "other", base.Add(time.Hour)),
			testCalculation("Globex", "etd", base.Add(2*time.Hour)),
		} {
			require.NoError(t, s.SaveCalculation(ctx, c), "calculation %d", i)
		}

		all, err := s.ListCalculations(ctx, CalculationFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Globex", all[0].CompanyName)
		assert.Equal(t, "other", all[1].MethodologyID)

		acme, err := s.ListCalculations(ctx, CalculationFilter{Company: "Acme Corp"})
		require.NoError(t, err)
		assert.Len(t, acme, 2)

		etd, err := s.ListCalculations(ctx, CalculationFilter{MethodologyID: "etd"})
		require.NoError(t, err)
		assert.Len(t, etd, 2)

		page, err := s.ListCalculations(ctx, CalculationFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "other", page[0].MethodologyID)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)
		got, err := s.ListCalculations(context.Background(), CalculationFilter{Company: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		calc := testCalculation("Acme Corp", "etd", time.Time{})
		require.NoError(t, s.SaveCalculation(ctx, calc))
		require.NoError(t, s.DeleteCalculation(ctx, calc.ID))

		_, err := s.GetCalculation(ctx, calc.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteCalculation(ctx, calc.ID), ErrNotFound)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestCalculationFilter_Limit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, CalculationFilter{}.limit())
	assert.Equal(t, DefaultListLimit, CalculationFilter{Limit: -3}.limit())
	assert.Equal(t, 7, CalculationFilter{Limit: 7}.limit())
}
