package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/config"
	"github.com/shefa-net/steward-engine/pkg/models"
)

func testFloorConfig() config.DignityFloorConfig {
	return config.DignityFloorConfig{
		FoodDailyRate:     15,
		ShelterMonthly:    800,
		HealthcareMonthly: 350,
		InternetMonthly:   60,
		TransportMonthly:  150,
	}
	// Total monthly floor: 450 + 800 + 350 + 60 + 150 = 1810.
}

func newFinancialService(repo *mockFinancialAssetRepository) FinancialService {
	return NewFinancialService(repo, testFloorConfig(), zap.NewNop())
}

func assetWithStreams(streams ...models.IncomeStream) *models.FinancialAsset {
	return &models.FinancialAsset{
		StewardID:     "steward-1",
		AssetType:     "fiat-currency",
		CurrencyCode:  "USD",
		IncomeStreams: streams,
	}
}

func TestAggregateIncomeStreams(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	assets := []*models.FinancialAsset{
		assetWithStreams(
			// Guaranteed monthly salary contributes at face value.
			models.IncomeStream{
				Amount: 2000, Frequency: models.FrequencyMonthly,
				Status: models.IncomeStatusActive, IsGuaranteed: true, Confidence: 100,
			},
			// Weekly gig at 50% confidence: 100 * 4.3 * 0.5 expected.
			models.IncomeStream{
				Amount: 100, Frequency: models.FrequencyWeekly,
				Status: models.IncomeStatusActive, Confidence: 50,
			},
			// Ended streams contribute nothing.
			models.IncomeStream{
				Amount: 5000, Frequency: models.FrequencyMonthly,
				Status: models.IncomeStatusEnded, IsGuaranteed: true, Confidence: 100,
			},
		),
	}

	income := svc.AggregateIncomeStreams(assets)

	assert.Equal(t, 2000.0, income.GuaranteedMonthlyIncome)
	assert.InDelta(t, 2215.0, income.ExpectedMonthlyIncome, 0.001)
	assert.Equal(t, 2, income.ActiveStreams)
	assert.Equal(t, 3, income.TotalStreams)
}

func TestAggregateIncomeStreams_OneTimeIncomeIsNotRecurring(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	income := svc.AggregateIncomeStreams([]*models.FinancialAsset{
		assetWithStreams(models.IncomeStream{
			Amount: 10000, Frequency: models.FrequencyOneTime,
			Status: models.IncomeStatusActive, IsGuaranteed: true, Confidence: 100,
		}),
	})

	assert.Equal(t, 0.0, income.GuaranteedMonthlyIncome)
	assert.Equal(t, 0.0, income.ExpectedMonthlyIncome)
	assert.Equal(t, 1, income.ActiveStreams)
}

func TestAggregateObligations(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	assets := []*models.FinancialAsset{
		{Obligations: []models.FinancialObligation{
			{Label: "mortgage", MonthlyPayment: 1200, RemainingAmount: 150000, Interest: 4.5},
			{Label: "card", MonthlyPayment: 90, RemainingAmount: 2400, Interest: 22},
		}},
	}

	obligations := svc.AggregateObligations(assets)

	assert.Equal(t, 1290.0, obligations.MonthlyObligations)
	assert.Equal(t, 152400.0, obligations.TotalLiability)
	assert.Equal(t, 2, obligations.ObligationCount)
}

func TestBuildDignityFloor(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	floor := svc.BuildDignityFloor(models.IncomeSummary{GuaranteedMonthlyIncome: 2000})
	assert.Equal(t, 450.0, floor.FoodMonthly)
	assert.Equal(t, 1810.0, floor.TotalMonthlyFloor)
	assert.True(t, floor.FloorMet)
	assert.Equal(t, 0.0, floor.MonthlyShortfall)

	floor = svc.BuildDignityFloor(models.IncomeSummary{GuaranteedMonthlyIncome: 1500})
	assert.False(t, floor.FloorMet)
	assert.Equal(t, 310.0, floor.MonthlyShortfall)

	// Shortfall is populated exactly when the floor is unmet.
	floor = svc.BuildDignityFloor(models.IncomeSummary{GuaranteedMonthlyIncome: 1810})
	assert.True(t, floor.FloorMet)
	assert.Equal(t, 0.0, floor.MonthlyShortfall)
}

func TestAssessFinancialHealth(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())
	metFloor := models.DignityFloor{FloorMet: true}
	unmetFloor := models.DignityFloor{FloorMet: false, MonthlyShortfall: 500}

	tests := []struct {
		name        string
		income      models.IncomeSummary
		obligations models.ObligationSummary
		floor       models.DignityFloor
		expected    string
	}{
		{
			name:     "unmet floor is critical regardless of surplus",
			income:   models.IncomeSummary{ExpectedMonthlyIncome: 10000},
			floor:    unmetFloor,
			expected: models.HealthCritical,
		},
		{
			name:        "thin surplus is at risk",
			income:      models.IncomeSummary{ExpectedMonthlyIncome: 2000, GuaranteedMonthlyIncome: 2000},
			obligations: models.ObligationSummary{MonthlyObligations: 1950},
			floor:       metFloor,
			expected:    models.HealthAtRisk,
		},
		{
			name:        "heavy liability is at risk despite surplus",
			income:      models.IncomeSummary{ExpectedMonthlyIncome: 3000, GuaranteedMonthlyIncome: 3000},
			obligations: models.ObligationSummary{MonthlyObligations: 1000, TotalLiability: 30000},
			floor:       metFloor,
			expected:    models.HealthAtRisk,
		},
		{
			name:        "large surplus is healthy",
			income:      models.IncomeSummary{ExpectedMonthlyIncome: 4000, GuaranteedMonthlyIncome: 4000},
			obligations: models.ObligationSummary{MonthlyObligations: 1000, TotalLiability: 5000},
			floor:       metFloor,
			expected:    models.HealthHealthy,
		},
		{
			name:        "moderate surplus is stable",
			income:      models.IncomeSummary{ExpectedMonthlyIncome: 2300, GuaranteedMonthlyIncome: 2300},
			obligations: models.ObligationSummary{MonthlyObligations: 2000, TotalLiability: 1000},
			floor:       metFloor,
			expected:    models.HealthStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.AssessFinancialHealth(tt.income, tt.obligations, tt.floor))
		})
	}
}

func TestGenerateFinancialRecommendations(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	assets := []*models.FinancialAsset{
		{Obligations: []models.FinancialObligation{
			{Label: "card", MonthlyPayment: 90, RemainingAmount: 2400, Interest: 22},
		}},
	}
	income := models.IncomeSummary{GuaranteedMonthlyIncome: 1000, ExpectedMonthlyIncome: 2500}
	floor := models.DignityFloor{FloorMet: false, TotalMonthlyFloor: 1810, MonthlyShortfall: 810}

	recs := svc.GenerateFinancialRecommendations(assets, income, floor)
	require.Len(t, recs, 3)

	assert.Equal(t, models.PriorityCritical, recs[0].Priority)
	assert.Equal(t, "dignity-floor", recs[0].Category)
	assert.Equal(t, models.PriorityHigh, recs[1].Priority)
	assert.Equal(t, "obligations", recs[1].Category)
	assert.Equal(t, models.PriorityMedium, recs[2].Priority)
	assert.Equal(t, "income-stability", recs[2].Category)
}

func TestGenerateFinancialRecommendations_NoFindings(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	recs := svc.GenerateFinancialRecommendations(nil,
		models.IncomeSummary{GuaranteedMonthlyIncome: 3000, ExpectedMonthlyIncome: 3000},
		models.DignityFloor{FloorMet: true})

	assert.Empty(t, recs)
}

func TestAssessIncomeStability(t *testing.T) {
	svc := newFinancialService(newMockFinancialAssetRepository())

	t.Run("no streams is uncertain", func(t *testing.T) {
		assert.Equal(t, models.StabilityUncertain, svc.AssessIncomeStability(nil))
	})

	t.Run("all streams inactive is uncertain", func(t *testing.T) {
		assets := []*models.FinancialAsset{assetWithStreams(
			models.IncomeStream{Status: models.IncomeStatusEnded, IsGuaranteed: true, Confidence: 100},
		)}
		assert.Equal(t, models.StabilityUncertain, svc.AssessIncomeStability(assets))
	})

	t.Run("guaranteed high-confidence streams are stable", func(t *testing.T) {
		assets := []*models.FinancialAsset{assetWithStreams(
			models.IncomeStream{Status: models.IncomeStatusActive, IsGuaranteed: true, Confidence: 95},
			models.IncomeStream{Status: models.IncomeStatusActive, IsGuaranteed: true, Confidence: 90},
		)}
		assert.Equal(t, models.StabilityStable, svc.AssessIncomeStability(assets))
	})

	t.Run("moderate confidence is variable", func(t *testing.T) {
		assets := []*models.FinancialAsset{assetWithStreams(
			models.IncomeStream{Status: models.IncomeStatusActive, Confidence: 70},
			models.IncomeStream{Status: models.IncomeStatusActive, Confidence: 65},
		)}
		assert.Equal(t, models.StabilityVariable, svc.AssessIncomeStability(assets))
	})

	t.Run("low confidence is uncertain", func(t *testing.T) {
		assets := []*models.FinancialAsset{assetWithStreams(
			models.IncomeStream{Status: models.IncomeStatusActive, Confidence: 30},
		)}
		assert.Equal(t, models.StabilityUncertain, svc.AssessIncomeStability(assets))
	})
}

func TestAnalyzeSteward(t *testing.T) {
	repo := newMockFinancialAssetRepository()
	svc := newFinancialService(repo)
	ctx := context.Background()

	asset := assetWithStreams(
		models.IncomeStream{
			Label: "salary", Amount: 2500, Frequency: models.FrequencyMonthly,
			Status: models.IncomeStatusActive, IsGuaranteed: true, Confidence: 100,
		},
	)
	asset.Obligations = []models.FinancialObligation{
		{Label: "rent", MonthlyPayment: 900, RemainingAmount: 0},
	}
	require.NoError(t, repo.Create(ctx, asset))

	summary, err := svc.AnalyzeSteward(ctx, "steward-1")
	require.NoError(t, err)

	assert.Equal(t, "steward-1", summary.StewardID)
	assert.Equal(t, 2500.0, summary.Income.GuaranteedMonthlyIncome)
	assert.Equal(t, 900.0, summary.Obligations.MonthlyObligations)
	assert.True(t, summary.DignityFloor.FloorMet)
	assert.Equal(t, models.HealthHealthy, summary.Health)
	assert.Equal(t, models.StabilityStable, summary.IncomeStability)
	assert.Empty(t, summary.Recommendations)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestAnalyzeSteward_RepositoryError(t *testing.T) {
	repo := newMockFinancialAssetRepository()
	repo.listErr = assert.AnError
	svc := newFinancialService(repo)

	_, err := svc.AnalyzeSteward(context.Background(), "steward-1")
	assert.ErrorIs(t, err, assert.AnError)
}
