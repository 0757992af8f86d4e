package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/config"
	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
)

// Financial health rule thresholds.
const (
	// minMonthlySurplus: below this surplus over obligations, a steward is
	// at risk even with the dignity floor met.
	minMonthlySurplus = 100.0

	// healthyMonthlySurplus: above this surplus, finances are healthy.
	healthyMonthlySurplus = 500.0

	// liabilityIncomeMultiple: total liability beyond this multiple of
	// monthly income marks the steward at risk.
	liabilityIncomeMultiple = 6.0

	// highInterestThreshold: obligations above this annual rate get a
	// payoff recommendation.
	highInterestThreshold = 10.0

	// volatileIncomeMultiple: expected income beyond this multiple of
	// guaranteed income flags volatility.
	volatileIncomeMultiple = 1.5

	// Stability thresholds.
	guaranteedStreamFraction = 0.7
	stableConfidenceFloor    = 80.0
	variableConfidenceFloor  = 60.0
)

// FinancialService aggregates income streams and obligations across a
// steward's financial assets into a monthly cash-flow picture, computes the
// dignity floor, classifies financial health, and emits recommendations.
type FinancialService interface {
	AggregateIncomeStreams(assets []*models.FinancialAsset) models.IncomeSummary
	AggregateObligations(assets []*models.FinancialAsset) models.ObligationSummary
	BuildDignityFloor(income models.IncomeSummary) models.DignityFloor
	AssessFinancialHealth(income models.IncomeSummary, obligations models.ObligationSummary, floor models.DignityFloor) string
	GenerateFinancialRecommendations(assets []*models.FinancialAsset, income models.IncomeSummary, floor models.DignityFloor) []models.FinancialRecommendation
	AssessIncomeStability(assets []*models.FinancialAsset) string

	// AnalyzeSteward loads a steward's assets and composes the full
	// stewardship summary.
	AnalyzeSteward(ctx context.Context, stewardID string) (*models.StewardshipSummary, error)
}

type financialService struct {
	assets repositories.FinancialAssetRepository
	floor  config.DignityFloorConfig
	logger *zap.Logger
}

// NewFinancialService creates a new FinancialService.
func NewFinancialService(
	assets repositories.FinancialAssetRepository,
	floor config.DignityFloorConfig,
	logger *zap.Logger,
) FinancialService {
	return &financialService{
		assets: assets,
		floor:  floor,
		logger: logger.Named("financial-analyzer"),
	}
}

var _ FinancialService = (*financialService)(nil)

// AggregateIncomeStreams normalizes every active income stream to a monthly
// figure. Guaranteed streams sum into GuaranteedMonthlyIncome at face value;
// ExpectedMonthlyIncome weights all active streams by their confidence.
// Streams whose status is not active are ignored entirely.
func (s *financialService) AggregateIncomeStreams(assets []*models.FinancialAsset) models.IncomeSummary {
	var summary models.IncomeSummary

	for _, asset := range assets {
		for _, stream := range asset.IncomeStreams {
			summary.TotalStreams++
			if stream.Status != models.IncomeStatusActive {
				continue
			}
			summary.ActiveStreams++

			monthly := stream.Amount * MonthlyFactor(stream.Frequency)
			if stream.IsGuaranteed {
				summary.GuaranteedMonthlyIncome += monthly
			}
			summary.ExpectedMonthlyIncome += monthly * float64(stream.Confidence) / 100
		}
	}

	return summary
}

// AggregateObligations sums monthly payments and remaining liability across
// all obligations of all assets.
func (s *financialService) AggregateObligations(assets []*models.FinancialAsset) models.ObligationSummary {
	var summary models.ObligationSummary

	for _, asset := range assets {
		for _, ob := range asset.Obligations {
			summary.ObligationCount++
			summary.MonthlyObligations += ob.MonthlyPayment
			summary.TotalLiability += ob.RemainingAmount
		}
	}

	return summary
}

// BuildDignityFloor sums the configured baseline costs into the minimum
// monthly cost of living and compares it against guaranteed income.
func (s *financialService) BuildDignityFloor(income models.IncomeSummary) models.DignityFloor {
	floor := models.DignityFloor{
		FoodMonthly:       s.floor.FoodDailyRate * 30,
		ShelterMonthly:    s.floor.ShelterMonthly,
		HealthcareMonthly: s.floor.HealthcareMonthly,
		InternetMonthly:   s.floor.InternetMonthly,
		TransportMonthly:  s.floor.TransportMonthly,
	}
	floor.TotalMonthlyFloor = floor.FoodMonthly + floor.ShelterMonthly +
		floor.HealthcareMonthly + floor.InternetMonthly + floor.TransportMonthly

	floor.FloorMet = income.GuaranteedMonthlyIncome >= floor.TotalMonthlyFloor
	if !floor.FloorMet {
		floor.MonthlyShortfall = floor.TotalMonthlyFloor - income.GuaranteedMonthlyIncome
	}

	return floor
}

// AssessFinancialHealth applies the ordered health rules. Expected monthly
// income is the figure compared against obligations and liability.
func (s *financialService) AssessFinancialHealth(income models.IncomeSummary, obligations models.ObligationSummary, floor models.DignityFloor) string {
	surplus := income.ExpectedMonthlyIncome - obligations.MonthlyObligations

	switch {
	case !floor.FloorMet:
		return models.HealthCritical
	case surplus < minMonthlySurplus:
		return models.HealthAtRisk
	case obligations.TotalLiability > income.ExpectedMonthlyIncome*liabilityIncomeMultiple:
		return models.HealthAtRisk
	case surplus > healthyMonthlySurplus:
		return models.HealthHealthy
	default:
		return models.HealthStable
	}
}

// GenerateFinancialRecommendations emits prioritized suggestions: unmet
// dignity floor (critical), high-interest obligations (high), and income
// volatility (medium).
func (s *financialService) GenerateFinancialRecommendations(assets []*models.FinancialAsset, income models.IncomeSummary, floor models.DignityFloor) []models.FinancialRecommendation {
	var recs []models.FinancialRecommendation

	if !floor.FloorMet {
		recs = append(recs, models.FinancialRecommendation{
			Priority: models.PriorityCritical,
			Category: "dignity-floor",
			Title:    "Guaranteed income below dignity floor",
			Description: fmt.Sprintf(
				"Guaranteed monthly income %.2f does not cover the %.2f minimum cost of living; shortfall is %.2f. Pursue entitlements or guaranteed income sources.",
				income.GuaranteedMonthlyIncome, floor.TotalMonthlyFloor, floor.MonthlyShortfall),
		})
	}

	var highInterest []string
	for _, asset := range assets {
		for _, ob := range asset.Obligations {
			if ob.Interest > highInterestThreshold {
				highInterest = append(highInterest, ob.Label)
			}
		}
	}
	if len(highInterest) > 0 {
		recs = append(recs, models.FinancialRecommendation{
			Priority: models.PriorityHigh,
			Category: "obligations",
			Title:    "High-interest obligations",
			Description: fmt.Sprintf(
				"%d obligations carry interest above %.0f%%: %v. Prioritize paying these down.",
				len(highInterest), highInterestThreshold, highInterest),
		})
	}

	if income.ExpectedMonthlyIncome > income.GuaranteedMonthlyIncome*volatileIncomeMultiple {
		recs = append(recs, models.FinancialRecommendation{
			Priority: models.PriorityMedium,
			Category: "income-stability",
			Title:    "Income relies on non-guaranteed streams",
			Description: fmt.Sprintf(
				"Expected income %.2f is more than %.1fx guaranteed income %.2f; budget against the guaranteed figure.",
				income.ExpectedMonthlyIncome, volatileIncomeMultiple, income.GuaranteedMonthlyIncome),
		})
	}

	return recs
}

// AssessIncomeStability classifies how dependable a steward's income mix is:
// stable when most streams are guaranteed and active with high confidence,
// variable on moderate confidence, otherwise uncertain.
func (s *financialService) AssessIncomeStability(assets []*models.FinancialAsset) string {
	var total, guaranteedActive, active int
	var confidenceSum float64

	for _, asset := range assets {
		for _, stream := range asset.IncomeStreams {
			total++
			if stream.Status == models.IncomeStatusActive {
				active++
				confidenceSum += float64(stream.Confidence)
				if stream.IsGuaranteed {
					guaranteedActive++
				}
			}
		}
	}

	if total == 0 || active == 0 {
		return models.StabilityUncertain
	}

	avgConfidence := confidenceSum / float64(active)
	guaranteedShare := float64(guaranteedActive) / float64(total)

	switch {
	case guaranteedShare > guaranteedStreamFraction && avgConfidence > stableConfidenceFloor:
		return models.StabilityStable
	case avgConfidence > variableConfidenceFloor:
		return models.StabilityVariable
	default:
		return models.StabilityUncertain
	}
}

func (s *financialService) AnalyzeSteward(ctx context.Context, stewardID string) (*models.StewardshipSummary, error) {
	assets, err := s.assets.ListBySteward(ctx, stewardID)
	if err != nil {
		s.logger.Error("Failed to load financial assets",
			zap.String("steward_id", stewardID),
			zap.Error(err))
		return nil, err
	}

	income := s.AggregateIncomeStreams(assets)
	obligations := s.AggregateObligations(assets)
	floor := s.BuildDignityFloor(income)

	return &models.StewardshipSummary{
		StewardID:       stewardID,
		Income:          income,
		Obligations:     obligations,
		DignityFloor:    floor,
		Health:          s.AssessFinancialHealth(income, obligations, floor),
		IncomeStability: s.AssessIncomeStability(assets),
		Recommendations: s.GenerateFinancialRecommendations(assets, income, floor),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}
