package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/apperrors"
	"github.com/shefa-net/steward-engine/pkg/config"
	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
)

// ComplianceService evaluates resources against constitutional limits.
// Pure classification per call: there is no position state machine, only
// five ordered positions derived from the current value.
type ComplianceService interface {
	// AssessResourcePosition classifies a resource's current value against
	// its category's limit. Returns apperrors.ErrNotFound (wrapped) when no
	// limit is configured for the category.
	AssessResourcePosition(ctx context.Context, resourceID uuid.UUID) (*models.ResourcePosition, error)

	// AssessValue classifies a raw value for a category without loading a
	// resource. Used by scheduled evaluations over external figures.
	AssessValue(category string, value float64) (*models.ResourcePosition, error)

	// CalculateCategoryCompliance produces the coarser classification used
	// by cross-steward compliance reports.
	CalculateCategoryCompliance(category string, totalValue float64) (*models.CategoryCompliance, error)

	// BuildComplianceReport groups a steward's resources by category and
	// classifies each category's aggregate holdings.
	BuildComplianceReport(ctx context.Context, stewardID string) (*models.ComplianceReport, error)
}

type complianceService struct {
	resources repositories.ResourceRepository
	limits    config.LimitProvider
	logger    *zap.Logger
}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService(
	resources repositories.ResourceRepository,
	limits config.LimitProvider,
	logger *zap.Logger,
) ComplianceService {
	return &complianceService{
		resources: resources,
		limits:    limits,
		logger:    logger.Named("compliance"),
	}
}

var _ ComplianceService = (*complianceService)(nil)

func (s *complianceService) AssessResourcePosition(ctx context.Context, resourceID uuid.UUID) (*models.ResourcePosition, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, apperrors.ErrNotFound)
	}

	position, err := s.AssessValue(resource.Category, resource.TotalCapacity.Value)
	if err != nil {
		return nil, err
	}
	position.ResourceID = resource.ID
	return position, nil
}

func (s *complianceService) AssessValue(category string, value float64) (*models.ResourcePosition, error) {
	limit, ok := s.limits.GetConstitutionalLimit(category)
	if !ok {
		return nil, fmt.Errorf("no constitutional limit for category %q: %w", category, apperrors.ErrNotFound)
	}

	positionType := ClassifyPosition(value, limit)
	compliance, warning := complianceForPosition(positionType)
	excess, excessPct := excessAboveCeiling(value, limit)

	return &models.ResourcePosition{
		Category:            category,
		AssessedAt:          time.Now().UTC(),
		PositionType:        positionType,
		CurrentValue:        value,
		DistanceFromFloor:   value - limit.FloorValue,
		DistanceFromCeiling: value - limit.CeilingValue,
		ExcessAboveCeiling:  excess,
		ExcessPercentage:    excessPct,
		// The full excess is available for transition to community
		// stewardship; splitting it is out of scope here.
		SurplusAvailableForTransition: excess,
		Compliance:                    compliance,
		WarningLevel:                  warning,
	}, nil
}

func (s *complianceService) CalculateCategoryCompliance(category string, totalValue float64) (*models.CategoryCompliance, error) {
	limit, ok := s.limits.GetConstitutionalLimit(category)
	if !ok {
		return nil, fmt.Errorf("no constitutional limit for category %q: %w", category, apperrors.ErrNotFound)
	}

	cc := &models.CategoryCompliance{
		Category:     category,
		TotalValue:   totalValue,
		Unit:         limit.CeilingUnit,
		FloorValue:   limit.FloorValue,
		CeilingValue: limit.CeilingValue,
		Status:       models.CategoryCompliant,
		WarningLevel: models.WarningNone,
	}

	switch {
	case totalValue < limit.FloorValue:
		// Below floor is a policy gap to remediate via entitlement, not a
		// penalty: at-risk with no warning, unlike the red warning the
		// per-resource position view uses.
		cc.Status = models.CategoryAtRisk
	case totalValue > limit.CeilingValue:
		cc.Status = models.CategoryExceedsCeiling
		cc.Excess = totalValue - limit.CeilingValue
		if limit.CeilingValue > 0 && cc.Excess <= limit.CeilingValue*ModerateExcessFraction {
			cc.WarningLevel = models.WarningOrange
		} else {
			cc.WarningLevel = models.WarningRed
		}
	}

	return cc, nil
}

func (s *complianceService) BuildComplianceReport(ctx context.Context, stewardID string) (*models.ComplianceReport, error) {
	resources, err := s.resources.ListBySteward(ctx, stewardID)
	if err != nil {
		s.logger.Error("Failed to load resources for compliance report",
			zap.String("steward_id", stewardID),
			zap.Error(err))
		return nil, err
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, resource := range resources {
		totals[resource.Category] += resource.TotalCapacity.Value
		counts[resource.Category]++
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	report := &models.ComplianceReport{
		StewardID:   stewardID,
		GeneratedAt: time.Now().UTC(),
	}

	var excessCategories []string
	for _, category := range categories {
		cc, err := s.CalculateCategoryCompliance(category, totals[category])
		if err != nil {
			// Categories without a configured limit are skipped: there is
			// nothing to classify against.
			s.logger.Debug("Skipping category without constitutional limit",
				zap.String("category", category))
			continue
		}
		cc.ResourceCount = counts[category]
		report.Categories = append(report.Categories, *cc)

		if cc.Status == models.CategoryAtRisk {
			report.AtRiskCategories++
		}
		if cc.Excess > 0 {
			report.TotalExcess += cc.Excess
			excessCategories = append(excessCategories, category)
		}
	}

	report.OverallCompliant = report.TotalExcess == 0
	if report.TotalExcess > 0 {
		report.Recommendations = append(report.Recommendations, models.ComplianceRecommendation{
			Priority:    models.PriorityHigh,
			Categories:  excessCategories,
			TotalExcess: report.TotalExcess,
			Description: fmt.Sprintf(
				"Holdings exceed constitutional ceilings by %.2f across %d categories; plan a transition of the excess to community stewardship.",
				report.TotalExcess, len(excessCategories)),
		})
	}

	return report, nil
}
