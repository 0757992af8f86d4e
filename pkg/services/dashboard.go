package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
)

// categoryWeights drive the capacity-weighted overall utilization figure.
// Fixed configuration; categories absent from the table use defaultWeight.
var categoryWeights = map[string]float64{
	models.CategoryFinancialAsset: 0.25,
	models.CategoryShelter:        0.15,
	models.CategoryFood:           0.15,
	models.CategoryEnergy:         0.10,
	models.CategoryWater:          0.10,
	models.CategoryCompute:        0.05,
	models.CategoryTransportation: 0.05,
}

const defaultCategoryWeight = 0.05

// DashboardService composes resource state and compliance signals into
// per-category summaries, alerts, and insights. Read-only: it performs no
// mutation, and store failures degrade to an empty dashboard because the
// call site is advisory.
type DashboardService interface {
	BuildDashboard(ctx context.Context, stewardID string) (*models.Dashboard, error)
}

type dashboardService struct {
	resources repositories.ResourceRepository
	cache     *redis.Client // nil when Redis is not configured
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(
	resources repositories.ResourceRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		resources: resources,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.Named("dashboard"),
	}
}

var _ DashboardService = (*dashboardService)(nil)

func dashboardCacheKey(stewardID string) string {
	return "steward-engine:dashboard:" + stewardID
}

func (s *dashboardService) BuildDashboard(ctx context.Context, stewardID string) (*models.Dashboard, error) {
	if cached := s.readCache(ctx, stewardID); cached != nil {
		return cached, nil
	}

	resources, err := s.resources.ListBySteward(ctx, stewardID)
	if err != nil {
		// Advisory read path: degrade to an empty dashboard rather than
		// failing the caller's view.
		s.logger.Warn("Dashboard degraded to empty: resource listing failed",
			zap.String("steward_id", stewardID),
			zap.Error(err))
		return &models.Dashboard{StewardID: stewardID, GeneratedAt: time.Now().UTC()}, nil
	}

	dashboard := s.compose(stewardID, resources)
	s.writeCache(ctx, stewardID, dashboard)
	return dashboard, nil
}

func (s *dashboardService) compose(stewardID string, resources []*models.StewardedResource) *models.Dashboard {
	dashboard := &models.Dashboard{
		StewardID:   stewardID,
		GeneratedAt: time.Now().UTC(),
	}

	byCategory := make(map[string]*models.CategorySummary)
	for _, resource := range resources {
		summary, ok := byCategory[resource.Category]
		if !ok {
			summary = &models.CategorySummary{
				Category:       resource.Category,
				TotalCapacity:  models.Measure{Unit: resource.TotalCapacity.Unit},
				TotalAllocated: models.Measure{Unit: resource.TotalCapacity.Unit},
				TotalUsed:      models.Measure{Unit: resource.TotalCapacity.Unit},
			}
			byCategory[resource.Category] = summary
		}
		summary.ResourceCount++
		summary.TotalCapacity.Value += resource.TotalCapacity.Value
		summary.TotalAllocated.Value += resource.TotalAllocated.Value
		summary.TotalUsed.Value += resource.TotalUsed.Value

		s.collectAlerts(dashboard, resource)
		s.collectInsights(dashboard, resource)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var weightedUtilization, weightSum float64
	for _, category := range categories {
		summary := byCategory[category]
		if summary.TotalCapacity.Value > 0 {
			summary.UtilizationPercent = summary.TotalUsed.Value / summary.TotalCapacity.Value * 100
		}
		summary.Health = UtilizationHealth(summary.UtilizationPercent)
		dashboard.Categories = append(dashboard.Categories, *summary)

		weight, ok := categoryWeights[category]
		if !ok {
			weight = defaultCategoryWeight
		}
		weightedUtilization += summary.UtilizationPercent * weight
		weightSum += weight
	}
	if weightSum > 0 {
		dashboard.OverallUtilization = weightedUtilization / weightSum
	}

	return dashboard
}

func (s *dashboardService) collectAlerts(dashboard *models.Dashboard, resource *models.StewardedResource) {
	if resource.Available.Value < 0 {
		dashboard.Alerts = append(dashboard.Alerts, models.DashboardAlert{
			Type:         models.AlertOverAllocation,
			Severity:     models.SummaryCritical,
			ResourceID:   resource.ID,
			ResourceName: resource.Name,
			Message: fmt.Sprintf("%s is over-allocated by %.2f %s",
				resource.Name, -resource.Available.Value, resource.Available.Unit),
		})
		return
	}

	if resource.TotalCapacity.Value > 0 &&
		resource.TotalAllocated.Value/resource.TotalCapacity.Value > NearCapacityFraction {
		dashboard.Alerts = append(dashboard.Alerts, models.DashboardAlert{
			Type:         models.AlertNearCapacity,
			Severity:     models.SummaryWarning,
			ResourceID:   resource.ID,
			ResourceName: resource.Name,
			Message: fmt.Sprintf("%s is more than %.0f%% allocated",
				resource.Name, NearCapacityFraction*100),
		})
	}
}

func (s *dashboardService) collectInsights(dashboard *models.Dashboard, resource *models.StewardedResource) {
	for _, block := range resource.Allocations {
		if block.Allocated.Value <= 0 {
			continue
		}
		if block.Used.Value/block.Allocated.Value < UnderutilizedFraction {
			dashboard.Insights = append(dashboard.Insights, models.DashboardInsight{
				Type:         models.InsightOpportunity,
				ResourceID:   resource.ID,
				ResourceName: resource.Name,
				Allocation:   block.Label,
				Message: fmt.Sprintf("Allocation %q on %s uses less than half of its reservation; consider freeing capacity",
					block.Label, resource.Name),
			})
		}
	}
}

func (s *dashboardService) readCache(ctx context.Context, stewardID string) *models.Dashboard {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, dashboardCacheKey(stewardID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		s.logger.Warn("Dashboard cache entry corrupt; rebuilding", zap.Error(err))
		return nil
	}
	return &dashboard
}

func (s *dashboardService) writeCache(ctx context.Context, stewardID string, dashboard *models.Dashboard) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(dashboard)
	if err != nil {
		s.logger.Warn("Failed to marshal dashboard for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey(stewardID), data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}
