package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shefa-net/steward-engine/pkg/apperrors"
	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
	"github.com/shefa-net/steward-engine/pkg/retry"
)

// CreateResourceParams carries the inputs for a new stewarded resource.
type CreateResourceParams struct {
	StewardID        string
	Category         string
	Subcategory      string
	Name             string
	Description      string
	TotalCapacity    models.Measure
	PermanentReserve models.Measure
	GovernanceLevel  string
	Visibility       string
	DataQuality      string
}

// CreateAllocationParams carries the inputs for a new allocation block.
type CreateAllocationParams struct {
	Label           string
	Allocated       models.Measure
	Reserved        models.Measure
	Priority        int
	GovernanceLevel string
}

// RecordUsageParams carries the inputs for a usage observation.
type RecordUsageParams struct {
	Action                string
	Quantity              models.Measure
	ObserverAttestationID string
}

// ResourceService creates resources, carves allocation blocks out of them,
// records usage, and keeps aggregate totals consistent. Every mutation
// emits exactly one ledger event.
//
// Allocations that exceed allocatable capacity are NOT rejected: soft
// capacity is a design choice, and aggregate reporting depends on detecting
// over-allocation rather than preventing it. Callers needing hard limits
// must check Available before allocating.
type ResourceService interface {
	CreateResource(ctx context.Context, params CreateResourceParams) (*models.StewardedResource, error)
	CreateAllocation(ctx context.Context, resourceID uuid.UUID, params CreateAllocationParams) (*models.AllocationBlock, error)
	RecordUsage(ctx context.Context, resourceID, allocationBlockID uuid.UUID, params RecordUsageParams) (*models.UsageRecord, error)

	// UpdateAllocationUtilization sets an allocation's used total and
	// recomputes its utilization. Returns (nil, nil) when the resource or
	// allocation does not exist: a lookup miss is an expected outcome.
	UpdateAllocationUtilization(ctx context.Context, resourceID, allocationBlockID uuid.UUID, newUsed models.Measure) (*models.AllocationBlock, error)

	// GetResource returns (nil, nil) when the resource does not exist.
	GetResource(ctx context.Context, resourceID uuid.UUID) (*models.StewardedResource, error)
	ListResources(ctx context.Context, stewardID string) ([]*models.StewardedResource, error)
	ListRecentUsage(ctx context.Context, resourceID uuid.UUID) ([]*models.UsageRecord, error)
}

type resourceService struct {
	resources repositories.ResourceRepository
	usage     repositories.UsageRepository
	ledger    repositories.LedgerRepository
	logger    *zap.Logger

	persistTimeout   time.Duration
	recentUsageLimit int

	// Per-resource mutexes serialize read-modify-write within this process.
	// The optimistic version check in the repository covers writers in
	// other processes; conflicts there are retried after a fresh load.
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewResourceService creates a new ResourceService.
func NewResourceService(
	resources repositories.ResourceRepository,
	usage repositories.UsageRepository,
	ledger repositories.LedgerRepository,
	persistTimeout time.Duration,
	recentUsageLimit int,
	logger *zap.Logger,
) ResourceService {
	if recentUsageLimit <= 0 {
		recentUsageLimit = 50
	}
	return &resourceService{
		resources:        resources,
		usage:            usage,
		ledger:           ledger,
		logger:           logger.Named("resource-manager"),
		persistTimeout:   persistTimeout,
		recentUsageLimit: recentUsageLimit,
	}
}

var _ ResourceService = (*resourceService)(nil)

func (s *resourceService) lockResource(resourceID uuid.UUID) func() {
	actual, _ := s.locks.LoadOrStore(resourceID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *resourceService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.persistTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.persistTimeout)
}

func (s *resourceService) CreateResource(ctx context.Context, params CreateResourceParams) (*models.StewardedResource, error) {
	if params.StewardID == "" {
		return nil, fmt.Errorf("steward id is required: %w", apperrors.ErrValidation)
	}
	if !models.ValidResourceCategory(params.Category) {
		return nil, fmt.Errorf("unknown resource category %q: %w", params.Category, apperrors.ErrValidation)
	}
	if params.TotalCapacity.Value < 0 {
		return nil, fmt.Errorf("total capacity must not be negative: %w", apperrors.ErrValidation)
	}
	if params.PermanentReserve.Value > params.TotalCapacity.Value {
		return nil, fmt.Errorf("permanent reserve exceeds total capacity: %w", apperrors.ErrValidation)
	}
	if params.GovernanceLevel == "" {
		params.GovernanceLevel = models.GovernanceIndividual
	}
	if !models.ValidGovernanceLevel(params.GovernanceLevel) {
		return nil, fmt.Errorf("unknown governance level %q: %w", params.GovernanceLevel, apperrors.ErrValidation)
	}
	if params.Visibility == "" {
		params.Visibility = models.VisibilityPrivate
	}
	if params.DataQuality == "" {
		params.DataQuality = models.DataQualityManual
	}

	unit := params.TotalCapacity.Unit
	resource := &models.StewardedResource{
		ID:                  uuid.New(),
		ResourceNumber:      models.NewResourceNumber(),
		StewardID:           params.StewardID,
		Category:            params.Category,
		Subcategory:         params.Subcategory,
		Name:                params.Name,
		Description:         params.Description,
		TotalCapacity:       params.TotalCapacity,
		PermanentReserve:    models.Measure{Value: params.PermanentReserve.Value, Unit: unit},
		AllocatableCapacity: models.Measure{Value: params.TotalCapacity.Value - params.PermanentReserve.Value, Unit: unit},
		TotalAllocated:      models.Measure{Unit: unit},
		TotalUsed:           models.Measure{Unit: unit},
		Available:           params.TotalCapacity,
		Allocations:         []models.AllocationBlock{},
		GovernanceLevel:     params.GovernanceLevel,
		Visibility:          params.Visibility,
		DataQuality:         params.DataQuality,
	}

	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.resources.Create(persistCtx, resource); err != nil {
		s.logger.Error("Failed to create resource",
			zap.String("steward_id", params.StewardID),
			zap.String("category", params.Category),
			zap.Error(err))
		return nil, err
	}

	if err := s.emitEvent(ctx, &models.LedgerEvent{
		Action:     models.LedgerActionResourceCreated,
		ProviderID: params.StewardID,
		ReceiverID: params.StewardID,
		ResourceID: resource.ID,
		Quantity:   &resource.TotalCapacity,
		Note:       fmt.Sprintf("resource %s created", resource.ResourceNumber),
	}); err != nil {
		return resource, fmt.Errorf("resource created but audit event failed: %w", err)
	}

	return resource, nil
}

func (s *resourceService) CreateAllocation(ctx context.Context, resourceID uuid.UUID, params CreateAllocationParams) (*models.AllocationBlock, error) {
	if params.Label == "" {
		return nil, fmt.Errorf("allocation label is required: %w", apperrors.ErrValidation)
	}
	if params.Allocated.Value < 0 {
		return nil, fmt.Errorf("allocated amount must not be negative: %w", apperrors.ErrValidation)
	}
	if params.Priority == 0 {
		params.Priority = 5
	}
	if params.Priority < 1 || params.Priority > 10 {
		return nil, fmt.Errorf("priority must be between 1 and 10: %w", apperrors.ErrValidation)
	}

	unlock := s.lockResource(resourceID)
	defer unlock()

	var block *models.AllocationBlock
	err := retry.DoIfRetryable(ctx, retry.ConflictConfig(), func() error {
		persistCtx, cancel := s.withTimeout(ctx)
		defer cancel()

		resource, err := s.resources.GetByID(persistCtx, resourceID)
		if err != nil {
			return err
		}
		if resource == nil {
			return fmt.Errorf("resource %s: %w", resourceID, apperrors.ErrNotFound)
		}

		if params.GovernanceLevel == "" {
			params.GovernanceLevel = resource.GovernanceLevel
		}

		now := time.Now().UTC()
		candidate := models.AllocationBlock{
			ID:              uuid.New(),
			ResourceID:      resource.ID,
			Label:           params.Label,
			Allocated:       models.Measure{Value: params.Allocated.Value, Unit: resource.TotalCapacity.Unit},
			Used:            models.Measure{Unit: resource.TotalCapacity.Unit},
			Reserved:        models.Measure{Value: params.Reserved.Value, Unit: resource.TotalCapacity.Unit},
			Utilization:     0,
			Priority:        params.Priority,
			GovernanceLevel: params.GovernanceLevel,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		// Over-allocation (Available going negative) is deliberately not
		// rejected here; it surfaces through dashboard alerts instead.
		resource.Allocations = append(resource.Allocations, candidate)
		resource.RecalculateTotals()

		if err := s.resources.Update(persistCtx, resource); err != nil {
			return err
		}
		block = &candidate
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create allocation",
			zap.String("resource_id", resourceID.String()),
			zap.String("label", params.Label),
			zap.Error(err))
		return nil, err
	}

	if err := s.emitEvent(ctx, &models.LedgerEvent{
		Action:     models.LedgerActionAllocationCreated,
		ProviderID: block.ResourceID.String(),
		ReceiverID: block.ID.String(),
		ResourceID: resourceID,
		Quantity:   &block.Allocated,
		Note:       fmt.Sprintf("allocation %q created", block.Label),
	}); err != nil {
		return block, fmt.Errorf("allocation created but audit event failed: %w", err)
	}

	return block, nil
}

func (s *resourceService) RecordUsage(ctx context.Context, resourceID, allocationBlockID uuid.UUID, params RecordUsageParams) (*models.UsageRecord, error) {
	if params.Action == "" {
		return nil, fmt.Errorf("usage action is required: %w", apperrors.ErrValidation)
	}
	if params.Quantity.Value < 0 {
		return nil, fmt.Errorf("usage quantity must not be negative: %w", apperrors.ErrValidation)
	}

	record := &models.UsageRecord{
		ID:                    uuid.New(),
		ResourceID:            resourceID,
		AllocationBlockID:     allocationBlockID,
		Action:                params.Action,
		Quantity:              params.Quantity,
		ObserverAttestationID: params.ObserverAttestationID,
		Timestamp:             time.Now().UTC(),
	}

	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Usage recording is append-only and does not touch the allocation's
	// used total: meters may call this at high frequency, and utilization
	// recomputation is a separate, batched step.
	if err := s.usage.Create(persistCtx, record); err != nil {
		s.logger.Error("Failed to record usage",
			zap.String("resource_id", resourceID.String()),
			zap.String("allocation_block_id", allocationBlockID.String()),
			zap.Error(err))
		return nil, err
	}

	event := &models.LedgerEvent{
		Action:     models.LedgerActionUsageRecorded,
		ProviderID: allocationBlockID.String(),
		ReceiverID: resourceID.String(),
		ResourceID: resourceID,
		Quantity:   &record.Quantity,
		Note:       params.Action,
	}
	if params.ObserverAttestationID != "" {
		event.AdditionalData = models.JSONBMap{"observer_attestation_id": params.ObserverAttestationID}
	}
	if err := s.emitEvent(ctx, event); err != nil {
		return record, fmt.Errorf("usage recorded but audit event failed: %w", err)
	}

	eventCtx, cancelEvent := s.withTimeout(ctx)
	defer cancelEvent()
	if err := s.usage.SetLedgerEventID(eventCtx, record.ID, event.ID); err != nil {
		s.logger.Error("Failed to attach ledger event to usage record",
			zap.String("usage_record_id", record.ID.String()),
			zap.Error(err))
		return record, fmt.Errorf("usage recorded but audit event attachment failed: %w", err)
	}
	record.LedgerEventID = &event.ID

	return record, nil
}

func (s *resourceService) UpdateAllocationUtilization(ctx context.Context, resourceID, allocationBlockID uuid.UUID, newUsed models.Measure) (*models.AllocationBlock, error) {
	if newUsed.Value < 0 {
		return nil, fmt.Errorf("used amount must not be negative: %w", apperrors.ErrValidation)
	}

	unlock := s.lockResource(resourceID)
	defer unlock()

	var updated *models.AllocationBlock
	var missing bool
	err := retry.DoIfRetryable(ctx, retry.ConflictConfig(), func() error {
		persistCtx, cancel := s.withTimeout(ctx)
		defer cancel()

		resource, err := s.resources.GetByID(persistCtx, resourceID)
		if err != nil {
			return err
		}
		if resource == nil {
			missing = true
			return nil
		}

		block := resource.FindAllocation(allocationBlockID)
		if block == nil {
			missing = true
			return nil
		}

		block.Used = models.Measure{Value: newUsed.Value, Unit: block.Allocated.Unit}
		block.Utilization = models.UtilizationOf(block.Used, block.Allocated)
		block.UpdatedAt = time.Now().UTC()
		resource.RecalculateTotals()

		if err := s.resources.Update(persistCtx, resource); err != nil {
			return err
		}
		copied := *block
		updated = &copied
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update allocation utilization",
			zap.String("resource_id", resourceID.String()),
			zap.String("allocation_block_id", allocationBlockID.String()),
			zap.Error(err))
		return nil, err
	}
	if missing {
		return nil, nil
	}

	if err := s.emitEvent(ctx, &models.LedgerEvent{
		Action:     models.LedgerActionUtilizationUpdated,
		ProviderID: allocationBlockID.String(),
		ReceiverID: resourceID.String(),
		ResourceID: resourceID,
		Quantity:   &updated.Used,
		Note:       fmt.Sprintf("utilization now %d%%", updated.Utilization),
	}); err != nil {
		return updated, fmt.Errorf("utilization updated but audit event failed: %w", err)
	}

	return updated, nil
}

func (s *resourceService) GetResource(ctx context.Context, resourceID uuid.UUID) (*models.StewardedResource, error) {
	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.resources.GetByID(persistCtx, resourceID)
}

func (s *resourceService) ListResources(ctx context.Context, stewardID string) ([]*models.StewardedResource, error) {
	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.resources.ListBySteward(persistCtx, stewardID)
}

func (s *resourceService) ListRecentUsage(ctx context.Context, resourceID uuid.UUID) ([]*models.UsageRecord, error) {
	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.usage.ListRecent(persistCtx, resourceID, s.recentUsageLimit)
}

// emitEvent appends an audit event for a mutation that already persisted.
// A failure here is surfaced loudly: the mutation exists without its audit
// trail, which callers must know about.
func (s *resourceService) emitEvent(ctx context.Context, event *models.LedgerEvent) error {
	persistCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.ledger.Append(persistCtx, event); err != nil {
		s.logger.Error("Failed to emit ledger event",
			zap.String("action", event.Action),
			zap.String("resource_id", event.ResourceID.String()),
			zap.Error(err))
		return err
	}
	return nil
}
