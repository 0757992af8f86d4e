package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shefa-net/steward-engine/pkg/apperrors"
	"github.com/shefa-net/steward-engine/pkg/models"
	"github.com/shefa-net/steward-engine/pkg/repositories"
)

// mockResourceRepository is an in-memory ResourceRepository with the same
// optimistic version semantics as the Postgres implementation.
type mockResourceRepository struct {
	mu        sync.Mutex
	resources map[uuid.UUID]*models.StewardedResource

	getErr    error
	updateErr error
	listErr   error
}

var _ repositories.ResourceRepository = (*mockResourceRepository)(nil)

func newMockResourceRepository() *mockResourceRepository {
	return &mockResourceRepository{resources: make(map[uuid.UUID]*models.StewardedResource)}
}

func copyResource(r *models.StewardedResource) *models.StewardedResource {
	copied := *r
	copied.Allocations = make([]models.AllocationBlock, len(r.Allocations))
	copy(copied.Allocations, r.Allocations)
	return &copied
}

func (m *mockResourceRepository) Create(_ context.Context, resource *models.StewardedResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	resource.Version = 1
	m.resources[resource.ID] = copyResource(resource)
	return nil
}

func (m *mockResourceRepository) GetByID(_ context.Context, id uuid.UUID) (*models.StewardedResource, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	return copyResource(stored), nil
}

func (m *mockResourceRepository) Update(_ context.Context, resource *models.StewardedResource) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.resources[resource.ID]
	if !ok || stored.Version != resource.Version {
		return fmt.Errorf("resource %s: %w", resource.ID, &apperrors.VersionConflict{Entity: "stewarded_resource"})
	}
	resource.Version++
	m.resources[resource.ID] = copyResource(resource)
	return nil
}

func (m *mockResourceRepository) ListBySteward(_ context.Context, stewardID string) ([]*models.StewardedResource, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StewardedResource
	for _, r := range m.resources {
		if r.StewardID == stewardID {
			out = append(out, copyResource(r))
		}
	}
	return out, nil
}

type mockUsageRepository struct {
	mu      sync.Mutex
	records []*models.UsageRecord

	createErr error
	attachErr error
}

var _ repositories.UsageRepository = (*mockUsageRepository)(nil)

func (m *mockUsageRepository) Create(_ context.Context, record *models.UsageRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockUsageRepository) SetLedgerEventID(_ context.Context, recordID, eventID uuid.UUID) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == recordID && rec.LedgerEventID == nil {
			id := eventID
			rec.LedgerEventID = &id
			return nil
		}
	}
	return fmt.Errorf("usage record %s not found or event id already set", recordID)
}

func (m *mockUsageRepository) ListRecent(_ context.Context, resourceID uuid.UUID, limit int) ([]*models.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.UsageRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].ResourceID == resourceID {
			copied := *m.records[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

type mockLedgerRepository struct {
	mu     sync.Mutex
	events []*models.LedgerEvent
	seq    int64

	appendErr error
}

var _ repositories.LedgerRepository = (*mockLedgerRepository)(nil)

func (m *mockLedgerRepository) Append(_ context.Context, event *models.LedgerEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	m.seq++
	event.Sequence = m.seq
	copied := *event
	m.events = append(m.events, &copied)
	return nil
}

func (m *mockLedgerRepository) ListByResource(_ context.Context, resourceID uuid.UUID, limit int) ([]*models.LedgerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LedgerEvent
	for _, e := range m.events {
		if e.ResourceID == resourceID && len(out) < limit {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockLedgerRepository) eventsFor(resourceID uuid.UUID) []*models.LedgerEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LedgerEvent
	for _, e := range m.events {
		if e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out
}

type mockFinancialAssetRepository struct {
	mu     sync.Mutex
	assets map[uuid.UUID]*models.FinancialAsset

	listErr error
}

var _ repositories.FinancialAssetRepository = (*mockFinancialAssetRepository)(nil)

func newMockFinancialAssetRepository() *mockFinancialAssetRepository {
	return &mockFinancialAssetRepository{assets: make(map[uuid.UUID]*models.FinancialAsset)}
}

func (m *mockFinancialAssetRepository) Create(_ context.Context, asset *models.FinancialAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.Version = 1
	copied := *asset
	m.assets[asset.ID] = &copied
	return nil
}

func (m *mockFinancialAssetRepository) GetByID(_ context.Context, id uuid.UUID) (*models.FinancialAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	copied := *asset
	return &copied, nil
}

func (m *mockFinancialAssetRepository) Update(_ context.Context, asset *models.FinancialAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.assets[asset.ID]
	if !ok || stored.Version != asset.Version {
		return fmt.Errorf("financial asset %s: %w", asset.ID, &apperrors.VersionConflict{Entity: "financial_asset"})
	}
	asset.Version++
	copied := *asset
	m.assets[asset.ID] = &copied
	return nil
}

func (m *mockFinancialAssetRepository) ListBySteward(_ context.Context, stewardID string) ([]*models.FinancialAsset, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.FinancialAsset
	for _, a := range m.assets {
		if a.StewardID == stewardID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}
