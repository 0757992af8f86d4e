// Package repositories provides data access for steward-engine entities.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shefa-net/steward-engine/pkg/apperrors"
	"github.com/shefa-net/steward-engine/pkg/database"
	"github.com/shefa-net/steward-engine/pkg/models"
)

// ResourceRepository provides data access for stewarded resources.
//
// A resource row carries its allocation blocks as a JSONB document, so every
// mutation is a whole-document read-modify-write. Update enforces an
// optimistic version check; concurrent writers lose with ErrVersionConflict
// and must reload before retrying.
type ResourceRepository interface {
	// Create inserts a new resource.
	Create(ctx context.Context, resource *models.StewardedResource) error

	// GetByID returns the resource, or (nil, nil) when it does not exist.
	// A lookup miss is an expected outcome, not an error.
	GetByID(ctx context.Context, id uuid.UUID) (*models.StewardedResource, error)

	// Update persists the resource if its version still matches the stored
	// row, then bumps the version. Returns apperrors.ErrVersionConflict
	// (wrapped) when another writer got there first.
	Update(ctx context.Context, resource *models.StewardedResource) error

	// ListBySteward returns all resources owned by a steward.
	ListBySteward(ctx context.Context, stewardID string) ([]*models.StewardedResource, error)
}

type resourceRepository struct {
	db *database.DB
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(db *database.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

var _ ResourceRepository = (*resourceRepository)(nil)

const resourceColumns = `
	id, resource_number, steward_id, category, subcategory, name, description,
	capacity_unit, total_capacity_value, permanent_reserve_value,
	allocatable_capacity_value, total_allocated_value, total_used_value,
	available_value, allocations, governance_level, visibility, data_quality,
	version, created_at, updated_at`

func (r *resourceRepository) Create(ctx context.Context, resource *models.StewardedResource) error {
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now
	resource.Version = 1

	allocationsJSON, err := json.Marshal(resource.Allocations)
	if err != nil {
		return fmt.Errorf("failed to marshal allocations: %w", err)
	}

	query := `
		INSERT INTO stewarded_resources (
			id, resource_number, steward_id, category, subcategory, name, description,
			capacity_unit, total_capacity_value, permanent_reserve_value,
			allocatable_capacity_value, total_allocated_value, total_used_value,
			available_value, allocations, governance_level, visibility, data_quality,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err = r.db.Exec(ctx, query,
		resource.ID,
		resource.ResourceNumber,
		resource.StewardID,
		resource.Category,
		resource.Subcategory,
		resource.Name,
		resource.Description,
		resource.TotalCapacity.Unit,
		resource.TotalCapacity.Value,
		resource.PermanentReserve.Value,
		resource.AllocatableCapacity.Value,
		resource.TotalAllocated.Value,
		resource.TotalUsed.Value,
		resource.Available.Value,
		allocationsJSON,
		resource.GovernanceLevel,
		resource.Visibility,
		resource.DataQuality,
		resource.Version,
		resource.CreatedAt,
		resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StewardedResource, error) {
	query := `SELECT ` + resourceColumns + ` FROM stewarded_resources WHERE id = $1`

	resource, err := scanResource(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *models.StewardedResource) error {
	allocationsJSON, err := json.Marshal(resource.Allocations)
	if err != nil {
		return fmt.Errorf("failed to marshal allocations: %w", err)
	}

	resource.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE stewarded_resources SET
			subcategory = $3, name = $4, description = $5,
			total_capacity_value = $6, permanent_reserve_value = $7,
			allocatable_capacity_value = $8, total_allocated_value = $9,
			total_used_value = $10, available_value = $11, allocations = $12,
			governance_level = $13, visibility = $14, data_quality = $15,
			version = version + 1, updated_at = $16
		WHERE id = $1 AND version = $2`

	tag, err := r.db.Exec(ctx, query,
		resource.ID,
		resource.Version,
		resource.Subcategory,
		resource.Name,
		resource.Description,
		resource.TotalCapacity.Value,
		resource.PermanentReserve.Value,
		resource.AllocatableCapacity.Value,
		resource.TotalAllocated.Value,
		resource.TotalUsed.Value,
		resource.Available.Value,
		allocationsJSON,
		resource.GovernanceLevel,
		resource.Visibility,
		resource.DataQuality,
		resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", resource.ID, &apperrors.VersionConflict{Entity: "stewarded_resource"})
	}

	resource.Version++
	return nil
}

func (r *resourceRepository) ListBySteward(ctx context.Context, stewardID string) ([]*models.StewardedResource, error) {
	query := `SELECT ` + resourceColumns + `
		FROM stewarded_resources
		WHERE steward_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, stewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.StewardedResource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}

	return resources, nil
}

func scanResource(row pgx.Row) (*models.StewardedResource, error) {
	var res models.StewardedResource
	var unit string
	var allocationsJSON []byte

	err := row.Scan(
		&res.ID,
		&res.ResourceNumber,
		&res.StewardID,
		&res.Category,
		&res.Subcategory,
		&res.Name,
		&res.Description,
		&unit,
		&res.TotalCapacity.Value,
		&res.PermanentReserve.Value,
		&res.AllocatableCapacity.Value,
		&res.TotalAllocated.Value,
		&res.TotalUsed.Value,
		&res.Available.Value,
		&allocationsJSON,
		&res.GovernanceLevel,
		&res.Visibility,
		&res.DataQuality,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan resource: %w", err)
	}

	// All capacity measures on one resource share the capacity unit.
	res.TotalCapacity.Unit = unit
	res.PermanentReserve.Unit = unit
	res.AllocatableCapacity.Unit = unit
	res.TotalAllocated.Unit = unit
	res.TotalUsed.Unit = unit
	res.Available.Unit = unit

	if len(allocationsJSON) > 0 && string(allocationsJSON) != "null" {
		if err := json.Unmarshal(allocationsJSON, &res.Allocations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal allocations: %w", err)
		}
	}

	return &res, nil
}
