package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shefa-net/steward-engine/pkg/database"
	"github.com/shefa-net/steward-engine/pkg/models"
)

// UsageRepository provides append-only access to usage records. Records are
// immutable once created; there is no update or delete path.
type UsageRepository interface {
	// Create inserts a new usage record.
	Create(ctx context.Context, record *models.UsageRecord) error

	// SetLedgerEventID attaches the audit event id emitted for a record.
	// This is the only field that changes after creation.
	SetLedgerEventID(ctx context.Context, recordID, eventID uuid.UUID) error

	// ListRecent returns the newest records for a resource, newest first.
	ListRecent(ctx context.Context, resourceID uuid.UUID, limit int) ([]*models.UsageRecord, error)
}

type usageRepository struct {
	db *database.DB
}

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(db *database.DB) UsageRepository {
	return &usageRepository{db: db}
}

var _ UsageRepository = (*usageRepository)(nil)

func (r *usageRepository) Create(ctx context.Context, record *models.UsageRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO usage_records (
			id, resource_id, allocation_block_id, action,
			quantity_value, quantity_unit, observer_attestation_id,
			ledger_event_id, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.ResourceID,
		record.AllocationBlockID,
		record.Action,
		record.Quantity.Value,
		record.Quantity.Unit,
		record.ObserverAttestationID,
		record.LedgerEventID,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create usage record: %w", err)
	}

	return nil
}

func (r *usageRepository) SetLedgerEventID(ctx context.Context, recordID, eventID uuid.UUID) error {
	query := `UPDATE usage_records SET ledger_event_id = $2 WHERE id = $1 AND ledger_event_id IS NULL`

	tag, err := r.db.Exec(ctx, query, recordID, eventID)
	if err != nil {
		return fmt.Errorf("failed to set ledger event id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usage record %s not found or event id already set", recordID)
	}
	return nil
}

func (r *usageRepository) ListRecent(ctx context.Context, resourceID uuid.UUID, limit int) ([]*models.UsageRecord, error) {
	query := `
		SELECT id, resource_id, allocation_block_id, action,
			quantity_value, quantity_unit, observer_attestation_id,
			ledger_event_id, recorded_at
		FROM usage_records
		WHERE resource_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	defer rows.Close()

	var records []*models.UsageRecord
	for rows.Next() {
		record, err := scanUsageRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}

	return records, nil
}

func scanUsageRecord(row pgx.Row) (*models.UsageRecord, error) {
	var rec models.UsageRecord

	err := row.Scan(
		&rec.ID,
		&rec.ResourceID,
		&rec.AllocationBlockID,
		&rec.Action,
		&rec.Quantity.Value,
		&rec.Quantity.Unit,
		&rec.ObserverAttestationID,
		&rec.LedgerEventID,
		&rec.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan usage record: %w", err)
	}

	return &rec, nil
}
