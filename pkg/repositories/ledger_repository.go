package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shefa-net/steward-engine/pkg/database"
	"github.com/shefa-net/steward-engine/pkg/models"
)

// LedgerRepository is the engine's audit log: one immutable event per
// mutating operation. Events can be appended and read, never mutated or
// deleted. The store-assigned sequence orders events for a resource by the
// time the mutation occurred.
type LedgerRepository interface {
	// Append inserts an event and fills in its id, sequence, and timestamp.
	Append(ctx context.Context, event *models.LedgerEvent) error

	// ListByResource returns a resource's events in mutation order.
	ListByResource(ctx context.Context, resourceID uuid.UUID, limit int) ([]*models.LedgerEvent, error)
}

type ledgerRepository struct {
	db *database.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *database.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

var _ LedgerRepository = (*ledgerRepository)(nil)

func (r *ledgerRepository) Append(ctx context.Context, event *models.LedgerEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now().UTC()

	var quantityValue *float64
	var quantityUnit *string
	if event.Quantity != nil {
		quantityValue = &event.Quantity.Value
		quantityUnit = &event.Quantity.Unit
	}

	additionalJSON, err := json.Marshal(event.AdditionalData)
	if err != nil {
		return fmt.Errorf("failed to marshal additional data: %w", err)
	}

	query := `
		INSERT INTO ledger_events (
			id, action, provider_id, receiver_id, resource_id,
			quantity_value, quantity_unit, note, additional_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING sequence`

	err = r.db.QueryRow(ctx, query,
		event.ID,
		event.Action,
		event.ProviderID,
		event.ReceiverID,
		event.ResourceID,
		quantityValue,
		quantityUnit,
		event.Note,
		additionalJSON,
		event.CreatedAt,
	).Scan(&event.Sequence)
	if err != nil {
		return fmt.Errorf("failed to append ledger event: %w", err)
	}

	return nil
}

func (r *ledgerRepository) ListByResource(ctx context.Context, resourceID uuid.UUID, limit int) ([]*models.LedgerEvent, error) {
	query := `
		SELECT id, sequence, action, provider_id, receiver_id, resource_id,
			quantity_value, quantity_unit, note, additional_data, created_at
		FROM ledger_events
		WHERE resource_id = $1
		ORDER BY sequence ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %w", err)
	}
	defer rows.Close()

	var events []*models.LedgerEvent
	for rows.Next() {
		event, err := scanLedgerEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger events: %w", err)
	}

	return events, nil
}

func scanLedgerEvent(row pgx.Row) (*models.LedgerEvent, error) {
	var event models.LedgerEvent
	var quantityValue *float64
	var quantityUnit *string
	var additionalJSON []byte

	err := row.Scan(
		&event.ID,
		&event.Sequence,
		&event.Action,
		&event.ProviderID,
		&event.ReceiverID,
		&event.ResourceID,
		&quantityValue,
		&quantityUnit,
		&event.Note,
		&additionalJSON,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger event: %w", err)
	}

	if quantityValue != nil {
		q := models.Measure{Value: *quantityValue}
		if quantityUnit != nil {
			q.Unit = *quantityUnit
		}
		event.Quantity = &q
	}

	if len(additionalJSON) > 0 && string(additionalJSON) != "null" {
		if err := json.Unmarshal(additionalJSON, &event.AdditionalData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional data: %w", err)
		}
	}

	return &event, nil
}
