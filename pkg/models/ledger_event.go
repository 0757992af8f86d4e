package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger actions emitted by the engine, one per mutating operation.
const (
	LedgerActionResourceCreated    = "resource-created"
	LedgerActionAllocationCreated  = "allocation-created"
	LedgerActionUsageRecorded      = "usage-recorded"
	LedgerActionUtilizationUpdated = "utilization-updated"
)

// LedgerEvent is an immutable, timestamped record of a resource-affecting
// action. Events are appended, never mutated or deleted. Sequence is
// assigned by the store and orders events by the time the mutation occurred.
type LedgerEvent struct {
	ID       uuid.UUID `json:"id"`
	Sequence int64     `json:"sequence"`

	Action     string    `json:"action"`
	ProviderID string    `json:"provider_id"`
	ReceiverID string    `json:"receiver_id"`
	ResourceID uuid.UUID `json:"resource_id"`

	Quantity *Measure `json:"quantity,omitempty"`
	Note     string   `json:"note,omitempty"`

	// AdditionalData carries fields not yet promoted to first-class columns.
	AdditionalData JSONBMap `json:"additional_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}
