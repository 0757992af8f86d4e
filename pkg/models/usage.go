package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is an immutable observation of consumption against an
// allocation block. Records accumulate in a resource's recent-usage history
// and are never updated or deleted.
//
// Recording usage does not touch the allocation's Used total; utilization is
// recomputed in a separate, batched step because usage can arrive at meter
// frequency.
type UsageRecord struct {
	ID                uuid.UUID `json:"id"`
	ResourceID        uuid.UUID `json:"resource_id"`
	AllocationBlockID uuid.UUID `json:"allocation_block_id"`
	Action            string    `json:"action"`
	Quantity          Measure   `json:"quantity"`

	// ObserverAttestationID references an external verification of this
	// observation, when one exists.
	ObserverAttestationID string `json:"observer_attestation_id,omitempty"`

	// LedgerEventID is set once the audit event for this record is emitted.
	LedgerEventID *uuid.UUID `json:"ledger_event_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
