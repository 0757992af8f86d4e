package models

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resource categories a steward can track.
const (
	CategoryFinancialAsset = "financial-asset"
	CategoryEnergy         = "energy"
	CategoryCompute        = "compute"
	CategoryWater          = "water"
	CategoryFood           = "food"
	CategoryShelter        = "shelter"
	CategoryTransportation = "transportation"
	CategoryProperty       = "property"
	CategoryEquipment      = "equipment"
	CategoryInventory      = "inventory"
	CategoryKnowledge      = "knowledge"
	CategoryReputation     = "reputation"
	CategoryUBA            = "uba"
)

// ResourceCategories lists every valid category.
var ResourceCategories = []string{
	CategoryFinancialAsset,
	CategoryEnergy,
	CategoryCompute,
	CategoryWater,
	CategoryFood,
	CategoryShelter,
	CategoryTransportation,
	CategoryProperty,
	CategoryEquipment,
	CategoryInventory,
	CategoryKnowledge,
	CategoryReputation,
	CategoryUBA,
}

// ValidResourceCategory reports whether category is a known resource category.
func ValidResourceCategory(category string) bool {
	for _, c := range ResourceCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Governance levels, from most local to most global.
const (
	GovernanceIndividual     = "individual"
	GovernanceHousehold      = "household"
	GovernanceCommunity      = "community"
	GovernanceNetwork        = "network"
	GovernanceConstitutional = "constitutional"
)

// ValidGovernanceLevel reports whether level is a known governance level.
func ValidGovernanceLevel(level string) bool {
	switch level {
	case GovernanceIndividual, GovernanceHousehold, GovernanceCommunity,
		GovernanceNetwork, GovernanceConstitutional:
		return true
	}
	return false
}

// Resource visibility scopes.
const (
	VisibilityPrivate   = "private"
	VisibilityHousehold = "household"
	VisibilityCommunity = "community"
	VisibilityPublic    = "public"
)

// Data quality of capacity and usage figures.
const (
	DataQualityMeasured  = "measured"
	DataQualityEstimated = "estimated"
	DataQualityManual    = "manual"
	DataQualityMixed     = "mixed"
)

// StewardedResource is a capacity-bounded resource tracked and managed by a
// steward: capacity, allocation blocks, usage, and governance.
//
// Available = TotalCapacity - TotalAllocated and may legitimately go
// negative. Over-allocation is a detectable, reportable condition, not a
// rejected state: aggregate reporting depends on detecting it.
type StewardedResource struct {
	ID             uuid.UUID `json:"id"`
	ResourceNumber string    `json:"resource_number"` // RES-XXXXXXXXXX
	StewardID      string    `json:"steward_id"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`

	// Capacity. AllocatableCapacity = TotalCapacity - PermanentReserve.
	TotalCapacity       Measure `json:"total_capacity"`
	PermanentReserve    Measure `json:"permanent_reserve"`
	AllocatableCapacity Measure `json:"allocatable_capacity"`

	// Running totals, kept consistent with the allocation list.
	TotalAllocated Measure `json:"total_allocated"`
	TotalUsed      Measure `json:"total_used"`
	Available      Measure `json:"available"`

	Allocations []AllocationBlock `json:"allocations"`

	GovernanceLevel string `json:"governance_level"`
	Visibility      string `json:"visibility"`
	DataQuality     string `json:"data_quality"`

	// Version is bumped on every save; the repository rejects writes whose
	// version no longer matches the stored row.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllocationBlock is a named sub-reservation of a resource's capacity.
// Blocks are never deleted, only retired by convention.
type AllocationBlock struct {
	ID         uuid.UUID `json:"id"`
	ResourceID uuid.UUID `json:"resource_id"`
	Label      string    `json:"label"`

	Allocated Measure `json:"allocated"`
	Used      Measure `json:"used"`
	Reserved  Measure `json:"reserved"`

	// Utilization = round(100 * Used / Allocated); 0 when nothing is
	// allocated. May exceed 100: over-use is reportable, not rejected.
	Utilization int `json:"utilization"`

	Priority        int    `json:"priority"` // 1 (highest) .. 10
	GovernanceLevel string `json:"governance_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UtilizationOf computes the rounded utilization percentage for the given
// used/allocated pair. Returns 0 when allocated is zero so the figure is
// never NaN or negative.
func UtilizationOf(used, allocated Measure) int {
	if allocated.Value == 0 {
		return 0
	}
	u := math.Round(100 * used.Value / allocated.Value)
	if u < 0 {
		return 0
	}
	return int(u)
}

// RecalculateTotals restores the aggregate invariants from the allocation
// list: TotalAllocated and TotalUsed equal the sums over all blocks, and
// Available = TotalCapacity - TotalAllocated.
func (r *StewardedResource) RecalculateTotals() {
	allocated := Measure{Unit: r.TotalCapacity.Unit}
	used := Measure{Unit: r.TotalCapacity.Unit}
	for _, block := range r.Allocations {
		allocated.Value += block.Allocated.Value
		used.Value += block.Used.Value
	}
	r.TotalAllocated = allocated
	r.TotalUsed = used
	r.Available = r.TotalCapacity.Sub(r.TotalAllocated)
}

// FindAllocation returns the allocation block with the given id, or nil.
func (r *StewardedResource) FindAllocation(blockID uuid.UUID) *AllocationBlock {
	for i := range r.Allocations {
		if r.Allocations[i].ID == blockID {
			return &r.Allocations[i]
		}
	}
	return nil
}

// NewResourceNumber generates a human-readable resource number of the form
// RES-XXXXXXXXXX.
func NewResourceNumber() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand read failures are not recoverable here; fall back to
		// a uuid-derived suffix so creation still succeeds.
		return "RES-" + uuid.NewString()[:10]
	}
	return "RES-" + strings.ToUpper(hex.EncodeToString(buf))
}
