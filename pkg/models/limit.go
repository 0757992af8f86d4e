package models

import (
	"time"

	"github.com/google/uuid"
)

// Enforcement methods for constitutional ceilings.
const (
	EnforcementVoluntary   = "voluntary"   // voluntary compliance, no enforcement
	EnforcementProgressive = "progressive" // incentive-based nudges
	EnforcementHard        = "hard"        // mandatory, hard stops
)

// Position of a resource value relative to its constitutional bounds,
// ordered from lowest to highest value.
const (
	PositionBelowFloor      = "below-floor"
	PositionAtFloor         = "at-floor"
	PositionInSafeZone      = "in-safe-zone"
	PositionAboveCeiling    = "above-ceiling"
	PositionFarAboveCeiling = "far-above-ceiling"
)

// PositionRank maps a position to its place in the defined order. The
// classification is monotonic in value: rank never decreases as the
// assessed value increases.
var PositionRank = map[string]int{
	PositionBelowFloor:      0,
	PositionAtFloor:         1,
	PositionInSafeZone:      2,
	PositionAboveCeiling:    3,
	PositionFarAboveCeiling: 4,
}

// Compliance statuses for a resource position.
const (
	ComplianceCompliant        = "compliant"
	ComplianceApproachingLimit = "approaching-limit"
	ComplianceFarExceeds       = "far-exceeds-ceiling"
)

// Warning levels attached to positions and category compliance.
const (
	WarningNone   = "none"
	WarningYellow = "yellow"
	WarningOrange = "orange"
	WarningRed    = "red"
)

// ConstitutionalLimit defines the floor (minimum dignity entitlement) and
// ceiling (maximum fair share) for one resource category, with the safe
// operating zone between them. Limits are governance configuration: loaded,
// never written by this engine.
type ConstitutionalLimit struct {
	Category  string `yaml:"category" json:"category"`
	Dimension string `yaml:"dimension" json:"dimension"` // e.g. "dollars", "kWh"

	FloorValue     float64 `yaml:"floor_value" json:"floor_value"`
	FloorUnit      string  `yaml:"floor_unit" json:"floor_unit"`
	FloorRationale string  `yaml:"floor_rationale" json:"floor_rationale,omitempty"`

	CeilingValue     float64 `yaml:"ceiling_value" json:"ceiling_value"`
	CeilingUnit      string  `yaml:"ceiling_unit" json:"ceiling_unit"`
	CeilingRationale string  `yaml:"ceiling_rationale" json:"ceiling_rationale,omitempty"`

	SafeMinValue float64 `yaml:"safe_min_value" json:"safe_min_value"`
	SafeMaxValue float64 `yaml:"safe_max_value" json:"safe_max_value"`

	EnforcementMethod string `yaml:"enforcement_method" json:"enforcement_method"`
	GovernanceLevel   string `yaml:"governance_level" json:"governance_level"`
	GovernedBy        string `yaml:"governed_by" json:"governed_by,omitempty"`
}

// ResourcePosition is a point-in-time assessment of where a resource stands
// relative to its constitutional limit.
type ResourcePosition struct {
	ResourceID   uuid.UUID `json:"resource_id"`
	Category     string    `json:"category"`
	AssessedAt   time.Time `json:"assessed_at"`
	PositionType string    `json:"position_type"`
	CurrentValue float64   `json:"current_value"`

	// Negative distance means below the respective bound.
	DistanceFromFloor   float64 `json:"distance_from_floor"`
	DistanceFromCeiling float64 `json:"distance_from_ceiling"`

	// ExcessAboveCeiling is 0 unless the value exceeds the ceiling;
	// ExcessPercentage is only populated when excess > 0.
	ExcessAboveCeiling            float64 `json:"excess_above_ceiling"`
	ExcessPercentage              float64 `json:"excess_percentage"`
	SurplusAvailableForTransition float64 `json:"surplus_available_for_transition"`

	Compliance   string `json:"compliance"`
	WarningLevel string `json:"warning_level"`
}
