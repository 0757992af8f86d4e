// Package services implements the engine's domain operations: resource
// management, constitutional compliance, financial stewardship analysis,
// and dashboard building.
package services

import (
	"math"

	"github.com/shefa-net/steward-engine/pkg/models"
)

// Fixed classification thresholds. These are configuration constants, not
// computed values.
const (
	// FarAboveCeilingMultiplier marks the boundary between above-ceiling
	// and far-above-ceiling: value >= ceiling * 1.5.
	FarAboveCeilingMultiplier = 1.5

	// ModerateExcessFraction splits exceeds-ceiling warnings in category
	// compliance: excess <= 50% of ceiling warns orange, beyond warns red.
	ModerateExcessFraction = 0.5

	// Utilization health tiers for category summaries.
	UtilizationCriticalPercent = 90.0
	UtilizationWarningPercent  = 75.0

	// UnderutilizedFraction flags allocations with used/allocated below
	// this ratio as an opportunity insight.
	UnderutilizedFraction = 0.5

	// NearCapacityFraction flags resources allocated beyond this share of
	// total capacity as a warning alert.
	NearCapacityFraction = 0.9
)

// monthlyFrequencyFactors normalizes income stream amounts to monthly
// figures. Deliberately lossy approximations, not calendar-exact: a weekly
// stream counts 4.3 times, a quarterly stream 0.33 times, and irregular or
// one-time income contributes nothing to recurring totals.
var monthlyFrequencyFactors = map[string]float64{
	models.FrequencyDaily:     30,
	models.FrequencyWeekly:    4.3,
	models.FrequencyBiweekly:  2.17,
	models.FrequencyMonthly:   1,
	models.FrequencyQuarterly: 0.33,
	models.FrequencyAnnual:    0.083,
	models.FrequencyIrregular: 0,
	models.FrequencyOneTime:   0,
}

// MonthlyFactor returns the monthly normalization factor for a frequency.
// Unknown frequencies contribute nothing.
func MonthlyFactor(frequency string) float64 {
	return monthlyFrequencyFactors[frequency]
}

// ClassifyPosition maps a value to its position relative to a limit's floor
// and ceiling. Five ordered positions; classification is monotonic in value.
func ClassifyPosition(value float64, limit *models.ConstitutionalLimit) string {
	switch {
	case value < limit.FloorValue:
		return models.PositionBelowFloor
	case value == limit.FloorValue:
		return models.PositionAtFloor
	case value < limit.CeilingValue:
		return models.PositionInSafeZone
	case value < limit.CeilingValue*FarAboveCeilingMultiplier:
		return models.PositionAboveCeiling
	default:
		return models.PositionFarAboveCeiling
	}
}

// complianceForPosition maps a position to its compliance status and warning
// level for the per-resource view.
//
// Below-floor warns red here: the steward is under their dignity minimum and
// the position view is meant to drive immediate attention. The aggregate
// compliance report classifies the same condition as neutral at-risk; that
// asymmetry is intentional (see CalculateCategoryCompliance).
func complianceForPosition(position string) (compliance, warning string) {
	switch position {
	case models.PositionBelowFloor:
		return models.ComplianceCompliant, models.WarningRed
	case models.PositionAtFloor:
		return models.ComplianceCompliant, models.WarningYellow
	case models.PositionInSafeZone:
		return models.ComplianceCompliant, models.WarningNone
	case models.PositionAboveCeiling:
		return models.ComplianceApproachingLimit, models.WarningYellow
	default: // far-above-ceiling
		return models.ComplianceFarExceeds, models.WarningRed
	}
}

// UtilizationHealth classifies a utilization percentage into the three-tier
// dashboard health scale.
func UtilizationHealth(percent float64) string {
	switch {
	case percent > UtilizationCriticalPercent:
		return models.SummaryCritical
	case percent > UtilizationWarningPercent:
		return models.SummaryWarning
	default:
		return models.SummaryHealthy
	}
}

// excessAboveCeiling returns how far value exceeds the ceiling, never
// negative, plus the excess as a percentage of the ceiling. The percentage
// is only populated when there is excess.
func excessAboveCeiling(value float64, limit *models.ConstitutionalLimit) (excess, percentage float64) {
	excess = math.Max(0, value-limit.CeilingValue)
	if excess > 0 && limit.CeilingValue > 0 {
		percentage = excess / limit.CeilingValue * 100
	}
	return excess, percentage
}
