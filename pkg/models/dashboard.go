package models

import (
	"time"

	"github.com/google/uuid"
)

// Category summary health tiers.
const (
	SummaryHealthy  = "healthy"
	SummaryWarning  = "warning"
	SummaryCritical = "critical"
)

// Dashboard alert types.
const (
	AlertOverAllocation = "over-allocation"
	AlertNearCapacity   = "near-capacity"
)

// Dashboard insight types.
const (
	InsightOpportunity = "opportunity"
)

// CategorySummary aggregates all of a steward's resources in one category.
type CategorySummary struct {
	Category           string  `json:"category"`
	ResourceCount      int     `json:"resource_count"`
	TotalCapacity      Measure `json:"total_capacity"`
	TotalAllocated     Measure `json:"total_allocated"`
	TotalUsed          Measure `json:"total_used"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Health             string  `json:"health"`
}

// DashboardAlert flags a resource condition that needs attention.
type DashboardAlert struct {
	Type         string    `json:"type"`
	Severity     string    `json:"severity"` // warning, critical
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	Message      string    `json:"message"`
}

// DashboardInsight surfaces a non-urgent observation, e.g. an underutilized
// allocation that could be freed.
type DashboardInsight struct {
	Type         string    `json:"type"`
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	Allocation   string    `json:"allocation"`
	Message      string    `json:"message"`
}

// Dashboard composes category summaries, alerts, and insights for
// presentation. Built read-only from current state; never mutates.
type Dashboard struct {
	StewardID          string             `json:"steward_id"`
	Categories         []CategorySummary  `json:"categories"`
	OverallUtilization float64            `json:"overall_utilization"`
	Alerts             []DashboardAlert   `json:"alerts"`
	Insights           []DashboardInsight `json:"insights"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
