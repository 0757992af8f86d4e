package models

import "time"

// Category compliance statuses used by cross-steward compliance reports.
// Below-floor is reported as at-risk (a policy gap to remediate via
// entitlement), deliberately softer than the red warning the per-resource
// position view uses for the same condition.
const (
	CategoryCompliant      = "compliant"
	CategoryAtRisk         = "at-risk"
	CategoryExceedsCeiling = "exceeds-ceiling"
)

// CategoryCompliance classifies one resource category's aggregate holdings
// against its constitutional limit.
type CategoryCompliance struct {
	Category     string  `json:"category"`
	TotalValue   float64 `json:"total_value"`
	Unit         string  `json:"unit"`
	FloorValue   float64 `json:"floor_value"`
	CeilingValue float64 `json:"ceiling_value"`

	Status       string  `json:"status"`
	WarningLevel string  `json:"warning_level"`
	Excess       float64 `json:"excess"`

	ResourceCount int `json:"resource_count"`
}

// ComplianceRecommendation suggests remediation for excess holdings.
type ComplianceRecommendation struct {
	Priority    string   `json:"priority"`
	Categories  []string `json:"categories"`
	TotalExcess float64  `json:"total_excess"`
	Description string   `json:"description"`
}

// ComplianceReport is the steward-wide constitutional compliance picture.
type ComplianceReport struct {
	StewardID        string                     `json:"steward_id"`
	Categories       []CategoryCompliance       `json:"categories"`
	TotalExcess      float64                    `json:"total_excess"`
	AtRiskCategories int                        `json:"at_risk_categories"`
	OverallCompliant bool                       `json:"overall_compliant"`
	Recommendations  []ComplianceRecommendation `json:"recommendations"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}
