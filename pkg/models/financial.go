package models

import (
	"time"

	"github.com/google/uuid"
)

// Income stream frequencies.
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyAnnual    = "annual"
	FrequencyIrregular = "irregular"
	FrequencyOneTime   = "one-time"
)

// Income stream statuses.
const (
	IncomeStatusActive = "active"
	IncomeStatusEnded  = "ended"
	IncomeStatusPaused = "paused"
)

// Financial asset account statuses.
const (
	AccountStatusActive = "active"
	AccountStatusFrozen = "frozen"
	AccountStatusClosed = "closed"
)

// Financial health classifications, from worst to best.
const (
	HealthCritical = "critical"
	HealthAtRisk   = "at-risk"
	HealthStable   = "stable"
	HealthHealthy  = "healthy"
)

// Income stability classifications.
const (
	StabilityStable    = "stable"
	StabilityVariable  = "variable"
	StabilityUncertain = "uncertain"
)

// Recommendation priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// FinancialAsset is the financial-asset specialization of a stewarded
// resource: an account with income streams and obligations attached.
type FinancialAsset struct {
	ID           uuid.UUID `json:"id"`
	StewardID    string    `json:"steward_id"`
	AssetType    string    `json:"asset_type"` // fiat-currency, mutual-credit, crypto, ...
	CurrencyCode string    `json:"currency_code"`
	Name         string    `json:"name"`

	AccountBalance float64 `json:"account_balance"`
	AccountStatus  string  `json:"account_status"`

	IncomeStreams []IncomeStream        `json:"income_streams"`
	Obligations   []FinancialObligation `json:"obligations"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncomeStream is one recurring or one-time source of income on an asset.
type IncomeStream struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Amount       float64   `json:"amount"`
	Frequency    string    `json:"frequency"`
	Status       string    `json:"status"`
	IsGuaranteed bool      `json:"is_guaranteed"`
	Confidence   int       `json:"confidence"` // 0-100
}

// FinancialObligation is a recurring liability on an asset.
type FinancialObligation struct {
	ID              uuid.UUID `json:"id"`
	Label           string    `json:"label"`
	PrincipalAmount float64   `json:"principal_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	MonthlyPayment  float64   `json:"monthly_payment"`
	Interest        float64   `json:"interest"` // annual percentage
	Status          string    `json:"status"`
}

// DignityFloor is the derived minimum monthly cost of living, compared
// against guaranteed monthly income. Never persisted on its own.
type DignityFloor struct {
	FoodMonthly       float64 `json:"food_monthly"`
	ShelterMonthly    float64 `json:"shelter_monthly"`
	HealthcareMonthly float64 `json:"healthcare_monthly"`
	InternetMonthly   float64 `json:"internet_monthly"`
	TransportMonthly  float64 `json:"transport_monthly"`

	TotalMonthlyFloor float64 `json:"total_monthly_floor"`
	FloorMet          bool    `json:"floor_met"`
	MonthlyShortfall  float64 `json:"monthly_shortfall"`
}

// IncomeSummary aggregates a steward's income streams into monthly figures.
type IncomeSummary struct {
	GuaranteedMonthlyIncome float64 `json:"guaranteed_monthly_income"`
	ExpectedMonthlyIncome   float64 `json:"expected_monthly_income"`
	ActiveStreams           int     `json:"active_streams"`
	TotalStreams            int     `json:"total_streams"`
}

// ObligationSummary aggregates a steward's obligations.
type ObligationSummary struct {
	MonthlyObligations float64 `json:"monthly_obligations"`
	TotalLiability     float64 `json:"total_liability"`
	ObligationCount    int     `json:"obligation_count"`
}

// FinancialRecommendation is one actionable suggestion from the analyzer.
type FinancialRecommendation struct {
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StewardshipSummary is the full financial-health picture for a steward.
type StewardshipSummary struct {
	StewardID       string                    `json:"steward_id"`
	Income          IncomeSummary             `json:"income"`
	Obligations     ObligationSummary         `json:"obligations"`
	DignityFloor    DignityFloor              `json:"dignity_floor"`
	Health          string                    `json:"health"`
	IncomeStability string                    `json:"income_stability"`
	Recommendations []FinancialRecommendation `json:"recommendations"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}
