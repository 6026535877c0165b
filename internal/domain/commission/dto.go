package commission

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== TIER DTOs ==========

type CreateTierRequest struct {
	KPIID      *string          `json:"kpi_id,omitempty"`
	Level      int              `json:"level" validate:"gte=1"`
	MinRevenue decimal.Decimal  `json:"min_revenue"`
	MaxRevenue *decimal.Decimal `json:"max_revenue,omitempty"`
	Percentage decimal.Decimal  `json:"percentage"`
}

func (r *CreateTierRequest) Span() interval.Range {
	return interval.Range{Min: r.MinRevenue, Max: r.MaxRevenue}
}

func (r *CreateTierRequest) Validate() error {
	errs := validator.Struct(r)
	validateTierValues(&errs, r.Span(), r.Percentage)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateTierRequest replaces every mutable field of a tier.
type UpdateTierRequest struct {
	ID         string           `json:"-" validate:"required"`
	Level      int              `json:"level" validate:"gte=1"`
	MinRevenue decimal.Decimal  `json:"min_revenue"`
	MaxRevenue *decimal.Decimal `json:"max_revenue,omitempty"`
	Percentage decimal.Decimal  `json:"percentage"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

func (r *UpdateTierRequest) Span() interval.Range {
	return interval.Range{Min: r.MinRevenue, Max: r.MaxRevenue}
}

func (r *UpdateTierRequest) Validate() error {
	errs := validator.Struct(r)
	validateTierValues(&errs, r.Span(), r.Percentage)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateTierValues(errs *validator.ValidationErrors, span interval.Range, pct decimal.Decimal) {
	if err := span.Validate(); err != nil {
		errs.Add("revenue_range", err.Error())
	}
	if !validator.IsPercentage(pct) {
		errs.Add("percentage", "must be between 0 and 100")
	}
}

type TierFilter struct {
	KPIID      *string `json:"kpi_id,omitempty"`
	ActiveOnly bool    `json:"active_only"`
}

type TierResponse struct {
	ID         string           `json:"id"`
	KPIID      *string          `json:"kpi_id,omitempty"`
	Level      int              `json:"level"`
	MinRevenue decimal.Decimal  `json:"min_revenue"`
	MaxRevenue *decimal.Decimal `json:"max_revenue,omitempty"`
	Percentage decimal.Decimal  `json:"percentage"`
	IsActive   bool             `json:"is_active"`
}

// ========== RECORD DTOs ==========

type ComputeCommissionRequest struct {
	EmployeeID   string          `json:"employee_id" validate:"required"`
	KPIID        *string         `json:"kpi_id,omitempty"`
	PeriodMonth  int             `json:"period_month"`
	PeriodYear   int             `json:"period_year"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
}

func (r *ComputeCommissionRequest) Validate() error {
	errs := validator.Struct(r)

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs.Add("period", "month must be 1-12 and year 2000 or later")
	}
	if r.TargetAmount.IsNegative() {
		errs.Add("target_amount", "must be non-negative")
	}
	if r.ActualAmount.IsNegative() {
		errs.Add("actual_amount", "must be non-negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComputeCommissionBatchRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *ComputeCommissionBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs.Add("period", "month must be 1-12 and year 2000 or later")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

type RecordResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	KPIID            *string         `json:"kpi_id,omitempty"`
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	ActualAmount     decimal.Decimal `json:"actual_amount"`
	AchievementPct   decimal.Decimal `json:"achievement_pct"`
	IsAchieved       bool            `json:"is_achieved"`
	Status           string          `json:"status"`
	TierLevel        *int            `json:"tier_level,omitempty"`
	CommissionPct    decimal.Decimal `json:"commission_pct"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Note             *string         `json:"note,omitempty"`
	UpdatedAt        string          `json:"updated_at"`
}

type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type BatchFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type BatchResult struct {
	PeriodMonth int              `json:"period_month"`
	PeriodYear  int              `json:"period_year"`
	Summary     BatchSummary     `json:"summary"`
	Succeeded   []RecordResponse `json:"succeeded"`
	Failed      []BatchFailure   `json:"failed"`
}
