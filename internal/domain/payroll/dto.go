package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PAY TERMS DTOs ==========

type UpsertPayTermsRequest struct {
	EmployeeID          string           `json:"-" validate:"required"`
	BaseSalary          decimal.Decimal  `json:"base_salary"`
	InsuranceBaseSalary *decimal.Decimal `json:"insurance_base_salary,omitempty"`
	Classification      string           `json:"classification" validate:"required,oneof=official non_official"`
	Dependents          int              `json:"dependents" validate:"gte=0"`
	TaxExemptCommitment bool             `json:"tax_exempt_commitment"`
}

func (r *UpsertPayTermsRequest) Validate() error {
	errs := validator.Struct(r)

	if r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "must be non-negative")
	}
	if r.InsuranceBaseSalary != nil && r.InsuranceBaseSalary.IsNegative() {
		errs.Add("insurance_base_salary", "must be non-negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayTermsResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	InsuranceBaseSalary decimal.Decimal `json:"insurance_base_salary"`
	Classification      string          `json:"classification"`
	Dependents          int             `json:"dependents"`
	TaxExemptCommitment bool            `json:"tax_exempt_commitment"`
}

// ========== PAYSLIP DTOs ==========

type ComputePayslipRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
}

func (r *ComputePayslipRequest) Validate() error {
	errs := validator.Struct(r)

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs.Add("period", "month must be 1-12 and year 2000 or later")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ComputePayslipBatchRequest struct {
	PeriodMonth int      `json:"period_month"`
	PeriodYear  int      `json:"period_year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = everyone with attendance
}

func (r *ComputePayslipBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs.Add("period", "month must be 1-12 and year 2000 or later")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
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

type PayslipBatchResult struct {
	PeriodMonth int               `json:"period_month"`
	PeriodYear  int               `json:"period_year"`
	Summary     BatchSummary      `json:"summary"`
	Succeeded   []PayslipResponse `json:"succeeded"`
	Failed      []BatchFailure    `json:"failed"`
}

type FinalizePayslipsRequest struct {
	PayslipIDs []string `json:"payslip_ids" validate:"required,min=1,dive,uuid"`
}

func (r *FinalizePayslipsRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	PeriodMonth        int             `json:"period_month"`
	PeriodYear         int             `json:"period_year"`
	Classification     string          `json:"classification"`
	StandardWorkDays   int             `json:"standard_work_days"`
	ActualWorkDays     decimal.Decimal `json:"actual_work_days"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	SalaryByAttendance decimal.Decimal `json:"salary_by_attendance"`
	TotalBonus         decimal.Decimal `json:"total_bonus"`
	TotalPenalty       decimal.Decimal `json:"total_penalty"`
	GrossSalary        decimal.Decimal `json:"gross_salary"`
	InsuranceDeduction decimal.Decimal `json:"insurance_deduction"`
	FamilyDeduction    decimal.Decimal `json:"family_deduction"`
	AssessableIncome   decimal.Decimal `json:"assessable_income"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	Status             string          `json:"status"`
	PaidAt             *string         `json:"paid_at,omitempty"`
	UpdatedAt          string          `json:"updated_at"`
}

type PayslipFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	SortBy      string  `json:"sort_by"`
	SortOrder   string  `json:"sort_order"`
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type PayslipSummaryResponse struct {
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	TotalEmployees   int             `json:"total_employees"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalInsurance   decimal.Decimal `json:"total_insurance"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	DraftCount       int             `json:"draft_count"`
	PaidCount        int             `json:"paid_count"`
}
