package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification enum
type Classification string

const (
	ClassificationOfficial    Classification = "official"
	ClassificationNonOfficial Classification = "non_official"
)

func (c Classification) Valid() bool {
	return c == ClassificationOfficial || c == ClassificationNonOfficial
}

// PayTerms - the employee's active contract terms
type PayTerms struct {
	ID                  string
	EmployeeID          string
	BaseSalary          decimal.Decimal
	InsuranceBaseSalary decimal.Decimal
	Classification      Classification
	Dependents          int
	TaxExemptCommitment bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AttendanceFact - worked days for one employee and period
type AttendanceFact struct {
	ID             string
	EmployeeID     string
	PeriodMonth    int
	PeriodYear     int
	ActualWorkDays decimal.Decimal
}

// AdjustmentKind enum
type AdjustmentKind string

const (
	AdjustmentKindBonus   AdjustmentKind = "bonus"
	AdjustmentKindPenalty AdjustmentKind = "penalty"
)

// Adjustment - ad-hoc bonus or penalty for a period
type Adjustment struct {
	ID          string
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int
	Kind        AdjustmentKind
	Amount      decimal.Decimal
	Reason      *string
}

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusDraft PayslipStatus = "draft"
	PayslipStatusPaid  PayslipStatus = "paid"
)

// Payslip - computed monthly result, one per employee and period
type Payslip struct {
	ID                 string
	EmployeeID         string
	PeriodMonth        int
	PeriodYear         int
	StandardWorkDays   int
	ActualWorkDays     decimal.Decimal
	BaseSalary         decimal.Decimal
	SalaryByAttendance decimal.Decimal
	TotalBonus         decimal.Decimal
	TotalPenalty       decimal.Decimal
	GrossSalary        decimal.Decimal
	InsuranceDeduction decimal.Decimal
	FamilyDeduction    decimal.Decimal
	AssessableIncome   decimal.Decimal
	TaxAmount          decimal.Decimal
	NetSalary          decimal.Decimal
	Classification     Classification
	Status             PayslipStatus
	PaidAt             *time.Time
	PaidBy             *string
	ComputedBy         *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
