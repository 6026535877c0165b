package payroll

import "context"

// PayrollRepository defines data access for pay terms, the period inputs and payslips.
// Attendance and adjustments are read-only here; they are owned by other modules.
type PayrollRepository interface {
	// Pay terms
	GetPayTerms(ctx context.Context, employeeID string) (PayTerms, error)
	UpsertPayTerms(ctx context.Context, terms PayTerms) (PayTerms, error)

	// Period inputs
	GetAttendance(ctx context.Context, employeeID string, month, year int) (AttendanceFact, error)
	ListAttendanceByPeriod(ctx context.Context, month, year int, employeeIDs []string) ([]AttendanceFact, error)
	ListAdjustments(ctx context.Context, employeeID string, month, year int) ([]Adjustment, error)

	// Payslips
	UpsertPayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	GetPayslipByID(ctx context.Context, id string) (Payslip, error)
	GetPayslipByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payslip, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)
	FinalizePayslips(ctx context.Context, ids []string, paidBy string) (int64, error)
	DeletePayslip(ctx context.Context, id string) error
	GetPayslipSummary(ctx context.Context, month, year int) (PayslipSummaryResponse, error)
}
