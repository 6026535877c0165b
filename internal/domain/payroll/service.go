package payroll

import "context"

// PayrollService defines payslip computation and lifecycle operations.
type PayrollService interface {
	// Pay terms
	UpsertPayTerms(ctx context.Context, req UpsertPayTermsRequest) (PayTermsResponse, error)
	GetPayTerms(ctx context.Context, employeeID string) (PayTermsResponse, error)

	// Computation
	ComputePayslip(ctx context.Context, req ComputePayslipRequest) (PayslipResponse, error)
	ComputePayslipBatch(ctx context.Context, req ComputePayslipBatchRequest) (PayslipBatchResult, error)

	// Lifecycle
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) (ListPayslipResponse, error)
	FinalizePayslips(ctx context.Context, req FinalizePayslipsRequest) (int64, error)
	DeletePayslip(ctx context.Context, id string) error
	GetPayslipSummary(ctx context.Context, month, year int) (PayslipSummaryResponse, error)
}
