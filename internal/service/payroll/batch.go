package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// ComputePayslipBatch computes every employee with attendance in the period, or only the
// requested employees when EmployeeIDs is set. Rules are loaded once for the whole run and
// every payslip is committed on its own, so one employee's failure never blocks the rest.
// Per-employee failures are reported in the result, not returned.
func (s *PayrollServiceImpl) ComputePayslipBatch(ctx context.Context, req payroll.ComputePayslipBatchRequest) (payroll.PayslipBatchResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipBatchResult{}, err
	}

	facts, err := s.payrollRepo.ListAttendanceByPeriod(ctx, req.PeriodMonth, req.PeriodYear, req.EmployeeIDs)
	if err != nil {
		return payroll.PayslipBatchResult{}, err
	}

	snap, err := s.rules.LoadSnapshot(ctx)
	if err != nil {
		return payroll.PayslipBatchResult{}, err
	}

	result := payroll.PayslipBatchResult{
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Succeeded:   []payroll.PayslipResponse{},
		Failed:      []payroll.BatchFailure{},
	}

	fail := func(employeeID string, err error) {
		s.logger.WarnContext(ctx, "Payslip computation failed",
			slog.String("employee_id", employeeID),
			slog.Int("month", req.PeriodMonth),
			slog.Int("year", req.PeriodYear),
			slog.Any("error", err),
		)
		result.Failed = append(result.Failed, payroll.BatchFailure{EmployeeID: employeeID, Reason: err.Error()})
	}

	covered := make(map[string]struct{}, len(facts))
	for _, fact := range facts {
		covered[fact.EmployeeID] = struct{}{}

		payslip, err := s.computeAndStore(ctx, fact, snap)
		if err != nil {
			fail(fact.EmployeeID, err)
			continue
		}
		result.Succeeded = append(result.Succeeded, mapToPayslipResponse(payslip))
	}

	// Explicitly requested employees without attendance are reported rather than dropped.
	for _, id := range req.EmployeeIDs {
		if _, ok := covered[id]; ok {
			continue
		}
		covered[id] = struct{}{}
		fail(id, fmt.Errorf("%w: %w", payroll.ErrMissingConfiguration, payroll.ErrAttendanceNotFound))
	}

	result.Summary = payroll.BatchSummary{
		Total:     len(result.Succeeded) + len(result.Failed),
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
	}

	s.logger.InfoContext(ctx, "Payslip batch completed",
		slog.Int("month", req.PeriodMonth),
		slog.Int("year", req.PeriodYear),
		slog.Int("total", result.Summary.Total),
		slog.Int("succeeded", result.Summary.Succeeded),
		slog.Int("failed", result.Summary.Failed),
	)

	return result, nil
}
