package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/workcalendar"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Options tunes policy decisions of the payroll service.
type Options struct {
	// AllowPaidRecompute lets a paid payslip be overwritten by a recomputation.
	AllowPaidRecompute bool
}

type PayrollServiceImpl struct {
	tx          database.Transactor
	payrollRepo payroll.PayrollRepository
	rules       rule.SnapshotLoader
	calendar    workcalendar.Calendar
	opts        Options
	logger      *slog.Logger
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	rules rule.SnapshotLoader,
	calendar workcalendar.Calendar,
	opts Options,
	logger *slog.Logger,
) *PayrollServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		tx:          tx,
		payrollRepo: payrollRepo,
		rules:       rules,
		calendar:    calendar,
		opts:        opts,
		logger:      logger,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== PAY TERMS ==========

func (s *PayrollServiceImpl) UpsertPayTerms(ctx context.Context, req payroll.UpsertPayTermsRequest) (payroll.PayTermsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayTermsResponse{}, err
	}

	terms := payroll.PayTerms{
		EmployeeID:          req.EmployeeID,
		BaseSalary:          req.BaseSalary,
		Classification:      payroll.Classification(req.Classification),
		Dependents:          req.Dependents,
		TaxExemptCommitment: req.TaxExemptCommitment,
	}

	existing, err := s.payrollRepo.GetPayTerms(ctx, req.EmployeeID)
	found := err == nil
	if err != nil && !errors.Is(err, payroll.ErrPayTermsNotFound) {
		return payroll.PayTermsResponse{}, err
	}

	switch {
	case req.InsuranceBaseSalary != nil && !req.InsuranceBaseSalary.IsZero():
		terms.InsuranceBaseSalary = *req.InsuranceBaseSalary
	case found:
		// Stored base is kept on update.
		terms.InsuranceBaseSalary = existing.InsuranceBaseSalary
	default:
		// Derived once at creation; the calculator never re-derives it.
		snap, err := s.rules.LoadSnapshot(ctx)
		if err != nil {
			return payroll.PayTermsResponse{}, err
		}
		terms.InsuranceBaseSalary = snap.Settings.DefaultInsuranceBase().Round(2)
		s.logger.InfoContext(ctx, "Derived insurance base salary",
			slog.String("employee_id", req.EmployeeID),
			slog.String("insurance_base_salary", terms.InsuranceBaseSalary.String()),
		)
	}

	saved, err := s.payrollRepo.UpsertPayTerms(ctx, terms)
	if err != nil {
		return payroll.PayTermsResponse{}, err
	}
	return mapToPayTermsResponse(saved), nil
}

func (s *PayrollServiceImpl) GetPayTerms(ctx context.Context, employeeID string) (payroll.PayTermsResponse, error) {
	terms, err := s.payrollRepo.GetPayTerms(ctx, employeeID)
	if err != nil {
		return payroll.PayTermsResponse{}, err
	}
	return mapToPayTermsResponse(terms), nil
}

// ========== COMPUTATION ==========

func (s *PayrollServiceImpl) ComputePayslip(ctx context.Context, req payroll.ComputePayslipRequest) (payroll.PayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	fact, err := s.payrollRepo.GetAttendance(ctx, req.EmployeeID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PayslipResponse{}, missingConfiguration(err, payroll.ErrAttendanceNotFound)
	}

	snap, err := s.rules.LoadSnapshot(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	payslip, err := s.computeAndStore(ctx, fact, snap)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return mapToPayslipResponse(payslip), nil
}

// computeAndStore runs the calculator for one attendance fact and upserts the payslip
// in its own transaction.
func (s *PayrollServiceImpl) computeAndStore(ctx context.Context, fact payroll.AttendanceFact, snap rule.Snapshot) (payroll.Payslip, error) {
	terms, err := s.payrollRepo.GetPayTerms(ctx, fact.EmployeeID)
	if err != nil {
		return payroll.Payslip{}, missingConfiguration(err, payroll.ErrPayTermsNotFound)
	}

	adjustments, err := s.payrollRepo.ListAdjustments(ctx, fact.EmployeeID, fact.PeriodMonth, fact.PeriodYear)
	if err != nil {
		return payroll.Payslip{}, err
	}

	figures, err := Calculate(PayslipInput{
		Terms:            terms,
		StandardWorkDays: s.calendar.StandardWorkDays(fact.PeriodMonth, fact.PeriodYear),
		ActualWorkDays:   fact.ActualWorkDays,
		Adjustments:      adjustments,
	}, snap)
	if err != nil {
		return payroll.Payslip{}, err
	}

	payslip := newPayslip(fact, terms, figures.Rounded())
	payslip.ComputedBy = jwt.CallerIDPtr(ctx)

	var stored payroll.Payslip
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.payrollRepo.GetPayslipByEmployeePeriod(txCtx, fact.EmployeeID, fact.PeriodMonth, fact.PeriodYear)
		switch {
		case err == nil:
			if existing.Status == payroll.PayslipStatusPaid && !s.opts.AllowPaidRecompute {
				return payroll.ErrPayslipAlreadyPaid
			}
		case errors.Is(err, payroll.ErrPayslipNotFound):
		default:
			return err
		}

		stored, err = s.payrollRepo.UpsertPayslip(txCtx, payslip)
		return err
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	return stored, nil
}

func missingConfiguration(err, notFound error) error {
	if errors.Is(err, notFound) {
		return fmt.Errorf("%w: %w", payroll.ErrMissingConfiguration, err)
	}
	return err
}

func newPayslip(fact payroll.AttendanceFact, terms payroll.PayTerms, f Figures) payroll.Payslip {
	return payroll.Payslip{
		EmployeeID:         fact.EmployeeID,
		PeriodMonth:        fact.PeriodMonth,
		PeriodYear:         fact.PeriodYear,
		StandardWorkDays:   f.StandardWorkDays,
		ActualWorkDays:     f.ActualWorkDays,
		BaseSalary:         f.BaseSalary,
		SalaryByAttendance: f.SalaryByAttendance,
		TotalBonus:         f.TotalBonus,
		TotalPenalty:       f.TotalPenalty,
		GrossSalary:        f.GrossSalary,
		InsuranceDeduction: f.InsuranceDeduction,
		FamilyDeduction:    f.FamilyDeduction,
		AssessableIncome:   f.AssessableIncome,
		TaxAmount:          f.TaxAmount,
		NetSalary:          f.NetSalary,
		Classification:     terms.Classification,
		Status:             payroll.PayslipStatusDraft,
	}
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	payslip, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return mapToPayslipResponse(payslip), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	payslips, total, err := s.payrollRepo.ListPayslips(ctx, filter)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	data := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		data = append(data, mapToPayslipResponse(p))
	}

	return payroll.ListPayslipResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) FinalizePayslips(ctx context.Context, req payroll.FinalizePayslipsRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	paidBy, _ := jwt.CallerID(ctx)

	var count int64
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		count, err = s.payrollRepo.FinalizePayslips(txCtx, req.PayslipIDs, paidBy)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Payslips finalized",
		slog.Int("requested", len(req.PayslipIDs)),
		slog.Int64("finalized", count),
	)
	return count, nil
}

func (s *PayrollServiceImpl) DeletePayslip(ctx context.Context, id string) error {
	payslip, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return err
	}
	if payslip.Status == payroll.PayslipStatusPaid {
		return payroll.ErrCannotDeletePaidRecord
	}
	return s.payrollRepo.DeletePayslip(ctx, id)
}

func (s *PayrollServiceImpl) GetPayslipSummary(ctx context.Context, month, year int) (payroll.PayslipSummaryResponse, error) {
	if !validator.IsValidPeriod(month, year) {
		return payroll.PayslipSummaryResponse{}, payroll.ErrInvalidPeriod
	}
	return s.payrollRepo.GetPayslipSummary(ctx, month, year)
}

// ========== MAPPERS ==========

func mapToPayTermsResponse(t payroll.PayTerms) payroll.PayTermsResponse {
	return payroll.PayTermsResponse{
		ID:                  t.ID,
		EmployeeID:          t.EmployeeID,
		BaseSalary:          t.BaseSalary,
		InsuranceBaseSalary: t.InsuranceBaseSalary,
		Classification:      string(t.Classification),
		Dependents:          t.Dependents,
		TaxExemptCommitment: t.TaxExemptCommitment,
	}
}

func mapToPayslipResponse(p payroll.Payslip) payroll.PayslipResponse {
	var paidAt *string
	if p.PaidAt != nil {
		str := p.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	return payroll.PayslipResponse{
		ID:                 p.ID,
		EmployeeID:         p.EmployeeID,
		PeriodMonth:        p.PeriodMonth,
		PeriodYear:         p.PeriodYear,
		Classification:     string(p.Classification),
		StandardWorkDays:   p.StandardWorkDays,
		ActualWorkDays:     p.ActualWorkDays,
		BaseSalary:         p.BaseSalary,
		SalaryByAttendance: p.SalaryByAttendance,
		TotalBonus:         p.TotalBonus,
		TotalPenalty:       p.TotalPenalty,
		GrossSalary:        p.GrossSalary,
		InsuranceDeduction: p.InsuranceDeduction,
		FamilyDeduction:    p.FamilyDeduction,
		AssessableIncome:   p.AssessableIncome,
		TaxAmount:          p.TaxAmount,
		NetSalary:          p.NetSalary,
		Status:             string(p.Status),
		PaidAt:             paidAt,
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}
