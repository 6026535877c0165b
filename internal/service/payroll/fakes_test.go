package payroll

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRules struct {
	snap  rule.Snapshot
	err   error
	calls int
}

func (f *fakeRules) LoadSnapshot(ctx context.Context) (rule.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

// memPayrollRepo keeps payroll rows in maps. upsertPayslipFn, when set, can fail a write.
type memPayrollRepo struct {
	terms       map[string]payroll.PayTerms
	attendance  []payroll.AttendanceFact
	adjustments map[string][]payroll.Adjustment
	payslips    map[string]payroll.Payslip
	upserts     int

	upsertPayslipFn func(p payroll.Payslip) error
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{
		terms:       map[string]payroll.PayTerms{},
		adjustments: map[string][]payroll.Adjustment{},
		payslips:    map[string]payroll.Payslip{},
	}
}

func periodKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", employeeID, month, year)
}

func (r *memPayrollRepo) addEmployee(id string, terms payroll.PayTerms, month, year int, days string) {
	terms.EmployeeID = id
	r.terms[id] = terms
	r.attendance = append(r.attendance, payroll.AttendanceFact{
		ID:             uuid.NewString(),
		EmployeeID:     id,
		PeriodMonth:    month,
		PeriodYear:     year,
		ActualWorkDays: decimal.RequireFromString(days),
	})
}

func (r *memPayrollRepo) GetPayTerms(ctx context.Context, employeeID string) (payroll.PayTerms, error) {
	t, ok := r.terms[employeeID]
	if !ok {
		return payroll.PayTerms{}, payroll.ErrPayTermsNotFound
	}
	return t, nil
}

func (r *memPayrollRepo) UpsertPayTerms(ctx context.Context, terms payroll.PayTerms) (payroll.PayTerms, error) {
	if existing, ok := r.terms[terms.EmployeeID]; ok {
		terms.ID = existing.ID
	} else {
		terms.ID = uuid.NewString()
	}
	r.terms[terms.EmployeeID] = terms
	return terms, nil
}

func (r *memPayrollRepo) GetAttendance(ctx context.Context, employeeID string, month, year int) (payroll.AttendanceFact, error) {
	for _, a := range r.attendance {
		if a.EmployeeID == employeeID && a.PeriodMonth == month && a.PeriodYear == year {
			return a, nil
		}
	}
	return payroll.AttendanceFact{}, payroll.ErrAttendanceNotFound
}

func (r *memPayrollRepo) ListAttendanceByPeriod(ctx context.Context, month, year int, employeeIDs []string) ([]payroll.AttendanceFact, error) {
	var out []payroll.AttendanceFact
	for _, a := range r.attendance {
		if a.PeriodMonth != month || a.PeriodYear != year {
			continue
		}
		if len(employeeIDs) > 0 && !slices.Contains(employeeIDs, a.EmployeeID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memPayrollRepo) ListAdjustments(ctx context.Context, employeeID string, month, year int) ([]payroll.Adjustment, error) {
	return r.adjustments[periodKey(employeeID, month, year)], nil
}

func (r *memPayrollRepo) UpsertPayslip(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	if r.upsertPayslipFn != nil {
		if err := r.upsertPayslipFn(p); err != nil {
			return payroll.Payslip{}, err
		}
	}
	r.upserts++

	key := periodKey(p.EmployeeID, p.PeriodMonth, p.PeriodYear)
	if existing, ok := r.payslips[key]; ok {
		p.ID = existing.ID
		p.Status = existing.Status
		p.PaidAt = existing.PaidAt
		p.PaidBy = existing.PaidBy
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = uuid.NewString()
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	r.payslips[key] = p
	return p, nil
}

func (r *memPayrollRepo) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	for _, p := range r.payslips {
		if p.ID == id {
			return p, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r *memPayrollRepo) GetPayslipByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payslip, error) {
	p, ok := r.payslips[periodKey(employeeID, month, year)]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return p, nil
}

func (r *memPayrollRepo) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	var out []payroll.Payslip
	for _, p := range r.payslips {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *memPayrollRepo) FinalizePayslips(ctx context.Context, ids []string, paidBy string) (int64, error) {
	var n int64
	now := time.Now()
	for key, p := range r.payslips {
		if p.Status != payroll.PayslipStatusDraft || !slices.Contains(ids, p.ID) {
			continue
		}
		p.Status = payroll.PayslipStatusPaid
		p.PaidAt = &now
		if paidBy != "" {
			p.PaidBy = &paidBy
		}
		r.payslips[key] = p
		n++
	}
	return n, nil
}

func (r *memPayrollRepo) DeletePayslip(ctx context.Context, id string) error {
	for key, p := range r.payslips {
		if p.ID == id {
			delete(r.payslips, key)
			return nil
		}
	}
	return payroll.ErrPayslipNotFound
}

func (r *memPayrollRepo) GetPayslipSummary(ctx context.Context, month, year int) (payroll.PayslipSummaryResponse, error) {
	summary := payroll.PayslipSummaryResponse{PeriodMonth: month, PeriodYear: year}
	for _, p := range r.payslips {
		if p.PeriodMonth != month || p.PeriodYear != year {
			continue
		}
		summary.TotalEmployees++
		summary.TotalGrossSalary = summary.TotalGrossSalary.Add(p.GrossSalary)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(p.NetSalary)
	}
	return summary, nil
}
