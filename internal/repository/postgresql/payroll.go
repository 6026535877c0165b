package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PAY TERMS ==========

const payTermsColumns = `id, employee_id, base_salary, insurance_base_salary, classification,
	dependents, tax_exempt_commitment, created_at, updated_at`

func scanPayTerms(row pgx.Row) (payroll.PayTerms, error) {
	var t payroll.PayTerms
	err := row.Scan(
		&t.ID, &t.EmployeeID, &t.BaseSalary, &t.InsuranceBaseSalary, &t.Classification,
		&t.Dependents, &t.TaxExemptCommitment, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *payrollRepository) GetPayTerms(ctx context.Context, employeeID string) (payroll.PayTerms, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payTermsColumns + ` FROM pay_terms WHERE employee_id = $1`

	t, err := scanPayTerms(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayTerms{}, payroll.ErrPayTermsNotFound
		}
		return payroll.PayTerms{}, fmt.Errorf("failed to get pay terms: %w", err)
	}
	return t, nil
}

func (r *payrollRepository) UpsertPayTerms(ctx context.Context, terms payroll.PayTerms) (payroll.PayTerms, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_terms (
			employee_id, base_salary, insurance_base_salary, classification,
			dependents, tax_exempt_commitment
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			insurance_base_salary = EXCLUDED.insurance_base_salary,
			classification = EXCLUDED.classification,
			dependents = EXCLUDED.dependents,
			tax_exempt_commitment = EXCLUDED.tax_exempt_commitment,
			updated_at = NOW()
		RETURNING ` + payTermsColumns

	t, err := scanPayTerms(q.QueryRow(ctx, query,
		terms.EmployeeID, terms.BaseSalary, terms.InsuranceBaseSalary, terms.Classification,
		terms.Dependents, terms.TaxExemptCommitment,
	))
	if err != nil {
		return payroll.PayTerms{}, fmt.Errorf("failed to upsert pay terms: %w", err)
	}
	return t, nil
}

// ========== PERIOD INPUTS ==========

func (r *payrollRepository) GetAttendance(ctx context.Context, employeeID string, month, year int) (payroll.AttendanceFact, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, period_month, period_year, actual_work_days
		FROM attendance_facts
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
	`

	var a payroll.AttendanceFact
	err := q.QueryRow(ctx, query, employeeID, month, year).Scan(
		&a.ID, &a.EmployeeID, &a.PeriodMonth, &a.PeriodYear, &a.ActualWorkDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.AttendanceFact{}, payroll.ErrAttendanceNotFound
		}
		return payroll.AttendanceFact{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

func (r *payrollRepository) ListAttendanceByPeriod(ctx context.Context, month, year int, employeeIDs []string) ([]payroll.AttendanceFact, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, period_month, period_year, actual_work_days
		FROM attendance_facts
		WHERE period_month = $1 AND period_year = $2
	`
	args := []any{month, year}

	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}
	query += ` ORDER BY employee_id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var facts []payroll.AttendanceFact
	for rows.Next() {
		var a payroll.AttendanceFact
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.PeriodMonth, &a.PeriodYear, &a.ActualWorkDays); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		facts = append(facts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	return facts, nil
}

func (r *payrollRepository) ListAdjustments(ctx context.Context, employeeID string, month, year int) ([]payroll.Adjustment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, period_month, period_year, kind, amount, reason
		FROM payroll_adjustments
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, employeeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []payroll.Adjustment
	for rows.Next() {
		var a payroll.Adjustment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.PeriodMonth, &a.PeriodYear, &a.Kind, &a.Amount, &a.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}

	return adjustments, nil
}

// ========== PAYSLIPS ==========

const payslipColumns = `id, employee_id, period_month, period_year, classification,
	standard_work_days, actual_work_days, base_salary, salary_by_attendance,
	total_bonus, total_penalty, gross_salary, insurance_deduction, family_deduction,
	assessable_income, tax_amount, net_salary, status, paid_at, paid_by, computed_by,
	created_at, updated_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodMonth, &p.PeriodYear, &p.Classification,
		&p.StandardWorkDays, &p.ActualWorkDays, &p.BaseSalary, &p.SalaryByAttendance,
		&p.TotalBonus, &p.TotalPenalty, &p.GrossSalary, &p.InsuranceDeduction, &p.FamilyDeduction,
		&p.AssessableIncome, &p.TaxAmount, &p.NetSalary, &p.Status, &p.PaidAt, &p.PaidBy, &p.ComputedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// UpsertPayslip inserts a draft or overwrites the computed figures of the existing row for
// the same employee and period. Status and payment stamps are left untouched on conflict.
func (r *payrollRepository) UpsertPayslip(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			employee_id, period_month, period_year, classification,
			standard_work_days, actual_work_days, base_salary, salary_by_attendance,
			total_bonus, total_penalty, gross_salary, insurance_deduction, family_deduction,
			assessable_income, tax_amount, net_salary, status, computed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 'draft', $17)
		ON CONFLICT (employee_id, period_month, period_year) DO UPDATE SET
			classification = EXCLUDED.classification,
			standard_work_days = EXCLUDED.standard_work_days,
			actual_work_days = EXCLUDED.actual_work_days,
			base_salary = EXCLUDED.base_salary,
			salary_by_attendance = EXCLUDED.salary_by_attendance,
			total_bonus = EXCLUDED.total_bonus,
			total_penalty = EXCLUDED.total_penalty,
			gross_salary = EXCLUDED.gross_salary,
			insurance_deduction = EXCLUDED.insurance_deduction,
			family_deduction = EXCLUDED.family_deduction,
			assessable_income = EXCLUDED.assessable_income,
			tax_amount = EXCLUDED.tax_amount,
			net_salary = EXCLUDED.net_salary,
			computed_by = EXCLUDED.computed_by,
			updated_at = NOW()
		RETURNING ` + payslipColumns

	saved, err := scanPayslip(q.QueryRow(ctx, query,
		p.EmployeeID, p.PeriodMonth, p.PeriodYear, p.Classification,
		p.StandardWorkDays, p.ActualWorkDays, p.BaseSalary, p.SalaryByAttendance,
		p.TotalBonus, p.TotalPenalty, p.GrossSalary, p.InsuranceDeduction, p.FamilyDeduction,
		p.AssessableIncome, p.TaxAmount, p.NetSalary, p.ComputedBy,
	))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to upsert payslip: %w", err)
	}
	return saved, nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1`

	p, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetPayslipByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3
		FOR UPDATE`

	p, err := scanPayslip(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payslips WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	// Sort
	sortColumn := "created_at"
	allowedColumns := map[string]string{
		"created_at":  "created_at",
		"period":      "period_year DESC, period_month",
		"employee_id": "employee_id",
		"net_salary":  "net_salary",
	}
	if col, ok := allowedColumns[filter.SortBy]; ok {
		sortColumn = col
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		payslipColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}

	return payslips, totalCount, nil
}

// FinalizePayslips marks the given drafts paid and reports how many changed.
func (r *payrollRepository) FinalizePayslips(ctx context.Context, ids []string, paidBy string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET status = 'paid', paid_at = NOW(), paid_by = NULLIF($1, ''), updated_at = NOW()
		WHERE id = ANY($2) AND status = 'draft'
	`

	tag, err := q.Exec(ctx, query, paidBy, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize payslips: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepository) DeletePayslip(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payslips WHERE id = $1 AND status = 'draft' RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or paid; tell the two apart.
			if _, getErr := r.GetPayslipByID(ctx, id); getErr == nil {
				return payroll.ErrCannotDeletePaidRecord
			}
			return payroll.ErrPayslipNotFound
		}
		return fmt.Errorf("failed to delete payslip: %w", err)
	}

	return nil
}

func (r *payrollRepository) GetPayslipSummary(ctx context.Context, month, year int) (payroll.PayslipSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total_employees,
			COALESCE(SUM(gross_salary), 0) as total_gross_salary,
			COALESCE(SUM(insurance_deduction), 0) as total_insurance,
			COALESCE(SUM(tax_amount), 0) as total_tax,
			COALESCE(SUM(net_salary), 0) as total_net_salary,
			COUNT(*) FILTER (WHERE status = 'draft') as draft_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count
		FROM payslips
		WHERE period_month = $1 AND period_year = $2
	`

	var summary payroll.PayslipSummaryResponse
	err := q.QueryRow(ctx, query, month, year).Scan(
		&summary.TotalEmployees, &summary.TotalGrossSalary, &summary.TotalInsurance,
		&summary.TotalTax, &summary.TotalNetSalary, &summary.DraftCount, &summary.PaidCount,
	)
	if err != nil {
		return payroll.PayslipSummaryResponse{}, fmt.Errorf("failed to get payslip summary: %w", err)
	}

	summary.PeriodMonth = month
	summary.PeriodYear = year

	return summary, nil
}
