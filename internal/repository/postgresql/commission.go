package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type commissionRepository struct {
	db *database.DB
}

func NewCommissionRepository(db *database.DB) commission.CommissionRepository {
	return &commissionRepository{db: db}
}

// ========== TIERS ==========

const tierColumns = `id, kpi_id, level, min_revenue, max_revenue, percentage, is_active, created_at, updated_at`

func scanTier(row pgx.Row) (commission.Tier, error) {
	var t commission.Tier
	err := row.Scan(
		&t.ID, &t.KPIID, &t.Level, &t.MinRevenue, &t.MaxRevenue, &t.Percentage, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *commissionRepository) queryTiers(ctx context.Context, query string, args ...any) ([]commission.Tier, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission tiers: %w", err)
	}
	defer rows.Close()

	var tiers []commission.Tier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list commission tiers: %w", err)
	}

	return tiers, nil
}

// ListActiveTiers returns the active tiers of one schedule ordered by min revenue.
// Inside a transaction the rows are locked so concurrent overlap checks serialize.
func (r *commissionRepository) ListActiveTiers(ctx context.Context, kpiID *string) ([]commission.Tier, error) {
	query := `SELECT ` + tierColumns + `
		FROM commission_tiers
		WHERE is_active AND kpi_id IS NOT DISTINCT FROM $1
		ORDER BY min_revenue`
	if _, inTx := database.TxFromContext(ctx); inTx {
		query += ` FOR UPDATE`
	}
	return r.queryTiers(ctx, query, kpiID)
}

func (r *commissionRepository) ListTiers(ctx context.Context, filter commission.TierFilter) ([]commission.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM commission_tiers WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.KPIID != nil {
		query += fmt.Sprintf(" AND kpi_id = $%d", argIdx)
		args = append(args, *filter.KPIID)
		argIdx++
	}
	if filter.ActiveOnly {
		query += " AND is_active"
	}
	query += " ORDER BY kpi_id NULLS FIRST, min_revenue"

	return r.queryTiers(ctx, query, args...)
}

func (r *commissionRepository) GetTierByID(ctx context.Context, id string) (commission.Tier, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTier(q.QueryRow(ctx, `SELECT `+tierColumns+` FROM commission_tiers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Tier{}, commission.ErrTierNotFound
		}
		return commission.Tier{}, fmt.Errorf("failed to get commission tier: %w", err)
	}
	return t, nil
}

func (r *commissionRepository) CreateTier(ctx context.Context, tier commission.Tier) (commission.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO commission_tiers (kpi_id, level, min_revenue, max_revenue, percentage, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tierColumns

	t, err := scanTier(q.QueryRow(ctx, query,
		tier.KPIID, tier.Level, tier.MinRevenue, tier.MaxRevenue, tier.Percentage, tier.IsActive,
	))
	if err != nil {
		return commission.Tier{}, fmt.Errorf("failed to create commission tier: %w", err)
	}
	return t, nil
}

func (r *commissionRepository) UpdateTier(ctx context.Context, tier commission.Tier) (commission.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE commission_tiers
		SET level = $2, min_revenue = $3, max_revenue = $4, percentage = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tierColumns

	t, err := scanTier(q.QueryRow(ctx, query,
		tier.ID, tier.Level, tier.MinRevenue, tier.MaxRevenue, tier.Percentage, tier.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Tier{}, commission.ErrTierNotFound
		}
		return commission.Tier{}, fmt.Errorf("failed to update commission tier: %w", err)
	}
	return t, nil
}

func (r *commissionRepository) DeactivateTier(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE commission_tiers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate commission tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return commission.ErrTierNotFound
	}
	return nil
}

// ========== RECORDS ==========

const recordColumns = `id, employee_id, kpi_id, period_month, period_year, target_amount, actual_amount,
	achievement_pct, is_achieved, status, tier_level, commission_pct, commission_amount, note,
	computed_by, created_at, updated_at`

func scanRecord(row pgx.Row) (commission.Record, error) {
	var rec commission.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.KPIID, &rec.PeriodMonth, &rec.PeriodYear, &rec.TargetAmount, &rec.ActualAmount,
		&rec.AchievementPct, &rec.IsAchieved, &rec.Status, &rec.TierLevel, &rec.CommissionPct, &rec.CommissionAmount, &rec.Note,
		&rec.ComputedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (r *commissionRepository) UpsertRecord(ctx context.Context, rec commission.Record) (commission.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO commission_records (
			employee_id, kpi_id, period_month, period_year, target_amount, actual_amount,
			achievement_pct, is_achieved, status, tier_level, commission_pct, commission_amount,
			note, computed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (employee_id, period_month, period_year) DO UPDATE SET
			kpi_id = EXCLUDED.kpi_id,
			target_amount = EXCLUDED.target_amount,
			actual_amount = EXCLUDED.actual_amount,
			achievement_pct = EXCLUDED.achievement_pct,
			is_achieved = EXCLUDED.is_achieved,
			status = EXCLUDED.status,
			tier_level = EXCLUDED.tier_level,
			commission_pct = EXCLUDED.commission_pct,
			commission_amount = EXCLUDED.commission_amount,
			note = EXCLUDED.note,
			computed_by = EXCLUDED.computed_by,
			updated_at = NOW()
		RETURNING ` + recordColumns

	saved, err := scanRecord(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.KPIID, rec.PeriodMonth, rec.PeriodYear, rec.TargetAmount, rec.ActualAmount,
		rec.AchievementPct, rec.IsAchieved, rec.Status, rec.TierLevel, rec.CommissionPct, rec.CommissionAmount,
		rec.Note, rec.ComputedBy,
	))
	if err != nil {
		return commission.Record{}, fmt.Errorf("failed to upsert commission record: %w", err)
	}
	return saved, nil
}

func (r *commissionRepository) GetRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (commission.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM commission_records
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commission.Record{}, commission.ErrRecordNotFound
		}
		return commission.Record{}, fmt.Errorf("failed to get commission record: %w", err)
	}
	return rec, nil
}

func (r *commissionRepository) ListRecords(ctx context.Context, filter commission.RecordFilter) ([]commission.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM commission_records WHERE 1=1`
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
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count commission records: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY period_year DESC, period_month DESC, employee_id LIMIT $%d OFFSET $%d`,
		recordColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list commission records: %w", err)
	}
	defer rows.Close()

	var records []commission.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan commission record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list commission records: %w", err)
	}

	return records, totalCount, nil
}

// ========== PERIOD INPUTS ==========

func (r *commissionRepository) ListAssignments(ctx context.Context, month, year int) ([]commission.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, kpi_id, period_month, period_year, target_amount
		FROM commission_assignments
		WHERE period_month = $1 AND period_year = $2
		ORDER BY employee_id
	`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission assignments: %w", err)
	}
	defer rows.Close()

	var assignments []commission.Assignment
	for rows.Next() {
		var a commission.Assignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.KPIID, &a.PeriodMonth, &a.PeriodYear, &a.TargetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan commission assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list commission assignments: %w", err)
	}

	return assignments, nil
}

// SumPaidRevenue totals the employee's paid sales whose payment falls in the period.
func (r *commissionRepository) SumPaidRevenue(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM sales_transactions
		WHERE employee_id = $1
			AND status = 'paid'
			AND paid_at >= make_date($3, $2, 1)
			AND paid_at < make_date($3, $2, 1) + INTERVAL '1 month'
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, month, year).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid revenue: %w", err)
	}
	return total, nil
}
