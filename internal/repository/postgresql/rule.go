package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type ruleRepository struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) rule.RuleRepository {
	return &ruleRepository{db: db}
}

// ========== PARAMETERS ==========

func (r *ruleRepository) ListParameters(ctx context.Context) ([]rule.Parameter, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT key, value, description, updated_at, updated_by
		FROM rule_parameters
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule parameters: %w", err)
	}
	defer rows.Close()

	var params []rule.Parameter
	for rows.Next() {
		var p rule.Parameter
		if err := rows.Scan(&p.Key, &p.Value, &p.Description, &p.UpdatedAt, &p.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan rule parameter: %w", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rule parameters: %w", err)
	}

	return params, nil
}

func (r *ruleRepository) UpsertParameter(ctx context.Context, param rule.Parameter) (rule.Parameter, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO rule_parameters (key, value, description, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, rule_parameters.description),
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING key, value, description, updated_at, updated_by
	`

	var p rule.Parameter
	err := q.QueryRow(ctx, query, param.Key, param.Value, param.Description, param.UpdatedBy).Scan(
		&p.Key, &p.Value, &p.Description, &p.UpdatedAt, &p.UpdatedBy,
	)
	if err != nil {
		return rule.Parameter{}, fmt.Errorf("failed to upsert rule parameter: %w", err)
	}
	return p, nil
}

// ========== INSURANCE RATES ==========

func (r *ruleRepository) ListInsuranceRates(ctx context.Context) ([]rule.InsuranceRate, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, employee_rate, cap_base, sort_order, created_at, updated_at
		FROM insurance_rates
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance rates: %w", err)
	}
	defer rows.Close()

	var rates []rule.InsuranceRate
	for rows.Next() {
		var ir rule.InsuranceRate
		if err := rows.Scan(&ir.ID, &ir.Name, &ir.EmployeeRate, &ir.CapBase, &ir.SortOrder, &ir.CreatedAt, &ir.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insurance rate: %w", err)
		}
		rates = append(rates, ir)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list insurance rates: %w", err)
	}

	return rates, nil
}

// ReplaceInsuranceRates deletes every rate and inserts the given set. Callers run it in a
// transaction so readers never see an empty table.
func (r *ruleRepository) ReplaceInsuranceRates(ctx context.Context, rates []rule.InsuranceRate) ([]rule.InsuranceRate, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM insurance_rates`); err != nil {
		return nil, fmt.Errorf("failed to clear insurance rates: %w", err)
	}

	query := `
		INSERT INTO insurance_rates (name, employee_rate, cap_base, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, employee_rate, cap_base, sort_order, created_at, updated_at
	`

	saved := make([]rule.InsuranceRate, 0, len(rates))
	for _, in := range rates {
		var ir rule.InsuranceRate
		err := q.QueryRow(ctx, query, in.Name, in.EmployeeRate, in.CapBase, in.SortOrder).Scan(
			&ir.ID, &ir.Name, &ir.EmployeeRate, &ir.CapBase, &ir.SortOrder, &ir.CreatedAt, &ir.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert insurance rate %q: %w", in.Name, err)
		}
		saved = append(saved, ir)
	}

	return saved, nil
}

// ========== TAX BANDS ==========

func (r *ruleRepository) ListTaxBands(ctx context.Context) ([]rule.TaxBand, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, level, min_income, max_income, rate, created_at, updated_at
		FROM tax_bands
		ORDER BY min_income
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax bands: %w", err)
	}
	defer rows.Close()

	var bands []rule.TaxBand
	for rows.Next() {
		var b rule.TaxBand
		if err := rows.Scan(&b.ID, &b.Level, &b.MinIncome, &b.MaxIncome, &b.Rate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tax band: %w", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tax bands: %w", err)
	}

	return bands, nil
}

func (r *ruleRepository) ReplaceTaxBands(ctx context.Context, bands []rule.TaxBand) ([]rule.TaxBand, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM tax_bands`); err != nil {
		return nil, fmt.Errorf("failed to clear tax bands: %w", err)
	}

	query := `
		INSERT INTO tax_bands (level, min_income, max_income, rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id, level, min_income, max_income, rate, created_at, updated_at
	`

	saved := make([]rule.TaxBand, 0, len(bands))
	for _, in := range bands {
		var b rule.TaxBand
		err := q.QueryRow(ctx, query, in.Level, in.MinIncome, in.MaxIncome, in.Rate).Scan(
			&b.ID, &b.Level, &b.MinIncome, &b.MaxIncome, &b.Rate, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert tax band level %d: %w", in.Level, err)
		}
		saved = append(saved, b)
	}

	return saved, nil
}
