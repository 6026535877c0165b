package postgresqltest

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
)

// TestDatabaseSetup holds the connection used by the repository integration tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to dsn and makes sure the engine tables exist.
func NewTestDatabase(ctx context.Context, dsn string) (*TestDatabaseSetup, error) {
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := postgresql.ApplySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &TestDatabaseSetup{DB: db}, nil
}

// TruncateAllTables empties every engine table.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"rule_parameters",
		"insurance_rates",
		"tax_bands",
		"pay_terms",
		"attendance_facts",
		"payroll_adjustments",
		"payslips",
		"commission_tiers",
		"commission_assignments",
		"sales_transactions",
		"commission_records",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
