package postgresqltest

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupTestDB skips unless TEST_DATABASE_URL points at a disposable database.
func setupTestDB(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	setup, err := NewTestDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, setup.TruncateAllTables(ctx))

	t.Cleanup(func() {
		_ = setup.TruncateAllTables(context.Background())
		setup.Close()
	})
	return setup
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
