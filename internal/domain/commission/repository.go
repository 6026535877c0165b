package commission

import (
	"context"

	"github.com/shopspring/decimal"
)

type CommissionRepository interface {
	// Tiers. A nil kpiID addresses the default schedule.
	ListActiveTiers(ctx context.Context, kpiID *string) ([]Tier, error)
	ListTiers(ctx context.Context, filter TierFilter) ([]Tier, error)
	GetTierByID(ctx context.Context, id string) (Tier, error)
	CreateTier(ctx context.Context, tier Tier) (Tier, error)
	UpdateTier(ctx context.Context, tier Tier) (Tier, error)
	DeactivateTier(ctx context.Context, id string) error

	// Records
	UpsertRecord(ctx context.Context, record Record) (Record, error)
	GetRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, int64, error)

	// Period inputs
	ListAssignments(ctx context.Context, month, year int) ([]Assignment, error)
	SumPaidRevenue(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error)
}
