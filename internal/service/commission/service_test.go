package commission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memCommissionRepo struct {
	tiers       map[string]commission.Tier
	records     map[string]commission.Record
	assignments []commission.Assignment
	revenue     map[string]decimal.Decimal
	revenueErr  map[string]error
	tierLoads   int
}

func newMemCommissionRepo(tiers ...commission.Tier) *memCommissionRepo {
	r := &memCommissionRepo{
		tiers:      map[string]commission.Tier{},
		records:    map[string]commission.Record{},
		revenue:    map[string]decimal.Decimal{},
		revenueErr: map[string]error{},
	}
	for _, t := range tiers {
		r.tiers[t.ID] = t
	}
	return r
}

func sameSchedule(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memCommissionRepo) ListActiveTiers(ctx context.Context, kpiID *string) ([]commission.Tier, error) {
	r.tierLoads++
	var out []commission.Tier
	for _, t := range r.tiers {
		if t.IsActive && sameSchedule(t.KPIID, kpiID) {
			out = append(out, t)
		}
	}
	return interval.Sorted(out), nil
}

func (r *memCommissionRepo) ListTiers(ctx context.Context, filter commission.TierFilter) ([]commission.Tier, error) {
	var out []commission.Tier
	for _, t := range r.tiers {
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memCommissionRepo) GetTierByID(ctx context.Context, id string) (commission.Tier, error) {
	t, ok := r.tiers[id]
	if !ok {
		return commission.Tier{}, commission.ErrTierNotFound
	}
	return t, nil
}

func (r *memCommissionRepo) CreateTier(ctx context.Context, tier commission.Tier) (commission.Tier, error) {
	tier.ID = uuid.NewString()
	r.tiers[tier.ID] = tier
	return tier, nil
}

func (r *memCommissionRepo) UpdateTier(ctx context.Context, tier commission.Tier) (commission.Tier, error) {
	if _, ok := r.tiers[tier.ID]; !ok {
		return commission.Tier{}, commission.ErrTierNotFound
	}
	r.tiers[tier.ID] = tier
	return tier, nil
}

func (r *memCommissionRepo) DeactivateTier(ctx context.Context, id string) error {
	t, ok := r.tiers[id]
	if !ok {
		return commission.ErrTierNotFound
	}
	t.IsActive = false
	r.tiers[id] = t
	return nil
}

func recordKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", employeeID, month, year)
}

func (r *memCommissionRepo) UpsertRecord(ctx context.Context, record commission.Record) (commission.Record, error) {
	key := recordKey(record.EmployeeID, record.PeriodMonth, record.PeriodYear)
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = uuid.NewString()
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()
	r.records[key] = record
	return record, nil
}

func (r *memCommissionRepo) GetRecordByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (commission.Record, error) {
	rec, ok := r.records[recordKey(employeeID, month, year)]
	if !ok {
		return commission.Record{}, commission.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memCommissionRepo) ListRecords(ctx context.Context, filter commission.RecordFilter) ([]commission.Record, int64, error) {
	var out []commission.Record
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memCommissionRepo) ListAssignments(ctx context.Context, month, year int) ([]commission.Assignment, error) {
	var out []commission.Assignment
	for _, a := range r.assignments {
		if a.PeriodMonth == month && a.PeriodYear == year {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memCommissionRepo) SumPaidRevenue(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error) {
	if err := r.revenueErr[employeeID]; err != nil {
		return decimal.Zero, err
	}
	return r.revenue[employeeID], nil
}

func newTestService(repo *memCommissionRepo) *CommissionServiceImpl {
	return NewCommissionService(passthroughTx{}, repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestComputeCommission_ScenarioAndIdempotence(t *testing.T) {
	repo := newMemCommissionRepo(defaultSchedule()...)
	svc := newTestService(repo)
	req := commission.ComputeCommissionRequest{
		EmployeeID:   "sales-1",
		PeriodMonth:  3,
		PeriodYear:   2024,
		TargetAmount: d("100000000"),
		ActualAmount: d("150000000"),
	}

	first, err := svc.ComputeCommission(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.ComputeCommission(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "150.00", first.AchievementPct.StringFixed(2))
	require.NotNil(t, first.TierLevel)
	assert.Equal(t, 2, *first.TierLevel)
	assert.Equal(t, "12000000.00", first.CommissionAmount.StringFixed(2))
	assert.Equal(t, string(commission.StatusCommissionEarned), first.Status)

	assert.Len(t, repo.records, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CommissionAmount.Equal(second.CommissionAmount))
}

func TestComputeCommission_NoMatchingTierIsNotAnError(t *testing.T) {
	repo := newMemCommissionRepo(commission.Tier{
		ID: "only", Level: 1, MinRevenue: d("0"), MaxRevenue: dp("100000000"), Percentage: d("5"), IsActive: true,
	})
	svc := newTestService(repo)

	resp, err := svc.ComputeCommission(context.Background(), commission.ComputeCommissionRequest{
		EmployeeID: "sales-1", PeriodMonth: 3, PeriodYear: 2024,
		TargetAmount: d("100000000"), ActualAmount: d("200000000"),
	})
	require.NoError(t, err)

	assert.True(t, resp.CommissionAmount.IsZero())
	require.NotNil(t, resp.Note)
	assert.Contains(t, *resp.Note, "no commission tier")
}

func TestComputeCommissionBatch(t *testing.T) {
	repo := newMemCommissionRepo(defaultSchedule()...)
	repo.assignments = []commission.Assignment{
		{EmployeeID: "sales-1", PeriodMonth: 3, PeriodYear: 2024, TargetAmount: d("100000000")},
		{EmployeeID: "sales-2", PeriodMonth: 3, PeriodYear: 2024, TargetAmount: d("100000000")},
		{EmployeeID: "sales-3", PeriodMonth: 3, PeriodYear: 2024, TargetAmount: d("100000000")},
		{EmployeeID: "sales-4", PeriodMonth: 4, PeriodYear: 2024, TargetAmount: d("100000000")},
	}
	repo.revenue["sales-1"] = d("150000000")
	repo.revenue["sales-2"] = d("50000000")
	repo.revenueErr["sales-3"] = errors.New("ledger unavailable")
	svc := newTestService(repo)

	result, err := svc.ComputeCommissionBatch(context.Background(), commission.ComputeCommissionBatchRequest{
		PeriodMonth: 3, PeriodYear: 2024,
	})
	require.NoError(t, err)

	assert.Equal(t, commission.BatchSummary{Total: 3, Succeeded: 2, Failed: 1}, result.Summary)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "sales-3", result.Failed[0].EmployeeID)
	assert.Len(t, repo.records, 2)
	assert.Equal(t, 1, repo.tierLoads, "default schedule must be read once")

	low := repo.records[recordKey("sales-2", 3, 2024)]
	assert.Equal(t, commission.StatusNotAchieved, low.Status)
}

func TestComputeCommissionBatch_IgnoresCallerCancellation(t *testing.T) {
	repo := newMemCommissionRepo(defaultSchedule()...)
	repo.assignments = []commission.Assignment{
		{EmployeeID: "sales-1", PeriodMonth: 3, PeriodYear: 2024, TargetAmount: d("100000000")},
		{EmployeeID: "sales-2", PeriodMonth: 3, PeriodYear: 2024, TargetAmount: d("100000000")},
	}
	repo.revenue["sales-1"] = d("150000000")
	repo.revenue["sales-2"] = d("90000000")
	svc := newTestService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.ComputeCommissionBatch(ctx, commission.ComputeCommissionBatchRequest{
		PeriodMonth: 3, PeriodYear: 2024,
	})
	require.NoError(t, err)

	assert.Equal(t, commission.BatchSummary{Total: 2, Succeeded: 2, Failed: 0}, result.Summary)
	assert.Len(t, repo.records, 2)
}

func TestCreateTier_OverlapGuard(t *testing.T) {
	kpi := "kpi-enterprise"
	tests := []struct {
		name    string
		req     commission.CreateTierRequest
		wantErr error
	}{
		{
			name:    "inside existing tier",
			req:     commission.CreateTierRequest{Level: 9, MinRevenue: d("50000000"), MaxRevenue: dp("60000000"), Percentage: d("1")},
			wantErr: commission.ErrOverlappingTier,
		},
		{
			name:    "unbounded over top tier",
			req:     commission.CreateTierRequest{Level: 9, MinRevenue: d("500000000"), Percentage: d("1")},
			wantErr: commission.ErrOverlappingTier,
		},
		{
			name: "other schedule is independent",
			req:  commission.CreateTierRequest{KPIID: &kpi, Level: 1, MinRevenue: d("0"), Percentage: d("3")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemCommissionRepo(defaultSchedule()...)
			svc := newTestService(repo)

			_, err := svc.CreateTier(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, interval.ErrOverlapping)
				assert.Len(t, repo.tiers, 3)
				return
			}
			require.NoError(t, err)
			assert.Len(t, repo.tiers, 4)
		})
	}
}

func TestCreateTier_AdjacentIsAllowed(t *testing.T) {
	repo := newMemCommissionRepo(commission.Tier{
		ID: "t1", Level: 1, MinRevenue: d("0"), MaxRevenue: dp("100000000"), Percentage: d("5"), IsActive: true,
	})
	svc := newTestService(repo)

	created, err := svc.CreateTier(context.Background(), commission.CreateTierRequest{
		Level: 2, MinRevenue: d("100000000"), Percentage: d("8"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
}

func TestUpdateTier(t *testing.T) {
	repo := newMemCommissionRepo(defaultSchedule()...)
	svc := newTestService(repo)
	ctx := context.Background()

	// Same span as before: must not clash with itself.
	_, err := svc.UpdateTier(ctx, commission.UpdateTierRequest{
		ID: "t2", Level: 2, MinRevenue: d("100000000"), MaxRevenue: dp("300000000"), Percentage: d("9"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9", repo.tiers["t2"].Percentage.String())

	_, err = svc.UpdateTier(ctx, commission.UpdateTierRequest{
		ID: "t2", Level: 2, MinRevenue: d("100000000"), MaxRevenue: dp("350000000"), Percentage: d("9"),
	})
	assert.ErrorIs(t, err, commission.ErrOverlappingTier)

	require.NoError(t, svc.DeactivateTier(ctx, "t3"))
	_, err = svc.UpdateTier(ctx, commission.UpdateTierRequest{
		ID: "t2", Level: 2, MinRevenue: d("100000000"), Percentage: d("9"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateTier(ctx, commission.UpdateTierRequest{
		ID: "missing", Level: 1, MinRevenue: d("0"), Percentage: d("1"),
	})
	assert.ErrorIs(t, err, commission.ErrTierNotFound)
}

func TestCreateTier_Validation(t *testing.T) {
	svc := newTestService(newMemCommissionRepo())

	_, err := svc.CreateTier(context.Background(), commission.CreateTierRequest{
		Level: 0, MinRevenue: d("100"), MaxRevenue: dp("100"), Percentage: d("101"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
	assert.Contains(t, err.Error(), "revenue_range")
	assert.Contains(t, err.Error(), "percentage")
}
