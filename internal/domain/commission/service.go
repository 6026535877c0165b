package commission

import "context"

type CommissionService interface {
	// Computation
	ComputeCommission(ctx context.Context, req ComputeCommissionRequest) (RecordResponse, error)
	ComputeCommissionBatch(ctx context.Context, req ComputeCommissionBatchRequest) (BatchResult, error)
	GetRecord(ctx context.Context, employeeID string, month, year int) (RecordResponse, error)
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordResponse, error)

	// Tier maintenance
	ListTiers(ctx context.Context, filter TierFilter) ([]TierResponse, error)
	CreateTier(ctx context.Context, req CreateTierRequest) (TierResponse, error)
	UpdateTier(ctx context.Context, req UpdateTierRequest) (TierResponse, error)
	DeactivateTier(ctx context.Context, id string) error
}
