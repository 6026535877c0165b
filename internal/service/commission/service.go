package commission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type CommissionServiceImpl struct {
	tx     database.Transactor
	repo   commission.CommissionRepository
	logger *slog.Logger
}

func NewCommissionService(tx database.Transactor, repo commission.CommissionRepository, logger *slog.Logger) *CommissionServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommissionServiceImpl{tx: tx, repo: repo, logger: logger}
}

var _ commission.CommissionService = (*CommissionServiceImpl)(nil)

// ========== COMPUTATION ==========

func (s *CommissionServiceImpl) ComputeCommission(ctx context.Context, req commission.ComputeCommissionRequest) (commission.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.RecordResponse{}, err
	}

	tiers, err := s.repo.ListActiveTiers(ctx, req.KPIID)
	if err != nil {
		return commission.RecordResponse{}, err
	}

	record, err := s.computeAndStore(ctx, commission.Assignment{
		EmployeeID:   req.EmployeeID,
		KPIID:        req.KPIID,
		PeriodMonth:  req.PeriodMonth,
		PeriodYear:   req.PeriodYear,
		TargetAmount: req.TargetAmount,
	}, req.ActualAmount, tiers)
	if err != nil {
		return commission.RecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

func (s *CommissionServiceImpl) computeAndStore(ctx context.Context, a commission.Assignment, actual decimal.Decimal, tiers []commission.Tier) (commission.Record, error) {
	out := Calculate(a.TargetAmount, actual, tiers)
	if out.Note != nil {
		s.logger.WarnContext(ctx, "No commission tier matched",
			slog.String("employee_id", a.EmployeeID),
			slog.Int("month", a.PeriodMonth),
			slog.Int("year", a.PeriodYear),
			slog.String("actual_amount", actual.StringFixed(2)),
		)
	}

	record := commission.Record{
		EmployeeID:       a.EmployeeID,
		KPIID:            a.KPIID,
		PeriodMonth:      a.PeriodMonth,
		PeriodYear:       a.PeriodYear,
		TargetAmount:     a.TargetAmount.Round(2),
		ActualAmount:     actual.Round(2),
		AchievementPct:   out.AchievementPct.Round(2),
		IsAchieved:       out.IsAchieved,
		Status:           out.Status,
		TierLevel:        out.TierLevel,
		CommissionPct:    out.CommissionPct,
		CommissionAmount: out.CommissionAmount.Round(2),
		Note:             out.Note,
		ComputedBy:       jwt.CallerIDPtr(ctx),
	}

	var stored commission.Record
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		stored, err = s.repo.UpsertRecord(txCtx, record)
		return err
	})
	if err != nil {
		return commission.Record{}, err
	}
	return stored, nil
}

// ComputeCommissionBatch computes every assignment of the period. Each schedule's tiers are
// read once; each record is committed on its own and failures are reported, not returned.
func (s *CommissionServiceImpl) ComputeCommissionBatch(ctx context.Context, req commission.ComputeCommissionBatchRequest) (commission.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return commission.BatchResult{}, err
	}

	assignments, err := s.repo.ListAssignments(ctx, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return commission.BatchResult{}, err
	}

	result := commission.BatchResult{
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Succeeded:   []commission.RecordResponse{},
		Failed:      []commission.BatchFailure{},
	}

	schedules := make(map[string][]commission.Tier)
	tiersFor := func(kpiID *string) ([]commission.Tier, error) {
		key := ""
		if kpiID != nil {
			key = *kpiID
		}
		if tiers, ok := schedules[key]; ok {
			return tiers, nil
		}
		tiers, err := s.repo.ListActiveTiers(ctx, kpiID)
		if err != nil {
			return nil, err
		}
		schedules[key] = tiers
		return tiers, nil
	}

	for _, a := range assignments {
		record, err := s.computeAssignment(ctx, a, tiersFor)
		if err != nil {
			s.logger.WarnContext(ctx, "Commission computation failed",
				slog.String("employee_id", a.EmployeeID),
				slog.Int("month", a.PeriodMonth),
				slog.Int("year", a.PeriodYear),
				slog.Any("error", err),
			)
			result.Failed = append(result.Failed, commission.BatchFailure{EmployeeID: a.EmployeeID, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, mapToRecordResponse(record))
	}

	result.Summary = commission.BatchSummary{
		Total:     len(assignments),
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
	}

	s.logger.InfoContext(ctx, "Commission batch completed",
		slog.Int("month", req.PeriodMonth),
		slog.Int("year", req.PeriodYear),
		slog.Int("total", result.Summary.Total),
		slog.Int("succeeded", result.Summary.Succeeded),
		slog.Int("failed", result.Summary.Failed),
	)

	return result, nil
}

func (s *CommissionServiceImpl) computeAssignment(
	ctx context.Context,
	a commission.Assignment,
	tiersFor func(*string) ([]commission.Tier, error),
) (commission.Record, error) {
	tiers, err := tiersFor(a.KPIID)
	if err != nil {
		return commission.Record{}, err
	}

	actual, err := s.repo.SumPaidRevenue(ctx, a.EmployeeID, a.PeriodMonth, a.PeriodYear)
	if err != nil {
		return commission.Record{}, err
	}

	return s.computeAndStore(ctx, a, actual, tiers)
}

func (s *CommissionServiceImpl) GetRecord(ctx context.Context, employeeID string, month, year int) (commission.RecordResponse, error) {
	record, err := s.repo.GetRecordByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return commission.RecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

func (s *CommissionServiceImpl) ListRecords(ctx context.Context, filter commission.RecordFilter) (commission.ListRecordResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	records, total, err := s.repo.ListRecords(ctx, filter)
	if err != nil {
		return commission.ListRecordResponse{}, err
	}

	data := make([]commission.RecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, mapToRecordResponse(r))
	}

	return commission.ListRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== TIERS ==========

func (s *CommissionServiceImpl) ListTiers(ctx context.Context, filter commission.TierFilter) ([]commission.TierResponse, error) {
	tiers, err := s.repo.ListTiers(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]commission.TierResponse, 0, len(tiers))
	for _, t := range interval.Sorted(tiers) {
		out = append(out, mapToTierResponse(t))
	}
	return out, nil
}

func (s *CommissionServiceImpl) CreateTier(ctx context.Context, req commission.CreateTierRequest) (commission.TierResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.TierResponse{}, err
	}

	tier := commission.Tier{
		KPIID:      req.KPIID,
		Level:      req.Level,
		MinRevenue: req.MinRevenue,
		MaxRevenue: req.MaxRevenue,
		Percentage: req.Percentage,
		IsActive:   true,
	}

	var created commission.Tier
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, tier); err != nil {
			return err
		}
		var err error
		created, err = s.repo.CreateTier(txCtx, tier)
		return err
	})
	if err != nil {
		return commission.TierResponse{}, err
	}
	return mapToTierResponse(created), nil
}

func (s *CommissionServiceImpl) UpdateTier(ctx context.Context, req commission.UpdateTierRequest) (commission.TierResponse, error) {
	if err := req.Validate(); err != nil {
		return commission.TierResponse{}, err
	}

	var updated commission.Tier
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		tier, err := s.repo.GetTierByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		tier.Level = req.Level
		tier.MinRevenue = req.MinRevenue
		tier.MaxRevenue = req.MaxRevenue
		tier.Percentage = req.Percentage
		if req.IsActive != nil {
			tier.IsActive = *req.IsActive
		}

		if tier.IsActive {
			if err := s.checkOverlap(txCtx, tier); err != nil {
				return err
			}
		}

		updated, err = s.repo.UpdateTier(txCtx, tier)
		return err
	})
	if err != nil {
		return commission.TierResponse{}, err
	}
	return mapToTierResponse(updated), nil
}

func (s *CommissionServiceImpl) DeactivateTier(ctx context.Context, id string) error {
	return s.repo.DeactivateTier(ctx, id)
}

// checkOverlap rejects a tier whose span intersects another active tier of the same schedule.
func (s *CommissionServiceImpl) checkOverlap(ctx context.Context, tier commission.Tier) error {
	active, err := s.repo.ListActiveTiers(ctx, tier.KPIID)
	if err != nil {
		return err
	}

	others := make([]commission.Tier, 0, len(active))
	for _, t := range active {
		if tier.ID != "" && t.ID == tier.ID {
			continue
		}
		others = append(others, t)
	}

	if clash, found := interval.FindOverlap(others, tier.Span()); found {
		return fmt.Errorf("%w: %s intersects level %d %s", commission.ErrOverlappingTier, tier.Span(), clash.Level, clash.Span())
	}
	return nil
}

// ========== MAPPERS ==========

func mapToTierResponse(t commission.Tier) commission.TierResponse {
	return commission.TierResponse{
		ID:         t.ID,
		KPIID:      t.KPIID,
		Level:      t.Level,
		MinRevenue: t.MinRevenue,
		MaxRevenue: t.MaxRevenue,
		Percentage: t.Percentage,
		IsActive:   t.IsActive,
	}
}

func mapToRecordResponse(r commission.Record) commission.RecordResponse {
	return commission.RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		KPIID:            r.KPIID,
		PeriodMonth:      r.PeriodMonth,
		PeriodYear:       r.PeriodYear,
		TargetAmount:     r.TargetAmount,
		ActualAmount:     r.ActualAmount,
		AchievementPct:   r.AchievementPct,
		IsAchieved:       r.IsAchieved,
		Status:           string(r.Status),
		TierLevel:        r.TierLevel,
		CommissionPct:    r.CommissionPct,
		CommissionAmount: r.CommissionAmount,
		Note:             r.Note,
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}
