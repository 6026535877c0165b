package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
)

type RuleServiceImpl struct {
	tx     database.Transactor
	repo   rule.RuleRepository
	logger *slog.Logger
}

func NewRuleService(tx database.Transactor, repo rule.RuleRepository, logger *slog.Logger) *RuleServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleServiceImpl{tx: tx, repo: repo, logger: logger}
}

var _ rule.RuleService = (*RuleServiceImpl)(nil)

// LoadSnapshot reads all rule tables and resolves the typed settings. Parameter problems
// are logged and defaulted; only storage errors fail.
func (s *RuleServiceImpl) LoadSnapshot(ctx context.Context) (rule.Snapshot, error) {
	params, err := s.repo.ListParameters(ctx)
	if err != nil {
		return rule.Snapshot{}, err
	}
	rates, err := s.repo.ListInsuranceRates(ctx)
	if err != nil {
		return rule.Snapshot{}, err
	}
	bands, err := s.repo.ListTaxBands(ctx)
	if err != nil {
		return rule.Snapshot{}, err
	}

	return rule.Snapshot{
		Settings:       rule.ResolveSettings(params, s.logger.With(slog.String("component", "rules"))),
		InsuranceRates: rates,
		TaxBands:       interval.Sorted(bands),
	}, nil
}

// ========== PARAMETERS ==========

func (s *RuleServiceImpl) ListParameters(ctx context.Context) ([]rule.ParameterResponse, error) {
	params, err := s.repo.ListParameters(ctx)
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool)
	for _, spec := range rule.ParameterSpecs() {
		required[spec.Key] = spec.Required
	}

	out := make([]rule.ParameterResponse, 0, len(params))
	for _, p := range params {
		out = append(out, rule.ParameterResponse{
			Key:         p.Key,
			Value:       p.Value,
			Required:    required[p.Key],
			Description: p.Description,
			UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *RuleServiceImpl) UpsertParameters(ctx context.Context, req rule.UpsertParametersRequest) ([]rule.ParameterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updatedBy := jwt.CallerIDPtr(ctx)
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		for _, in := range req.Parameters {
			if _, err := s.repo.UpsertParameter(txCtx, rule.Parameter{
				Key:         in.Key,
				Value:       in.Value,
				Description: in.Description,
				UpdatedBy:   updatedBy,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Rule parameters updated", slog.Int("count", len(req.Parameters)))
	return s.ListParameters(ctx)
}

func (s *RuleServiceImpl) GetSettings(ctx context.Context) (rule.SettingsResponse, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return rule.SettingsResponse{}, err
	}

	st := snap.Settings
	return rule.SettingsResponse{
		PersonalDeduction:       st.PersonalDeduction,
		DependentDeduction:      st.DependentDeduction,
		FlatTaxThreshold:        st.FlatTaxThreshold,
		GovernmentBaseSalary:    st.GovernmentBaseSalary,
		RegionMinimumWage:       st.RegionMinimumWage,
		TrainedWorkerMultiplier: st.TrainedWorkerMultiplier,
	}, nil
}

// ========== TAX BANDS ==========

func (s *RuleServiceImpl) ListTaxBands(ctx context.Context) ([]rule.TaxBandResponse, error) {
	bands, err := s.repo.ListTaxBands(ctx)
	if err != nil {
		return nil, err
	}
	return mapToTaxBandResponses(interval.Sorted(bands)), nil
}

// ReplaceTaxBands swaps the whole bracket table. Bands must be disjoint and the highest one
// unbounded; levels are renumbered in ascending order.
func (s *RuleServiceImpl) ReplaceTaxBands(ctx context.Context, req rule.ReplaceTaxBandsRequest) ([]rule.TaxBandResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := interval.CheckDisjoint(req.Bands); err != nil {
		if errors.Is(err, interval.ErrOverlapping) {
			return nil, fmt.Errorf("%w: %s", rule.ErrOverlappingTaxBand, err)
		}
		return nil, err
	}

	sorted := interval.Sorted(req.Bands)
	if sorted[len(sorted)-1].MaxIncome != nil {
		return nil, rule.ErrTaxBandsNotUnbounded
	}

	bands := make([]rule.TaxBand, 0, len(sorted))
	for i, in := range sorted {
		bands = append(bands, rule.TaxBand{
			Level:     i + 1,
			MinIncome: in.MinIncome,
			MaxIncome: in.MaxIncome,
			Rate:      in.Rate,
		})
	}

	var saved []rule.TaxBand
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.repo.ReplaceTaxBands(txCtx, bands)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tax bands replaced", slog.Int("count", len(saved)))
	return mapToTaxBandResponses(saved), nil
}

// ========== INSURANCE RATES ==========

func (s *RuleServiceImpl) ListInsuranceRates(ctx context.Context) ([]rule.InsuranceRateResponse, error) {
	rates, err := s.repo.ListInsuranceRates(ctx)
	if err != nil {
		return nil, err
	}
	return mapToInsuranceRateResponses(rates), nil
}

func (s *RuleServiceImpl) ReplaceInsuranceRates(ctx context.Context, req rule.ReplaceInsuranceRatesRequest) ([]rule.InsuranceRateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rates := make([]rule.InsuranceRate, 0, len(req.Rates))
	for i, in := range req.Rates {
		base := rule.CapBase(in.CapBase)
		if !base.Valid() {
			return nil, fmt.Errorf("%w: %q", rule.ErrInvalidCapBase, in.CapBase)
		}
		rates = append(rates, rule.InsuranceRate{
			Name:         in.Name,
			EmployeeRate: in.EmployeeRate,
			CapBase:      base,
			SortOrder:    i + 1,
		})
	}

	var saved []rule.InsuranceRate
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		saved, err = s.repo.ReplaceInsuranceRates(txCtx, rates)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Insurance rates replaced", slog.Int("count", len(saved)))
	return mapToInsuranceRateResponses(saved), nil
}

// ========== MAPPERS ==========

func mapToTaxBandResponses(bands []rule.TaxBand) []rule.TaxBandResponse {
	out := make([]rule.TaxBandResponse, 0, len(bands))
	for _, b := range bands {
		out = append(out, rule.TaxBandResponse{
			ID:        b.ID,
			Level:     b.Level,
			MinIncome: b.MinIncome,
			MaxIncome: b.MaxIncome,
			Rate:      b.Rate,
		})
	}
	return out
}

func mapToInsuranceRateResponses(rates []rule.InsuranceRate) []rule.InsuranceRateResponse {
	out := make([]rule.InsuranceRateResponse, 0, len(rates))
	for _, r := range rates {
		out = append(out, rule.InsuranceRateResponse{
			ID:           r.ID,
			Name:         r.Name,
			EmployeeRate: r.EmployeeRate,
			CapBase:      string(r.CapBase),
			SortOrder:    r.SortOrder,
		})
	}
	return out
}
