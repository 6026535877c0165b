package rule

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRuleRepo struct {
	params map[string]rule.Parameter
	rates  []rule.InsuranceRate
	bands  []rule.TaxBand
}

func newMemRuleRepo() *memRuleRepo {
	return &memRuleRepo{params: map[string]rule.Parameter{}}
}

func (r *memRuleRepo) ListParameters(ctx context.Context) ([]rule.Parameter, error) {
	out := make([]rule.Parameter, 0, len(r.params))
	for _, p := range r.params {
		out = append(out, p)
	}
	return out, nil
}

func (r *memRuleRepo) UpsertParameter(ctx context.Context, p rule.Parameter) (rule.Parameter, error) {
	p.UpdatedAt = time.Now()
	r.params[p.Key] = p
	return p, nil
}

func (r *memRuleRepo) ListInsuranceRates(ctx context.Context) ([]rule.InsuranceRate, error) {
	return r.rates, nil
}

func (r *memRuleRepo) ReplaceInsuranceRates(ctx context.Context, rates []rule.InsuranceRate) ([]rule.InsuranceRate, error) {
	for i := range rates {
		rates[i].ID = uuid.NewString()
	}
	r.rates = rates
	return rates, nil
}

func (r *memRuleRepo) ListTaxBands(ctx context.Context) ([]rule.TaxBand, error) {
	return r.bands, nil
}

func (r *memRuleRepo) ReplaceTaxBands(ctx context.Context, bands []rule.TaxBand) ([]rule.TaxBand, error) {
	for i := range bands {
		bands[i].ID = uuid.NewString()
	}
	r.bands = bands
	return bands, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadSnapshot(t *testing.T) {
	repo := newMemRuleRepo()
	repo.params[rule.KeyPersonalDeduction] = rule.Parameter{Key: rule.KeyPersonalDeduction, Value: "12000000"}
	repo.params[rule.KeyDependentDeduction] = rule.Parameter{Key: rule.KeyDependentDeduction, Value: "abc"}
	repo.bands = []rule.TaxBand{
		{Level: 2, MinIncome: d("5000000"), Rate: d("10")},
		{Level: 1, MinIncome: d("0"), MaxIncome: dp("5000000"), Rate: d("5")},
	}

	var buf bytes.Buffer
	svc := NewRuleService(passthroughTx{}, repo, slog.New(slog.NewTextHandler(&buf, nil)))

	snap, err := svc.LoadSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "12000000", snap.Settings.PersonalDeduction.String())
	assert.Equal(t, "4400000", snap.Settings.DependentDeduction.String())
	require.Len(t, snap.TaxBands, 2)
	assert.Equal(t, 1, snap.TaxBands[0].Level)
	assert.Contains(t, buf.String(), rule.KeyDependentDeduction)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestReplaceTaxBands(t *testing.T) {
	tests := []struct {
		name    string
		bands   []rule.TaxBandInput
		wantErr error
	}{
		{
			name: "valid and renumbered",
			bands: []rule.TaxBandInput{
				{MinIncome: d("5000000"), Rate: d("10")},
				{MinIncome: d("0"), MaxIncome: dp("5000000"), Rate: d("5")},
			},
		},
		{
			name: "overlapping",
			bands: []rule.TaxBandInput{
				{MinIncome: d("0"), MaxIncome: dp("6000000"), Rate: d("5")},
				{MinIncome: d("5000000"), Rate: d("10")},
			},
			wantErr: rule.ErrOverlappingTaxBand,
		},
		{
			name: "top band bounded",
			bands: []rule.TaxBandInput{
				{MinIncome: d("0"), MaxIncome: dp("5000000"), Rate: d("5")},
			},
			wantErr: rule.ErrTaxBandsNotUnbounded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRuleRepo()
			svc := NewRuleService(passthroughTx{}, repo, discardLogger())

			resp, err := svc.ReplaceTaxBands(context.Background(), rule.ReplaceTaxBandsRequest{Bands: tt.bands})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.bands)
				return
			}
			require.NoError(t, err)
			require.Len(t, resp, 2)
			assert.Equal(t, 1, resp[0].Level)
			assert.Equal(t, "0", resp[0].MinIncome.String())
			assert.Equal(t, 2, resp[1].Level)
			assert.Nil(t, resp[1].MaxIncome)
		})
	}
}

func TestReplaceTaxBands_EmptyIsValidationError(t *testing.T) {
	repo := newMemRuleRepo()
	svc := NewRuleService(passthroughTx{}, repo, discardLogger())

	_, err := svc.ReplaceTaxBands(context.Background(), rule.ReplaceTaxBandsRequest{})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "bands")
	assert.Empty(t, repo.bands)
}

func TestReplaceTaxBands_OverlapIsIntervalError(t *testing.T) {
	svc := NewRuleService(passthroughTx{}, newMemRuleRepo(), discardLogger())

	_, err := svc.ReplaceTaxBands(context.Background(), rule.ReplaceTaxBandsRequest{Bands: []rule.TaxBandInput{
		{MinIncome: d("0"), Rate: d("5")},
		{MinIncome: d("1000"), Rate: d("10")},
	}})
	assert.ErrorIs(t, err, interval.ErrOverlapping)
}

func TestReplaceInsuranceRates(t *testing.T) {
	repo := newMemRuleRepo()
	svc := NewRuleService(passthroughTx{}, repo, discardLogger())

	resp, err := svc.ReplaceInsuranceRates(context.Background(), rule.ReplaceInsuranceRatesRequest{
		Rates: []rule.InsuranceRateInput{
			{Name: "social", EmployeeRate: d("8"), CapBase: string(rule.CapBaseGovernment)},
			{Name: "unemployment", EmployeeRate: d("1"), CapBase: string(rule.CapBaseRegionMinimumWage)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, 1, resp[0].SortOrder)
	assert.Equal(t, 2, resp[1].SortOrder)
	assert.Len(t, repo.rates, 2)

	_, err = svc.ReplaceInsuranceRates(context.Background(), rule.ReplaceInsuranceRatesRequest{
		Rates: []rule.InsuranceRateInput{{Name: "bad", EmployeeRate: d("120"), CapBase: "salary"}},
	})
	assert.Error(t, err)
	assert.Len(t, repo.rates, 2)
}

func TestUpsertParameters(t *testing.T) {
	repo := newMemRuleRepo()
	svc := NewRuleService(passthroughTx{}, repo, discardLogger())

	resp, err := svc.UpsertParameters(context.Background(), rule.UpsertParametersRequest{
		Parameters: []rule.ParameterInput{
			{Key: rule.KeyFlatTaxThreshold, Value: "2500000"},
			{Key: rule.KeyPersonalDeduction, Value: "11000000"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp, 2)

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2500000", settings.FlatTaxThreshold.String())

	_, err = svc.UpsertParameters(context.Background(), rule.UpsertParametersRequest{
		Parameters: []rule.ParameterInput{{Key: "bonus_multiplier", Value: "2"}},
	})
	assert.Error(t, err)
	assert.Len(t, repo.params, 2)
}
