package rule

import "context"

// SnapshotLoader resolves the rule tables into a Snapshot.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

// RuleService defines rule maintenance operations.
type RuleService interface {
	SnapshotLoader

	ListParameters(ctx context.Context) ([]ParameterResponse, error)
	UpsertParameters(ctx context.Context, req UpsertParametersRequest) ([]ParameterResponse, error)
	GetSettings(ctx context.Context) (SettingsResponse, error)

	ListTaxBands(ctx context.Context) ([]TaxBandResponse, error)
	ReplaceTaxBands(ctx context.Context, req ReplaceTaxBandsRequest) ([]TaxBandResponse, error)

	ListInsuranceRates(ctx context.Context) ([]InsuranceRateResponse, error)
	ReplaceInsuranceRates(ctx context.Context, req ReplaceInsuranceRatesRequest) ([]InsuranceRateResponse, error)
}
