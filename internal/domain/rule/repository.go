package rule

import "context"

// RuleRepository is the data access for the rule tables.
type RuleRepository interface {
	// Parameters
	ListParameters(ctx context.Context) ([]Parameter, error)
	UpsertParameter(ctx context.Context, param Parameter) (Parameter, error)

	// Insurance rates, ordered by sort_order
	ListInsuranceRates(ctx context.Context) ([]InsuranceRate, error)
	ReplaceInsuranceRates(ctx context.Context, rates []InsuranceRate) ([]InsuranceRate, error)

	// Tax bands, ordered by min_income
	ListTaxBands(ctx context.Context) ([]TaxBand, error)
	ReplaceTaxBands(ctx context.Context, bands []TaxBand) ([]TaxBand, error)
}
