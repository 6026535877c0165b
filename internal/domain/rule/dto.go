package rule

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PARAMETERS ==========

type ParameterInput struct {
	Key         string  `json:"key" validate:"required"`
	Value       string  `json:"value" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type UpsertParametersRequest struct {
	Parameters []ParameterInput `json:"parameters" validate:"required,min=1,dive"`
}

func (r *UpsertParametersRequest) Validate() error {
	errs := validator.Struct(r)

	for i, p := range r.Parameters {
		field := fmt.Sprintf("parameters[%d]", i)
		if p.Key != "" && !IsKnownKey(p.Key) {
			errs.Add(field+".key", "is not a known rule parameter")
		}
		if p.Value != "" {
			if _, err := ParseValue(p.Key, p.Value); err != nil {
				errs.Add(field+".value", "must be numeric")
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ParameterResponse struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Required    bool    `json:"required"`
	Description *string `json:"description,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

type SettingsResponse struct {
	PersonalDeduction       decimal.Decimal `json:"personal_deduction"`
	DependentDeduction      decimal.Decimal `json:"dependent_deduction"`
	FlatTaxThreshold        decimal.Decimal `json:"flat_tax_threshold"`
	GovernmentBaseSalary    decimal.Decimal `json:"government_base_salary"`
	RegionMinimumWage       decimal.Decimal `json:"region_minimum_wage"`
	TrainedWorkerMultiplier decimal.Decimal `json:"trained_worker_multiplier"`
}

// ========== TAX BANDS ==========

type TaxBandInput struct {
	MinIncome decimal.Decimal  `json:"min_income"`
	MaxIncome *decimal.Decimal `json:"max_income,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
}

func (b TaxBandInput) Span() interval.Range {
	return interval.Range{Min: b.MinIncome, Max: b.MaxIncome}
}

type ReplaceTaxBandsRequest struct {
	Bands []TaxBandInput `json:"bands" validate:"required,min=1"`
}

func (r *ReplaceTaxBandsRequest) Validate() error {
	errs := validator.Struct(r)

	for i, b := range r.Bands {
		if !validator.IsPercentage(b.Rate) {
			errs.Add(fmt.Sprintf("bands[%d].rate", i), "must be between 0 and 100")
		}
		if err := b.Span().Validate(); err != nil {
			errs.Add(fmt.Sprintf("bands[%d]", i), err.Error())
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TaxBandResponse struct {
	ID        string           `json:"id"`
	Level     int              `json:"level"`
	MinIncome decimal.Decimal  `json:"min_income"`
	MaxIncome *decimal.Decimal `json:"max_income,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
}

// ========== INSURANCE RATES ==========

type InsuranceRateInput struct {
	Name         string          `json:"name" validate:"required"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	CapBase      string          `json:"cap_base" validate:"required,oneof=government_base region_minimum_wage"`
}

type ReplaceInsuranceRatesRequest struct {
	Rates []InsuranceRateInput `json:"rates" validate:"required,dive"`
}

func (r *ReplaceInsuranceRatesRequest) Validate() error {
	errs := validator.Struct(r)

	for i, rate := range r.Rates {
		if !validator.IsPercentage(rate.EmployeeRate) {
			errs.Add(fmt.Sprintf("rates[%d].employee_rate", i), "must be between 0 and 100")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type InsuranceRateResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	CapBase      string          `json:"cap_base"`
	SortOrder    int             `json:"sort_order"`
}
