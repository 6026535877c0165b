package rule

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/shopspring/decimal"
)

// InsuranceCapMultiplier bounds the contributable salary at reference × 20.
const InsuranceCapMultiplier = 20

// CapBase names the parameter an insurance rate is capped against.
type CapBase string

const (
	CapBaseGovernment        CapBase = "government_base"
	CapBaseRegionMinimumWage CapBase = "region_minimum_wage"
)

func (c CapBase) Valid() bool {
	return c == CapBaseGovernment || c == CapBaseRegionMinimumWage
}

// Parameter - named numeric rule value, stored as text
type Parameter struct {
	Key         string
	Value       string
	Description *string
	UpdatedAt   time.Time
	UpdatedBy   *string
}

// InsuranceRate - statutory employee contribution
type InsuranceRate struct {
	ID           string
	Name         string
	EmployeeRate decimal.Decimal // percent, e.g. 8 for 8%
	CapBase      CapBase
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaxBand - one progressive personal income tax bracket
type TaxBand struct {
	ID        string
	Level     int
	MinIncome decimal.Decimal
	MaxIncome *decimal.Decimal // nil = unbounded
	Rate      decimal.Decimal  // percent
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b TaxBand) Span() interval.Range {
	return interval.Range{Min: b.MinIncome, Max: b.MaxIncome}
}

// Settings is the typed view of the parameter table, resolved once per run.
type Settings struct {
	PersonalDeduction       decimal.Decimal
	DependentDeduction      decimal.Decimal
	FlatTaxThreshold        decimal.Decimal
	GovernmentBaseSalary    decimal.Decimal
	RegionMinimumWage       decimal.Decimal
	TrainedWorkerMultiplier decimal.Decimal
}

// CapReference returns the parameter an insurance cap is derived from.
func (s Settings) CapReference(base CapBase) decimal.Decimal {
	switch base {
	case CapBaseGovernment:
		return s.GovernmentBaseSalary
	case CapBaseRegionMinimumWage:
		return s.RegionMinimumWage
	default:
		return decimal.Zero
	}
}

// DefaultInsuranceBase is region minimum wage × trained-worker multiplier.
func (s Settings) DefaultInsuranceBase() decimal.Decimal {
	return s.RegionMinimumWage.Mul(s.TrainedWorkerMultiplier)
}

// Snapshot is the read-only rule set handed to the calculators.
type Snapshot struct {
	Settings       Settings
	InsuranceRates []InsuranceRate
	TaxBands       []TaxBand
}
