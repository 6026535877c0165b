package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// ==========================================
// RULE SET DOCUMENT
// ==========================================

// RuleSet is the YAML document describing a complete rule configuration.
// Numbers are quoted strings so they survive YAML float parsing exactly.
type RuleSet struct {
	Parameters      map[string]string   `yaml:"parameters"`
	InsuranceRates  []InsuranceRateSeed `yaml:"insurance_rates"`
	TaxBands        []TaxBandSeed       `yaml:"tax_bands"`
	CommissionTiers []TierSeed          `yaml:"commission_tiers"`
}

type InsuranceRateSeed struct {
	Name         string `yaml:"name"`
	EmployeeRate string `yaml:"employee_rate"`
	CapBase      string `yaml:"cap_base"`
}

type TaxBandSeed struct {
	MinIncome string  `yaml:"min_income"`
	MaxIncome *string `yaml:"max_income"`
	Rate      string  `yaml:"rate"`
}

type TierSeed struct {
	KPIID      *string `yaml:"kpi_id"`
	Level      int     `yaml:"level"`
	MinRevenue string  `yaml:"min_revenue"`
	MaxRevenue *string `yaml:"max_revenue"`
	Percentage string  `yaml:"percentage"`
}

// DefaultRuleSet returns the embedded defaults.
func DefaultRuleSet() (RuleSet, error) {
	return ParseRuleSet(defaultRules)
}

// LoadRuleSet reads a rule set from path, or the embedded defaults when path is empty.
func LoadRuleSet(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRuleSet()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rule set: %w", err)
	}
	return ParseRuleSet(raw)
}

func ParseRuleSet(raw []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rule set: %w", err)
	}
	return rs, nil
}

// ==========================================
// CONVERSION TO SERVICE REQUESTS
// ==========================================

// ParametersRequest lists parameters in key order.
func (rs RuleSet) ParametersRequest() rule.UpsertParametersRequest {
	keys := make([]string, 0, len(rs.Parameters))
	for k := range rs.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	req := rule.UpsertParametersRequest{}
	for _, k := range keys {
		req.Parameters = append(req.Parameters, rule.ParameterInput{Key: k, Value: rs.Parameters[k]})
	}
	return req
}

func (rs RuleSet) InsuranceRatesRequest() (rule.ReplaceInsuranceRatesRequest, error) {
	req := rule.ReplaceInsuranceRatesRequest{Rates: []rule.InsuranceRateInput{}}
	for _, r := range rs.InsuranceRates {
		rate, err := parseDecimal("insurance_rates."+r.Name+".employee_rate", r.EmployeeRate)
		if err != nil {
			return rule.ReplaceInsuranceRatesRequest{}, err
		}
		req.Rates = append(req.Rates, rule.InsuranceRateInput{Name: r.Name, EmployeeRate: rate, CapBase: r.CapBase})
	}
	return req, nil
}

func (rs RuleSet) TaxBandsRequest() (rule.ReplaceTaxBandsRequest, error) {
	req := rule.ReplaceTaxBandsRequest{}
	for i, b := range rs.TaxBands {
		field := fmt.Sprintf("tax_bands[%d]", i)
		lo, err := parseDecimal(field+".min_income", b.MinIncome)
		if err != nil {
			return rule.ReplaceTaxBandsRequest{}, err
		}
		hi, err := parseOptionalDecimal(field+".max_income", b.MaxIncome)
		if err != nil {
			return rule.ReplaceTaxBandsRequest{}, err
		}
		rate, err := parseDecimal(field+".rate", b.Rate)
		if err != nil {
			return rule.ReplaceTaxBandsRequest{}, err
		}
		req.Bands = append(req.Bands, rule.TaxBandInput{MinIncome: lo, MaxIncome: hi, Rate: rate})
	}
	return req, nil
}

func (rs RuleSet) TierRequests() ([]commission.CreateTierRequest, error) {
	reqs := make([]commission.CreateTierRequest, 0, len(rs.CommissionTiers))
	for i, t := range rs.CommissionTiers {
		field := fmt.Sprintf("commission_tiers[%d]", i)
		lo, err := parseDecimal(field+".min_revenue", t.MinRevenue)
		if err != nil {
			return nil, err
		}
		hi, err := parseOptionalDecimal(field+".max_revenue", t.MaxRevenue)
		if err != nil {
			return nil, err
		}
		pct, err := parseDecimal(field+".percentage", t.Percentage)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, commission.CreateTierRequest{
			KPIID:      t.KPIID,
			Level:      t.Level,
			MinRevenue: lo,
			MaxRevenue: hi,
			Percentage: pct,
		})
	}
	return reqs, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return v, nil
}

func parseOptionalDecimal(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parseDecimal(field, *raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
