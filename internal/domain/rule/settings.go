package rule

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KeyPersonalDeduction       = "personal_deduction"
	KeyDependentDeduction      = "dependent_deduction"
	KeyFlatTaxThreshold        = "flat_tax_threshold"
	KeyGovernmentBaseSalary    = "government_base_salary"
	KeyRegionMinimumWage       = "region_minimum_wage"
	KeyTrainedWorkerMultiplier = "trained_worker_multiplier"
)

// ParameterSpec describes a known key and the value used when it is missing or malformed.
type ParameterSpec struct {
	Key      string
	Required bool
	Default  decimal.Decimal
	apply    func(*Settings, decimal.Decimal)
}

var parameterSpecs = []ParameterSpec{
	{
		Key: KeyPersonalDeduction, Required: true, Default: decimal.NewFromInt(11_000_000),
		apply: func(s *Settings, v decimal.Decimal) { s.PersonalDeduction = v },
	},
	{
		Key: KeyDependentDeduction, Required: true, Default: decimal.NewFromInt(4_400_000),
		apply: func(s *Settings, v decimal.Decimal) { s.DependentDeduction = v },
	},
	{
		Key: KeyGovernmentBaseSalary, Required: true, Default: decimal.NewFromInt(2_340_000),
		apply: func(s *Settings, v decimal.Decimal) { s.GovernmentBaseSalary = v },
	},
	{
		Key: KeyRegionMinimumWage, Required: true, Default: decimal.NewFromInt(4_960_000),
		apply: func(s *Settings, v decimal.Decimal) { s.RegionMinimumWage = v },
	},
	{
		Key: KeyFlatTaxThreshold, Default: decimal.NewFromInt(2_000_000),
		apply: func(s *Settings, v decimal.Decimal) { s.FlatTaxThreshold = v },
	},
	{
		Key: KeyTrainedWorkerMultiplier, Default: decimal.RequireFromString("1.07"),
		apply: func(s *Settings, v decimal.Decimal) { s.TrainedWorkerMultiplier = v },
	},
}

// ParameterSpecs lists the keys the engine reads.
func ParameterSpecs() []ParameterSpec {
	out := make([]ParameterSpec, len(parameterSpecs))
	copy(out, parameterSpecs)
	return out
}

// IsKnownKey reports whether the engine reads the given key.
func IsKnownKey(key string) bool {
	for _, spec := range parameterSpecs {
		if spec.Key == key {
			return true
		}
	}
	return false
}

// ParseValue parses a stored parameter value.
func ParseValue(key, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q", ErrInvalidRuleParameter, key, raw)
	}
	return v, nil
}

// ResolveSettings builds Settings from the raw parameter rows. Missing or unparsable
// values fall back to the built-in default; required keys are logged at error level,
// optional ones at warn. It never fails.
func ResolveSettings(params []Parameter, logger *slog.Logger) Settings {
	if logger == nil {
		logger = slog.Default()
	}

	byKey := make(map[string]string, len(params))
	for _, p := range params {
		byKey[p.Key] = p.Value
	}

	var s Settings
	for _, spec := range parameterSpecs {
		raw, ok := byKey[spec.Key]
		if !ok {
			logMissing(logger, spec, ErrMissingRuleParameter)
			spec.apply(&s, spec.Default)
			continue
		}

		v, err := ParseValue(spec.Key, raw)
		if err != nil {
			logMissing(logger, spec, err)
			spec.apply(&s, spec.Default)
			continue
		}
		spec.apply(&s, v)
	}
	return s
}

func logMissing(logger *slog.Logger, spec ParameterSpec, err error) {
	attrs := []any{"key", spec.Key, "default", spec.Default.String(), "error", err}
	if spec.Required {
		logger.Error("Required rule parameter unusable, falling back to default", attrs...)
		return
	}
	logger.Warn("Rule parameter unusable, falling back to default", attrs...)
}
