package commission

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Outcome is the unrounded result of a commission calculation.
type Outcome struct {
	AchievementPct   decimal.Decimal
	Status           commission.AchievementStatus
	IsAchieved       bool
	TierLevel        *int
	CommissionPct    decimal.Decimal
	CommissionAmount decimal.Decimal
	Note             *string
}

// Calculate derives achievement against target and, from 100% upward, the commission
// of the active tier whose revenue range holds the actual amount.
func Calculate(target, actual decimal.Decimal, tiers []commission.Tier) Outcome {
	var out Outcome
	if target.IsPositive() {
		out.AchievementPct = actual.Div(target).Mul(hundred)
	}

	switch {
	case out.AchievementPct.LessThan(commission.AchievedThreshold):
		out.Status = commission.StatusNotAchieved
		return out
	case out.AchievementPct.LessThan(commission.CommissionThreshold):
		out.Status = commission.StatusAchieved
		out.IsAchieved = true
		return out
	}

	out.IsAchieved = true
	tier, ok := interval.Resolve(activeOnly(tiers), actual)
	if !ok {
		out.Status = commission.StatusAchieved
		note := fmt.Sprintf("%s: %s", commission.ErrNoMatchingCommissionTier, actual.StringFixed(2))
		out.Note = &note
		return out
	}

	level := tier.Level
	out.Status = commission.StatusCommissionEarned
	out.TierLevel = &level
	out.CommissionPct = tier.Percentage
	out.CommissionAmount = actual.Mul(tier.Percentage).Div(hundred)
	return out
}

func activeOnly(tiers []commission.Tier) []commission.Tier {
	out := make([]commission.Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}
