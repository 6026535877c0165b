package commission

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/shopspring/decimal"
)

// Achievement thresholds, in percent of target
var (
	AchievedThreshold   = decimal.NewFromInt(80)
	CommissionThreshold = decimal.NewFromInt(100)
)

// AchievementStatus enum
type AchievementStatus string

const (
	StatusNotAchieved      AchievementStatus = "not_achieved"
	StatusAchieved         AchievementStatus = "achieved"
	StatusCommissionEarned AchievementStatus = "commission_earned"
)

// Tier - one revenue band of a commission schedule. KPIID nil is the default schedule.
type Tier struct {
	ID         string
	KPIID      *string
	Level      int
	MinRevenue decimal.Decimal
	MaxRevenue *decimal.Decimal // nil = unbounded
	Percentage decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t Tier) Span() interval.Range {
	return interval.Range{Min: t.MinRevenue, Max: t.MaxRevenue}
}

// Assignment - revenue target given to an employee for a period
type Assignment struct {
	ID           string
	EmployeeID   string
	KPIID        *string
	PeriodMonth  int
	PeriodYear   int
	TargetAmount decimal.Decimal
}

// Record - computed commission, one per employee and period
type Record struct {
	ID               string
	EmployeeID       string
	KPIID            *string
	PeriodMonth      int
	PeriodYear       int
	TargetAmount     decimal.Decimal
	ActualAmount     decimal.Decimal
	AchievementPct   decimal.Decimal
	IsAchieved       bool
	Status           AchievementStatus
	TierLevel        *int
	CommissionPct    decimal.Decimal
	CommissionAmount decimal.Decimal
	Note             *string
	ComputedBy       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
