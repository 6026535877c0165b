package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// NonOfficialTaxRate is the flat withholding rate, in percent, for non-official staff.
	NonOfficialTaxRate = decimal.NewFromInt(10)
)

// PayslipInput is everything the calculator needs besides the rule snapshot.
type PayslipInput struct {
	Terms            payroll.PayTerms
	StandardWorkDays int
	ActualWorkDays   decimal.Decimal
	Adjustments      []payroll.Adjustment
}

// Figures holds unrounded payslip amounts.
type Figures struct {
	StandardWorkDays   int
	ActualWorkDays     decimal.Decimal
	BaseSalary         decimal.Decimal
	SalaryByAttendance decimal.Decimal
	TotalBonus         decimal.Decimal
	TotalPenalty       decimal.Decimal
	GrossSalary        decimal.Decimal
	InsuranceDeduction decimal.Decimal
	FamilyDeduction    decimal.Decimal
	AssessableIncome   decimal.Decimal
	TaxAmount          decimal.Decimal
	NetSalary          decimal.Decimal
}

// Rounded returns the figures rounded to 2 decimal places for storage.
func (f Figures) Rounded() Figures {
	r := f
	r.SalaryByAttendance = f.SalaryByAttendance.Round(2)
	r.TotalBonus = f.TotalBonus.Round(2)
	r.TotalPenalty = f.TotalPenalty.Round(2)
	r.GrossSalary = f.GrossSalary.Round(2)
	r.InsuranceDeduction = f.InsuranceDeduction.Round(2)
	r.FamilyDeduction = f.FamilyDeduction.Round(2)
	r.AssessableIncome = f.AssessableIncome.Round(2)
	r.TaxAmount = f.TaxAmount.Round(2)
	r.NetSalary = f.NetSalary.Round(2)
	return r
}

// Calculate runs the monthly payslip computation. It does no rounding.
func Calculate(in PayslipInput, snap rule.Snapshot) (Figures, error) {
	if in.StandardWorkDays <= 0 {
		return Figures{}, fmt.Errorf("%w: period has no standard work days", payroll.ErrInvalidPeriod)
	}
	if !in.Terms.Classification.Valid() {
		return Figures{}, fmt.Errorf("%w: %q", payroll.ErrInvalidClassification, in.Terms.Classification)
	}

	f := Figures{
		StandardWorkDays: in.StandardWorkDays,
		ActualWorkDays:   in.ActualWorkDays,
		BaseSalary:       in.Terms.BaseSalary,
	}

	f.SalaryByAttendance = in.Terms.BaseSalary.
		Mul(in.ActualWorkDays).
		Div(decimal.NewFromInt(int64(in.StandardWorkDays)))

	for _, adj := range in.Adjustments {
		switch adj.Kind {
		case payroll.AdjustmentKindBonus:
			f.TotalBonus = f.TotalBonus.Add(adj.Amount)
		case payroll.AdjustmentKindPenalty:
			f.TotalPenalty = f.TotalPenalty.Add(adj.Amount)
		}
	}

	f.GrossSalary = f.SalaryByAttendance.Add(f.TotalBonus).Sub(f.TotalPenalty)

	switch in.Terms.Classification {
	case payroll.ClassificationOfficial:
		f.InsuranceDeduction = insuranceDeduction(in.Terms.InsuranceBaseSalary, snap)
		f.FamilyDeduction = snap.Settings.PersonalDeduction.
			Add(snap.Settings.DependentDeduction.Mul(decimal.NewFromInt(int64(in.Terms.Dependents))))

		assessable := f.GrossSalary.Sub(f.InsuranceDeduction).Sub(f.FamilyDeduction)
		if assessable.IsPositive() {
			f.AssessableIncome = assessable
			f.TaxAmount = progressiveTax(assessable, snap.TaxBands)
		}

	case payroll.ClassificationNonOfficial:
		if !in.Terms.TaxExemptCommitment && f.GrossSalary.GreaterThanOrEqual(snap.Settings.FlatTaxThreshold) {
			f.AssessableIncome = f.GrossSalary
			f.TaxAmount = f.GrossSalary.Mul(NonOfficialTaxRate).Div(hundred)
		}
	}

	f.NetSalary = f.GrossSalary.Sub(f.InsuranceDeduction).Sub(f.TaxAmount)
	return f, nil
}

// insuranceDeduction sums each statutory rate over the base capped at reference × 20.
// A zero cap leaves the base uncapped.
func insuranceDeduction(base decimal.Decimal, snap rule.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, rate := range snap.InsuranceRates {
		capped := base
		limit := snap.Settings.CapReference(rate.CapBase).Mul(decimal.NewFromInt(rule.InsuranceCapMultiplier))
		if limit.IsPositive() && capped.GreaterThan(limit) {
			capped = limit
		}
		total = total.Add(capped.Mul(rate.EmployeeRate).Div(hundred))
	}
	return total
}

// progressiveTax taxes each band's own slice of the income at that band's rate.
func progressiveTax(income decimal.Decimal, bands []rule.TaxBand) decimal.Decimal {
	total := decimal.Zero
	for _, band := range interval.Sorted(bands) {
		portion := band.Span().Portion(income)
		if portion.IsZero() {
			continue
		}
		total = total.Add(portion.Mul(band.Rate).Div(hundred))
	}
	return total
}
