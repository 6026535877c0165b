package payroll

import "errors"

var (
	ErrMissingConfiguration   = errors.New("missing payroll configuration")
	ErrPayTermsNotFound       = errors.New("pay terms not found")
	ErrAttendanceNotFound     = errors.New("attendance not found for this period")
	ErrPayslipNotFound        = errors.New("payslip not found")
	ErrPayslipAlreadyPaid     = errors.New("payslip already paid, cannot modify")
	ErrCannotDeletePaidRecord = errors.New("cannot delete paid payslip")
	ErrInvalidPeriod          = errors.New("invalid payroll period")
	ErrInvalidClassification  = errors.New("invalid employment classification")
)
