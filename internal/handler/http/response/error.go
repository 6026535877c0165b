package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrMissingConfiguration):
		UnprocessableEntity(w, "MISSING_CONFIGURATION", err.Error())
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPayTermsNotFound):
		NotFound(w, "Pay terms not found")
	case errors.Is(err, payroll.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found for this period")
	case errors.Is(err, payroll.ErrPayslipAlreadyPaid):
		Conflict(w, "Payslip already paid")
	case errors.Is(err, payroll.ErrCannotDeletePaidRecord):
		Conflict(w, "Cannot delete paid payslip")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrInvalidClassification):
		BadRequest(w, err.Error(), nil)

	// Commission domain errors
	case errors.Is(err, commission.ErrTierNotFound):
		NotFound(w, "Commission tier not found")
	case errors.Is(err, commission.ErrRecordNotFound):
		NotFound(w, "Commission record not found")

	// Rule domain errors
	case errors.Is(err, rule.ErrUnknownRuleParameter), errors.Is(err, rule.ErrInvalidRuleParameter):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, rule.ErrTaxBandsNotUnbounded):
		UnprocessableEntity(w, "INVALID_TAX_BANDS", err.Error())
	case errors.Is(err, rule.ErrInvalidCapBase):
		BadRequest(w, err.Error(), nil)

	// Interval errors shared by tiers and bands
	case errors.Is(err, interval.ErrOverlapping):
		Conflict(w, err.Error())
	case errors.Is(err, interval.ErrEmptyRange), errors.Is(err, interval.ErrNegativeMin):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
