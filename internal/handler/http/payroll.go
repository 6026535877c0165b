package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Pay terms
	GetPayTerms(w http.ResponseWriter, r *http.Request)
	UpsertPayTerms(w http.ResponseWriter, r *http.Request)

	// Computation
	ComputePayslip(w http.ResponseWriter, r *http.Request)
	ComputePayslipBatch(w http.ResponseWriter, r *http.Request)

	// Payslips
	GetPayslip(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	FinalizePayslips(w http.ResponseWriter, r *http.Request)
	DeletePayslip(w http.ResponseWriter, r *http.Request)

	// Summary
	GetPayslipSummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PAY TERMS ==========

func (h *payrollHandlerImpl) GetPayTerms(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.payrollService.GetPayTerms(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpsertPayTerms(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	var req payroll.UpsertPayTermsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.payrollService.UpsertPayTerms(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pay terms saved", result)
}

// ========== COMPUTATION ==========

func (h *payrollHandlerImpl) ComputePayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputePayslipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputePayslip(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip computed", result)
}

// ComputePayslipBatch answers 200 even when some employees fail; failures are listed in the body.
func (h *payrollHandlerImpl) ComputePayslipBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputePayslipBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputePayslipBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYSLIPS ==========

func (h *payrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "Payslip ID")
	if !ok {
		return
	}

	result, err := h.payrollService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	filter := payroll.PayslipFilter{
		Page:        1,
		Limit:       20,
		SortBy:      "employee_id",
		SortOrder:   "asc",
		PeriodMonth: queryIntPtr(r, "period_month"),
		PeriodYear:  queryIntPtr(r, "period_year"),
		Status:      queryStringPtr(r, "status"),
		EmployeeID:  queryStringPtr(r, "employee_id"),
	}

	if page, ok := queryInt(r, "page"); ok && page > 0 {
		filter.Page = page
	}
	if limit, ok := queryInt(r, "limit"); ok && limit > 0 {
		filter.Limit = limit
	}
	if sortBy := r.URL.Query().Get("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := r.URL.Query().Get("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	result, err := h.payrollService.ListPayslips(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, pageMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) FinalizePayslips(w http.ResponseWriter, r *http.Request) {
	var req payroll.FinalizePayslipsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	finalized, err := h.payrollService.FinalizePayslips(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslips finalized", map[string]int64{"finalized": finalized})
}

func (h *payrollHandlerImpl) DeletePayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "Payslip ID")
	if !ok {
		return
	}

	if err := h.payrollService.DeletePayslip(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip deleted successfully", nil)
}

// ========== SUMMARY ==========

func (h *payrollHandlerImpl) GetPayslipSummary(w http.ResponseWriter, r *http.Request) {
	month, okMonth := queryInt(r, "period_month")
	year, okYear := queryInt(r, "period_year")
	if !okMonth || !okYear {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	result, err := h.payrollService.GetPayslipSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func pageMeta(page, limit int, total int64) *response.Meta {
	meta := &response.Meta{Page: page, Limit: limit, TotalItems: total}
	if limit > 0 {
		meta.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return meta
}
