package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CommissionHandler interface {
	// Computation
	ComputeCommission(w http.ResponseWriter, r *http.Request)
	ComputeCommissionBatch(w http.ResponseWriter, r *http.Request)

	// Records
	GetRecord(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)

	// Tiers
	ListTiers(w http.ResponseWriter, r *http.Request)
	CreateTier(w http.ResponseWriter, r *http.Request)
	UpdateTier(w http.ResponseWriter, r *http.Request)
	DeactivateTier(w http.ResponseWriter, r *http.Request)
}

type commissionHandlerImpl struct {
	commissionService commission.CommissionService
}

func NewCommissionHandler(commissionService commission.CommissionService) CommissionHandler {
	return &commissionHandlerImpl{commissionService: commissionService}
}

// ========== COMPUTATION ==========

func (h *commissionHandlerImpl) ComputeCommission(w http.ResponseWriter, r *http.Request) {
	var req commission.ComputeCommissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.commissionService.ComputeCommission(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Commission computed", result)
}

func (h *commissionHandlerImpl) ComputeCommissionBatch(w http.ResponseWriter, r *http.Request) {
	var req commission.ComputeCommissionBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.commissionService.ComputeCommissionBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== RECORDS ==========

func (h *commissionHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	month, okMonth := queryInt(r, "period_month")
	year, okYear := queryInt(r, "period_year")
	if !okMonth || !okYear {
		response.BadRequest(w, "period_month and period_year are required", nil)
		return
	}

	result, err := h.commissionService.GetRecord(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *commissionHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := commission.RecordFilter{
		Page:        1,
		Limit:       20,
		PeriodMonth: queryIntPtr(r, "period_month"),
		PeriodYear:  queryIntPtr(r, "period_year"),
		EmployeeID:  queryStringPtr(r, "employee_id"),
	}
	if page, ok := queryInt(r, "page"); ok && page > 0 {
		filter.Page = page
	}
	if limit, ok := queryInt(r, "limit"); ok && limit > 0 {
		filter.Limit = limit
	}

	result, err := h.commissionService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, pageMeta(result.Page, result.Limit, result.TotalCount))
}

// ========== TIERS ==========

func (h *commissionHandlerImpl) ListTiers(w http.ResponseWriter, r *http.Request) {
	filter := commission.TierFilter{
		KPIID:      queryStringPtr(r, "kpi_id"),
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	}

	result, err := h.commissionService.ListTiers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *commissionHandlerImpl) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req commission.CreateTierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.commissionService.CreateTier(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Commission tier created", result)
}

func (h *commissionHandlerImpl) UpdateTier(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "Tier ID")
	if !ok {
		return
	}

	var req commission.UpdateTierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.commissionService.UpdateTier(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *commissionHandlerImpl) DeactivateTier(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "Tier ID")
	if !ok {
		return
	}

	if err := h.commissionService.DeactivateTier(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Commission tier deactivated", nil)
}
