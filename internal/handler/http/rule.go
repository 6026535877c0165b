package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

type RuleHandler interface {
	ListParameters(w http.ResponseWriter, r *http.Request)
	UpsertParameters(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)

	ListTaxBands(w http.ResponseWriter, r *http.Request)
	ReplaceTaxBands(w http.ResponseWriter, r *http.Request)

	ListInsuranceRates(w http.ResponseWriter, r *http.Request)
	ReplaceInsuranceRates(w http.ResponseWriter, r *http.Request)
}

type ruleHandlerImpl struct {
	ruleService rule.RuleService
}

func NewRuleHandler(ruleService rule.RuleService) RuleHandler {
	return &ruleHandlerImpl{ruleService: ruleService}
}

func (h *ruleHandlerImpl) ListParameters(w http.ResponseWriter, r *http.Request) {
	result, err := h.ruleService.ListParameters(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) UpsertParameters(w http.ResponseWriter, r *http.Request) {
	var req rule.UpsertParametersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ruleService.UpsertParameters(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Rule parameters saved", result)
}

func (h *ruleHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.ruleService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) ListTaxBands(w http.ResponseWriter, r *http.Request) {
	result, err := h.ruleService.ListTaxBands(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) ReplaceTaxBands(w http.ResponseWriter, r *http.Request) {
	var req rule.ReplaceTaxBandsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ruleService.ReplaceTaxBands(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tax bands replaced", result)
}

func (h *ruleHandlerImpl) ListInsuranceRates(w http.ResponseWriter, r *http.Request) {
	result, err := h.ruleService.ListInsuranceRates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ruleHandlerImpl) ReplaceInsuranceRates(w http.ResponseWriter, r *http.Request) {
	var req rule.ReplaceInsuranceRatesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ruleService.ReplaceInsuranceRates(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Insurance rates replaced", result)
}
