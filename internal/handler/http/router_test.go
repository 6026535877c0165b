package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/rule"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// Unset methods fall through to the nil embedded interface and panic; Recoverer turns that into 500.
type stubPayrollService struct {
	payroll.PayrollService
	computeFn func(ctx context.Context, req payroll.ComputePayslipRequest) (payroll.PayslipResponse, error)
	batchFn   func(ctx context.Context, req payroll.ComputePayslipBatchRequest) (payroll.PayslipBatchResult, error)
	listFn    func(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error)
	termsFn   func(ctx context.Context, req payroll.UpsertPayTermsRequest) (payroll.PayTermsResponse, error)
}

func (s *stubPayrollService) ComputePayslip(ctx context.Context, req payroll.ComputePayslipRequest) (payroll.PayslipResponse, error) {
	return s.computeFn(ctx, req)
}

func (s *stubPayrollService) ComputePayslipBatch(ctx context.Context, req payroll.ComputePayslipBatchRequest) (payroll.PayslipBatchResult, error) {
	return s.batchFn(ctx, req)
}

func (s *stubPayrollService) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
	return s.listFn(ctx, filter)
}

func (s *stubPayrollService) UpsertPayTerms(ctx context.Context, req payroll.UpsertPayTermsRequest) (payroll.PayTermsResponse, error) {
	return s.termsFn(ctx, req)
}

type stubCommissionService struct {
	commission.CommissionService
	createTierFn func(ctx context.Context, req commission.CreateTierRequest) (commission.TierResponse, error)
}

func (s *stubCommissionService) CreateTier(ctx context.Context, req commission.CreateTierRequest) (commission.TierResponse, error) {
	return s.createTierFn(ctx, req)
}

type stubRuleService struct {
	rule.RuleService
	replaceBandsFn func(ctx context.Context, req rule.ReplaceTaxBandsRequest) ([]rule.TaxBandResponse, error)
}

func (s *stubRuleService) ReplaceTaxBands(ctx context.Context, req rule.ReplaceTaxBandsRequest) ([]rule.TaxBandResponse, error) {
	return s.replaceBandsFn(ctx, req)
}

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	payroll    *stubPayrollService
	commission *stubCommissionService
	rules      *stubRuleService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		jwt:        jwt.NewJWTService(handlerTestSecret, "1h"),
		payroll:    &stubPayrollService{},
		commission: &stubCommissionService{},
		rules:      &stubRuleService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, LogLevel: slog.LevelInfo},
		logger,
		s.jwt,
		NewPayrollHandler(s.payroll),
		NewCommissionHandler(s.commission),
		NewRuleHandler(s.rules),
	)
	return s
}

func (s *testServer) do(t *testing.T, role user.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := s.jwt.GenerateAccessToken("user-1", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "", http.MethodGet, "/api/v1/payroll/payslips", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Permissions(t *testing.T) {
	tests := []struct {
		name     string
		role     user.Role
		method   string
		path     string
		wantCode int
	}{
		{"manager cannot compute payslips", user.RoleManager, http.MethodPost, "/api/v1/payroll/payslips/compute", http.StatusForbidden},
		{"manager cannot finalize", user.RoleManager, http.MethodPost, "/api/v1/payroll/payslips/finalize", http.StatusForbidden},
		{"accountant cannot manage tiers", user.RoleAccountant, http.MethodPost, "/api/v1/commissions/tiers", http.StatusForbidden},
		{"accountant cannot replace tax bands", user.RoleAccountant, http.MethodPut, "/api/v1/rules/tax-bands", http.StatusForbidden},
		{"unknown role", user.Role("intern"), http.MethodGet, "/api/v1/payroll/payslips", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, tt.role, tt.method, tt.path, "{}")
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestPayrollHandler_ComputePayslip(t *testing.T) {
	s := newTestServer(t)
	s.payroll.computeFn = func(ctx context.Context, req payroll.ComputePayslipRequest) (payroll.PayslipResponse, error) {
		assert.Equal(t, "emp-1", req.EmployeeID)
		assert.Equal(t, 4, req.PeriodMonth)
		return payroll.PayslipResponse{
			EmployeeID:  req.EmployeeID,
			PeriodMonth: req.PeriodMonth,
			PeriodYear:  req.PeriodYear,
			NetSalary:   decimal.RequireFromString("17520227.27"),
			Status:      string(payroll.PayslipStatusDraft),
		}, nil
	}

	w := s.do(t, user.RoleAccountant, http.MethodPost, "/api/v1/payroll/payslips/compute",
		payroll.ComputePayslipRequest{EmployeeID: "emp-1", PeriodMonth: 4, PeriodYear: 2024})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.True(t, body.Success)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "17520227.27", data["net_salary"])
}

func TestPayrollHandler_ComputePayslipErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		wantCode int
	}{
		{"malformed body", "{not json", nil, http.StatusBadRequest},
		{"unknown field", `{"employee_id":"emp-1","bogus":1}`, nil, http.StatusBadRequest},
		{"missing configuration", payroll.ComputePayslipRequest{EmployeeID: "emp-1", PeriodMonth: 4, PeriodYear: 2024},
			fmt.Errorf("%w: %w", payroll.ErrMissingConfiguration, payroll.ErrPayTermsNotFound), http.StatusUnprocessableEntity},
		{"already paid", payroll.ComputePayslipRequest{EmployeeID: "emp-1", PeriodMonth: 4, PeriodYear: 2024},
			payroll.ErrPayslipAlreadyPaid, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.payroll.computeFn = func(ctx context.Context, req payroll.ComputePayslipRequest) (payroll.PayslipResponse, error) {
				return payroll.PayslipResponse{}, tt.err
			}

			w := s.do(t, user.RoleOwner, http.MethodPost, "/api/v1/payroll/payslips/compute", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestPayrollHandler_BatchReportsFailuresWithOK(t *testing.T) {
	s := newTestServer(t)
	s.payroll.batchFn = func(ctx context.Context, req payroll.ComputePayslipBatchRequest) (payroll.PayslipBatchResult, error) {
		return payroll.PayslipBatchResult{
			PeriodMonth: req.PeriodMonth,
			PeriodYear:  req.PeriodYear,
			Summary:     payroll.BatchSummary{Total: 2, Succeeded: 1, Failed: 1},
			Succeeded:   []payroll.PayslipResponse{{EmployeeID: "emp-1"}},
			Failed:      []payroll.BatchFailure{{EmployeeID: "emp-2", Reason: "missing payroll configuration"}},
		}, nil
	}

	w := s.do(t, user.RoleAccountant, http.MethodPost, "/api/v1/payroll/payslips/batch",
		payroll.ComputePayslipBatchRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data payroll.PayslipBatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Summary.Failed)
	assert.Equal(t, "emp-2", body.Data.Failed[0].EmployeeID)
}

func TestPayrollHandler_ListPayslipsParsesQuery(t *testing.T) {
	s := newTestServer(t)
	s.payroll.listFn = func(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
		require.NotNil(t, filter.PeriodMonth)
		assert.Equal(t, 4, *filter.PeriodMonth)
		require.NotNil(t, filter.Status)
		assert.Equal(t, "paid", *filter.Status)
		assert.Equal(t, 2, filter.Page)
		assert.Nil(t, filter.PeriodYear)
		return payroll.ListPayslipResponse{TotalCount: 45, Page: 2, Limit: 20}, nil
	}

	w := s.do(t, user.RoleManager, http.MethodGet, "/api/v1/payroll/payslips?period_month=4&period_year=abc&status=paid&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 3, body.Meta.TotalPages)
	assert.Equal(t, int64(45), body.Meta.TotalItems)
}

func TestPayrollHandler_UpsertPayTermsUsesPathEmployee(t *testing.T) {
	s := newTestServer(t)
	s.payroll.termsFn = func(ctx context.Context, req payroll.UpsertPayTermsRequest) (payroll.PayTermsResponse, error) {
		assert.Equal(t, "emp-7", req.EmployeeID)
		return payroll.PayTermsResponse{EmployeeID: req.EmployeeID}, nil
	}

	w := s.do(t, user.RoleAccountant, http.MethodPut, "/api/v1/payroll/pay-terms/emp-7",
		`{"base_salary":"20000000","classification":"official","dependents":1}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPayrollHandler_SummaryRequiresPeriod(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, user.RoleManager, http.MethodGet, "/api/v1/payroll/summary?period_month=4", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommissionHandler_CreateTierOverlap(t *testing.T) {
	s := newTestServer(t)
	s.commission.createTierFn = func(ctx context.Context, req commission.CreateTierRequest) (commission.TierResponse, error) {
		return commission.TierResponse{}, fmt.Errorf("%w: [50, 150) intersects level 1 [0, 100)", commission.ErrOverlappingTier)
	}

	w := s.do(t, user.RoleOwner, http.MethodPost, "/api/v1/commissions/tiers",
		`{"level":2,"min_revenue":"50","max_revenue":"150","percentage":"5"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "CONFLICT", body.Error.Code)
}

func TestRuleHandler_ReplaceTaxBands(t *testing.T) {
	s := newTestServer(t)
	s.rules.replaceBandsFn = func(ctx context.Context, req rule.ReplaceTaxBandsRequest) ([]rule.TaxBandResponse, error) {
		require.Len(t, req.Bands, 2)
		assert.Nil(t, req.Bands[1].MaxIncome)
		return []rule.TaxBandResponse{{Level: 1}, {Level: 2}}, nil
	}

	w := s.do(t, user.RoleOwner, http.MethodPut, "/api/v1/rules/tax-bands",
		`{"bands":[{"min_income":"0","max_income":"5000000","rate":"5"},{"min_income":"5000000","rate":"10"}]}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPayrollHandler_RejectsMalformedPayslipID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, user.RoleOwner, http.MethodDelete, "/api/v1/payroll/payslips/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
