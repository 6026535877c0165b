package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	payrollHandler PayrollHandler,
	commissionHandler CommissionHandler,
	ruleHandler RuleHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/pay-terms/{employeeId}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.GetPayTerms)
					r.With(middleware.RequirePermission(user.PermissionPayrollCompute)).Put("/", payrollHandler.UpsertPayTerms)
				})

				r.Route("/payslips", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionPayrollView))
						r.Get("/", payrollHandler.ListPayslips)
						r.Get("/{id}", payrollHandler.GetPayslip)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionPayrollCompute))
						r.Post("/compute", payrollHandler.ComputePayslip)
						r.Post("/batch", payrollHandler.ComputePayslipBatch)
						r.Delete("/{id}", payrollHandler.DeletePayslip)
					})

					r.With(middleware.RequirePermission(user.PermissionPayrollFinalize)).Post("/finalize", payrollHandler.FinalizePayslips)
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/summary", payrollHandler.GetPayslipSummary)
			})

			r.Route("/commissions", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCommissionView))
					r.Get("/", commissionHandler.ListRecords)
					r.Get("/employees/{employeeId}", commissionHandler.GetRecord)
					r.Get("/tiers", commissionHandler.ListTiers)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCommissionCompute))
					r.Post("/compute", commissionHandler.ComputeCommission)
					r.Post("/batch", commissionHandler.ComputeCommissionBatch)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCommissionTiers))
					r.Post("/tiers", commissionHandler.CreateTier)
					r.Put("/tiers/{id}", commissionHandler.UpdateTier)
					r.Delete("/tiers/{id}", commissionHandler.DeactivateTier)
				})
			})

			r.Route("/rules", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRulesView))
					r.Get("/parameters", ruleHandler.ListParameters)
					r.Get("/settings", ruleHandler.GetSettings)
					r.Get("/tax-bands", ruleHandler.ListTaxBands)
					r.Get("/insurance-rates", ruleHandler.ListInsuranceRates)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRulesManage))
					r.Put("/parameters", ruleHandler.UpsertParameters)
					r.Put("/tax-bands", ruleHandler.ReplaceTaxBands)
					r.Put("/insurance-rates", ruleHandler.ReplaceInsuranceRates)
				})
			})
		})
	})

	return r
}
