package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/workcalendar"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	commissionService "github.com/cmlabs-hris/payroll-engine/internal/service/commission"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	ruleService "github.com/cmlabs-hris/payroll-engine/internal/service/rule"
	"github.com/go-chi/httplog/v3"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		logger.Error("Error connecting to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	ruleRepo := postgresql.NewRuleRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	commissionRepo := postgresql.NewCommissionRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	ruleSvc := ruleService.NewRuleService(transactor, ruleRepo, logger)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		ruleSvc,
		workcalendar.Calendar{RestDays: cfg.Payroll.RestDays},
		payrollService.Options{AllowPaidRecompute: cfg.Payroll.AllowPaidRecompute},
		logger,
	)
	commissionSvc := commissionService.NewCommissionService(transactor, commissionRepo, logger)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.CORSOrigins,
			LogLevel:       cfg.App.SlogLevel(),
		},
		logger,
		JWTService,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewCommissionHandler(commissionSvc),
		appHTTP.NewRuleHandler(ruleSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", slog.Any("error", err))
	} else {
		logger.Info("Server exited gracefully")
	}
}
