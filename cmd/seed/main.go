package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/commission"
	"github.com/cmlabs-hris/payroll-engine/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	commissionService "github.com/cmlabs-hris/payroll-engine/internal/service/commission"
	ruleService "github.com/cmlabs-hris/payroll-engine/internal/service/rule"
)

func main() {
	rulesFile := flag.String("rules", "", "rule set YAML file (defaults to PAYROLL_RULE_SEED_FILE, then the embedded defaults)")
	skipTiers := flag.Bool("skip-tiers", false, "do not seed the default commission schedule")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), logger, *rulesFile, *skipTiers); err != nil {
		logger.Error("Seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Seeding finished")
}

func run(ctx context.Context, logger *slog.Logger, rulesFile string, skipTiers bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rulesFile == "" {
		rulesFile = cfg.Payroll.RuleSeedFile
	}

	rs, err := fixtures.LoadRuleSet(rulesFile)
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: 2, MinConns: 1})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := postgresql.ApplySchema(ctx, db); err != nil {
		return err
	}

	transactor := postgresql.NewTransactor(db)
	rules := ruleService.NewRuleService(transactor, postgresql.NewRuleRepository(db), logger)
	commissions := commissionService.NewCommissionService(transactor, postgresql.NewCommissionRepository(db), logger)

	params, err := rules.UpsertParameters(ctx, rs.ParametersRequest())
	if err != nil {
		return fmt.Errorf("seed parameters: %w", err)
	}
	logger.Info("Seeded rule parameters", slog.Int("count", len(params)))

	rateReq, err := rs.InsuranceRatesRequest()
	if err != nil {
		return err
	}
	rates, err := rules.ReplaceInsuranceRates(ctx, rateReq)
	if err != nil {
		return fmt.Errorf("seed insurance rates: %w", err)
	}
	logger.Info("Seeded insurance rates", slog.Int("count", len(rates)))

	bandReq, err := rs.TaxBandsRequest()
	if err != nil {
		return err
	}
	bands, err := rules.ReplaceTaxBands(ctx, bandReq)
	if err != nil {
		return fmt.Errorf("seed tax bands: %w", err)
	}
	logger.Info("Seeded tax bands", slog.Int("count", len(bands)))

	if skipTiers {
		return nil
	}
	return seedTiers(ctx, logger, commissions, rs)
}

// seedTiers creates the default schedule only when no tiers exist, so reruns never trip the overlap guard.
func seedTiers(ctx context.Context, logger *slog.Logger, svc commission.CommissionService, rs fixtures.RuleSet) error {
	existing, err := svc.ListTiers(ctx, commission.TierFilter{})
	if err != nil {
		return fmt.Errorf("list commission tiers: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Commission tiers already present, skipping", slog.Int("count", len(existing)))
		return nil
	}

	reqs, err := rs.TierRequests()
	if err != nil {
		return err
	}
	for _, req := range reqs {
		if _, err := svc.CreateTier(ctx, req); err != nil {
			return fmt.Errorf("seed commission tier level %d: %w", req.Level, err)
		}
	}
	logger.Info("Seeded commission tiers", slog.Int("count", len(reqs)))
	return nil
}
