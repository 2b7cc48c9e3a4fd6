package main

import (
	"context"
	"fmt"
	"os"

	"cardpilot/internal/klutch"
	"cardpilot/internal/service"
	"cardpilot/pkg/config"
	"cardpilot/pkg/logger"

	"go.uber.org/zap"
)

// diffbudget is a one-shot batch job, meant to run on a monthly
// schedule: it splits last month's payments across categories in
// proportion to current spend and installs one budget rule each.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting differential budget run")

	client := klutch.NewClient(cfg.Klutch.Endpoint, appLogger)
	budget := service.NewBudgetService(client, &cfg.Klutch, appLogger)

	if err := budget.Run(context.Background()); err != nil {
		appLogger.Fatal("Budget attribution run failed", zap.Error(err))
	}

	appLogger.Info("Budget attribution run completed")
}
