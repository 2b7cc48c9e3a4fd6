package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardpilot/internal/api"
	"cardpilot/internal/api/handlers"
	"cardpilot/internal/jobs"
	"cardpilot/internal/klutch"
	"cardpilot/internal/service"
	"cardpilot/pkg/config"
	"cardpilot/pkg/logger"

	"go.uber.org/zap"
)

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
	appLogger.Info("Starting cardpilot webhook service")

	client := klutch.NewClient(cfg.Klutch.Endpoint, appLogger)
	classifier := service.NewOpenAIClassifier(&cfg.OpenAI, appLogger)

	categorization := service.NewCategorizationService(client, classifier, &cfg.Klutch, appLogger)
	cooldown := service.NewCooldownService(client, &cfg.Klutch, &cfg.Cooldown, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := jobs.NewQueue(cfg.Queue.Size, cfg.Queue.Workers, appLogger)
	queue.Start(ctx, func(ctx context.Context, job *jobs.CooldownJob) error {
		return cooldown.Handle(ctx, job.TransactionID)
	})

	// Install the monitored night-window rule. The webhook service is
	// still useful if this fails (the rule may already exist).
	if err := cooldown.EnsureRule(ctx); err != nil {
		appLogger.Error("Failed to install night-window rule", zap.Error(err))
	}

	webhookHandler := handlers.NewWebhookHandler(categorization, queue, appLogger)
	app := api.SetupRouter(webhookHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		appLogger.Error("Queue drain error", zap.Error(err))
	}
}
