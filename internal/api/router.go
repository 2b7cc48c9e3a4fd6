package api

import (
	"cardpilot/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(webhookHandler *handlers.WebhookHandler, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			appLogger.Error("request failed", zap.Int("status", code), zap.Error(err))
			return c.Status(code).SendString("Server error")
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Post("/webhook", webhookHandler.Handle)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}
