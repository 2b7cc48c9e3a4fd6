package handlers

import (
	"context"
	"encoding/json"

	"cardpilot/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategorizationRunner is the awaited pipeline behind item-creation
// events.
type CategorizationRunner interface {
	Run(ctx context.Context, transactionID string) error
}

// CooldownQueue accepts fire-and-forget work for transaction-creation
// events. Enqueue reports false when the queue cannot take the job.
type CooldownQueue interface {
	Enqueue(transactionID string) bool
}

// WebhookHandler validates inbound event deliveries and routes them by
// their discriminator. Unrecognized events are acknowledged with 200 so
// the event source never retries them.
type WebhookHandler struct {
	categorization CategorizationRunner
	cooldowns      CooldownQueue
	logger         *zap.Logger
}

func NewWebhookHandler(categorization CategorizationRunner, cooldowns CooldownQueue, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		categorization: categorization,
		cooldowns:      cooldowns,
		logger:         logger,
	}
}

func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	log := h.logger.With(zap.String("delivery_id", uuid.New().String()))

	var payload models.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		log.Error("failed to parse webhook body", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Server error")
	}

	eventType := payload.Event.AlloyCardType

	switch eventType {
	case models.EventTransactionItemCreated:
		transactionID := payload.Event.Transaction.EntityID
		if transactionID == "" {
			log.Error("webhook event missing transaction id", zap.String("event_type", eventType))
			return c.Status(fiber.StatusInternalServerError).SendString("Server error")
		}

		// Awaited: the response tells the event source whether
		// categorization succeeded.
		if err := h.categorization.Run(c.UserContext(), transactionID); err != nil {
			log.Error("failed to categorize transaction items",
				zap.String("transaction_id", transactionID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).SendString("Server error")
		}
		return c.SendString("ok")

	case models.EventTransactionCreated:
		transactionID := payload.Event.Transaction.EntityID
		if transactionID == "" {
			log.Error("webhook event missing transaction id", zap.String("event_type", eventType))
			return c.Status(fiber.StatusInternalServerError).SendString("Server error")
		}

		// Fire-and-forget: acknowledge immediately, even on overflow,
		// so the event source doesn't start a retry storm.
		if !h.cooldowns.Enqueue(transactionID) {
			log.Error("cooldown queue full, dropping event",
				zap.String("transaction_id", transactionID),
			)
		}
		return c.SendString("ok")

	default:
		log.Debug("ignoring event", zap.String("event_type", eventType))
		return c.SendString("ok")
	}
}
