package models

// Webhook event discriminators delivered in event._alloyCardType.
const (
	EventTransactionItemCreated = "com.alloycard.core.entities.transaction.TransactionItemCreatedEvent"
	EventTransactionCreated     = "com.alloycard.core.entities.transaction.TransactionCreatedEvent"
)

type WebhookPayload struct {
	Event WebhookEvent `json:"event"`
}

type WebhookEvent struct {
	AlloyCardType string      `json:"_alloyCardType"`
	Transaction   EventEntity `json:"transaction"`
}

type EventEntity struct {
	EntityID string `json:"entityID"`
}
