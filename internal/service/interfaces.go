package service

import (
	"context"

	"cardpilot/internal/klutch"
	"cardpilot/internal/models"
)

// CardAPI is the slice of the Klutch client the services depend on.
// *klutch.Client satisfies it; tests substitute mocks.
type CardAPI interface {
	Authenticate(ctx context.Context, clientID, secretKey string) (string, error)
	TransactionCategories(ctx context.Context, token string) ([]models.Category, error)
	Transaction(ctx context.Context, token, id string) (*models.Transaction, error)
	ChangeItemCategory(ctx context.Context, token, transactionID, itemID, categoryID string) error
	GroupTransactions(ctx context.Context, token string, filter klutch.TransactionFilter, groupBy, operation string) ([]models.SpendGroup, error)
	SumTransactions(ctx context.Context, token string, filter klutch.TransactionFilter) (float64, error)
	CreateTransactionRule(ctx context.Context, token, name, displayName string, cardIDs []string, spec any) (*models.Rule, error)
	DisableRule(ctx context.Context, token, name string, durationSeconds int) error
}

// Classifier picks a category name for a free-text description. An
// empty result means classification failed or produced nothing usable;
// it never aborts the caller.
type Classifier interface {
	Classify(ctx context.Context, description string, categories []string) string
}
