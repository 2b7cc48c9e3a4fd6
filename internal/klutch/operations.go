package klutch

import (
	"context"
	"errors"
	"fmt"

	"cardpilot/internal/models"
)

// TransactionFilter narrows grouping and sum queries. Dates are RFC3339.
type TransactionFilter struct {
	TransactionStatus []models.TransactionStatus `json:"transactionStatus,omitempty"`
	TransactionTypes  []models.TransactionType   `json:"transactionTypes,omitempty"`
	StartDate         string                     `json:"startDate,omitempty"`
	EndDate           string                     `json:"endDate,omitempty"`
}

const createSessionTokenMutation = `mutation($clientId:String,$secretKey:String){
  createSessionToken(clientId:$clientId, secretKey:$secretKey)
}`

// Authenticate exchanges the credential pair for a short-lived bearer
// token. Tokens are never cached; every flow calls this again.
func (c *Client) Authenticate(ctx context.Context, clientID, secretKey string) (string, error) {
	var data struct {
		CreateSessionToken string `json:"createSessionToken"`
	}
	err := c.Execute(ctx, createSessionTokenMutation, map[string]any{
		"clientId":  clientID,
		"secretKey": secretKey,
	}, "", &data)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	if data.CreateSessionToken == "" {
		return "", &AuthError{Err: errors.New("upstream returned no token")}
	}
	return data.CreateSessionToken, nil
}

const transactionCategoriesQuery = `query {
  transactionCategories {
    id
    name
    mccs
  }
}`

func (c *Client) TransactionCategories(ctx context.Context, token string) ([]models.Category, error) {
	var data struct {
		TransactionCategories []models.Category `json:"transactionCategories"`
	}
	if err := c.Execute(ctx, transactionCategoriesQuery, nil, token, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return data.TransactionCategories, nil
}

const transactionQuery = `query($id: String!) {
  transaction(id: $id) {
    id
    amount
    transactionStatus
    declineReason
    cardPresent
    items {
      id
      category {
        id
        name
      }
      description
      price
      quantity
    }
  }
}`

func (c *Client) Transaction(ctx context.Context, token, id string) (*models.Transaction, error) {
	var data struct {
		Transaction *models.Transaction `json:"transaction"`
	}
	if err := c.Execute(ctx, transactionQuery, map[string]any{"id": id}, token, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	if data.Transaction == nil {
		return nil, fmt.Errorf("transaction %s not found", id)
	}
	return data.Transaction, nil
}

const changeItemCategoryMutation = `mutation($transactionId: String!, $itemId: String!, $categoryId: String!) {
  transaction(id: $transactionId) {
    item(id: $itemId) {
      change(categoryId: $categoryId) {
        category {
          id
        }
      }
    }
  }
}`

func (c *Client) ChangeItemCategory(ctx context.Context, token, transactionID, itemID, categoryID string) error {
	vars := map[string]any{
		"transactionId": transactionID,
		"itemId":        itemID,
		"categoryId":    categoryID,
	}
	if err := c.Execute(ctx, changeItemCategoryMutation, vars, token, nil); err != nil {
		return fmt.Errorf("failed to change category of item %s: %w", itemID, err)
	}
	return nil
}

const groupTransactionsQuery = `query($filter: TransactionFilter, $groupByProperty: TransactionGroupByProperty, $operation: GroupByOperation) {
  groupTransactions(filter: $filter, groupByProperty: $groupByProperty, operation: $operation) {
    key
    value
  }
}`

func (c *Client) GroupTransactions(ctx context.Context, token string, filter TransactionFilter, groupBy, operation string) ([]models.SpendGroup, error) {
	var data struct {
		GroupTransactions []models.SpendGroup `json:"groupTransactions"`
	}
	vars := map[string]any{
		"filter":          filter,
		"groupByProperty": groupBy,
		"operation":       operation,
	}
	if err := c.Execute(ctx, groupTransactionsQuery, vars, token, &data); err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	return data.GroupTransactions, nil
}

const sumTransactionsQuery = `query($filter: TransactionFilter) {
  sumTransactions(filter: $filter)
}`

func (c *Client) SumTransactions(ctx context.Context, token string, filter TransactionFilter) (float64, error) {
	var data struct {
		SumTransactions float64 `json:"sumTransactions"`
	}
	if err := c.Execute(ctx, sumTransactionsQuery, map[string]any{"filter": filter}, token, &data); err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return data.SumTransactions, nil
}

const createTransactionRuleMutation = `mutation($name: String, $displayName: String, $cardIds: [String], $spec: TransactionRuleSpecInput) {
  createTransactionRule(name: $name, displayName: $displayName, cardIds: $cardIds, spec: $spec) {
    id
    name
  }
}`

// CreateTransactionRule installs a rule. An empty cardIDs slice scopes
// the rule to all cards. Creation is not idempotent upstream.
func (c *Client) CreateTransactionRule(ctx context.Context, token, name, displayName string, cardIDs []string, spec any) (*models.Rule, error) {
	var data struct {
		CreateTransactionRule *models.Rule `json:"createTransactionRule"`
	}
	vars := map[string]any{
		"name":        name,
		"displayName": displayName,
		"cardIds":     cardIDs,
		"spec":        spec,
	}
	if err := c.Execute(ctx, createTransactionRuleMutation, vars, token, &data); err != nil {
		return nil, fmt.Errorf("failed to create rule %s: %w", name, err)
	}
	return data.CreateTransactionRule, nil
}

const disableRuleMutation = `mutation($name: String, $duration: Int) {
  transactionRule(name: $name) {
    disableFor(durationInSeconds: $duration) {
      id
    }
  }
}`

// DisableRule suspends a named rule's enforcement for the given number
// of seconds, starting now.
func (c *Client) DisableRule(ctx context.Context, token, name string, durationSeconds int) error {
	vars := map[string]any{
		"name":     name,
		"duration": durationSeconds,
	}
	if err := c.Execute(ctx, disableRuleMutation, vars, token, nil); err != nil {
		return fmt.Errorf("failed to disable rule %s: %w", name, err)
	}
	return nil
}
