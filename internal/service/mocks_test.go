package service

import (
	"context"
	"sync"

	"cardpilot/internal/klutch"
	"cardpilot/internal/models"
)

type changeCall struct {
	TransactionID string
	ItemID        string
	CategoryID    string
}

type ruleCall struct {
	Name        string
	DisplayName string
	CardIDs     []string
	Spec        any
}

type disableCall struct {
	Name    string
	Seconds int
}

// mockCardAPI implements CardAPI with canned responses and records
// every mutation call.
type mockCardAPI struct {
	token          string
	authErr        error
	categories     []models.Category
	categoriesErr  error
	transaction    *models.Transaction
	transactionErr error
	groups         []models.SpendGroup
	groupsErr      error
	sum            float64
	sumErr         error
	changeErr      func(itemID string) error
	ruleErr        func(name string) error

	authCalls    int
	changeCalls  []changeCall
	ruleCalls    []ruleCall
	disableCalls []disableCall
	groupFilters []klutch.TransactionFilter
	sumFilters   []klutch.TransactionFilter
}

func (m *mockCardAPI) Authenticate(ctx context.Context, clientID, secretKey string) (string, error) {
	m.authCalls++
	if m.authErr != nil {
		return "", m.authErr
	}
	if m.token == "" {
		return "test-token", nil
	}
	return m.token, nil
}

func (m *mockCardAPI) TransactionCategories(ctx context.Context, token string) ([]models.Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return m.categories, nil
}

func (m *mockCardAPI) Transaction(ctx context.Context, token, id string) (*models.Transaction, error) {
	if m.transactionErr != nil {
		return nil, m.transactionErr
	}
	return m.transaction, nil
}

func (m *mockCardAPI) ChangeItemCategory(ctx context.Context, token, transactionID, itemID, categoryID string) error {
	if m.changeErr != nil {
		if err := m.changeErr(itemID); err != nil {
			return err
		}
	}
	m.changeCalls = append(m.changeCalls, changeCall{transactionID, itemID, categoryID})
	return nil
}

func (m *mockCardAPI) GroupTransactions(ctx context.Context, token string, filter klutch.TransactionFilter, groupBy, operation string) ([]models.SpendGroup, error) {
	m.groupFilters = append(m.groupFilters, filter)
	if m.groupsErr != nil {
		return nil, m.groupsErr
	}
	return m.groups, nil
}

func (m *mockCardAPI) SumTransactions(ctx context.Context, token string, filter klutch.TransactionFilter) (float64, error) {
	m.sumFilters = append(m.sumFilters, filter)
	if m.sumErr != nil {
		return 0, m.sumErr
	}
	return m.sum, nil
}

func (m *mockCardAPI) CreateTransactionRule(ctx context.Context, token, name, displayName string, cardIDs []string, spec any) (*models.Rule, error) {
	if m.ruleErr != nil {
		if err := m.ruleErr(name); err != nil {
			return nil, err
		}
	}
	m.ruleCalls = append(m.ruleCalls, ruleCall{name, displayName, cardIDs, spec})
	return &models.Rule{ID: "rule-" + name, Name: name}, nil
}

func (m *mockCardAPI) DisableRule(ctx context.Context, token, name string, durationSeconds int) error {
	m.disableCalls = append(m.disableCalls, disableCall{name, durationSeconds})
	return nil
}

type classifyCall struct {
	Description string
	Categories  []string
}

// mockClassifier answers from a fixed description→name map. Safe for
// the pipeline's concurrent fan-out.
type mockClassifier struct {
	byDescription map[string]string

	mu    sync.Mutex
	calls []classifyCall
}

func (m *mockClassifier) Classify(ctx context.Context, description string, categories []string) string {
	m.mu.Lock()
	m.calls = append(m.calls, classifyCall{description, categories})
	m.mu.Unlock()
	return m.byDescription[description]
}
