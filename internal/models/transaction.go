package models

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusSettled  TransactionStatus = "SETTLED"
	StatusDeclined TransactionStatus = "DECLINED"
)

type TransactionType string

const (
	TypeCharge  TransactionType = "CHARGE"
	TypePayment TransactionType = "PAYMENT"
)

type Transaction struct {
	ID                string            `json:"id"`
	Amount            float64           `json:"amount"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
	DeclineReason     string            `json:"declineReason"`
	CardPresent       string            `json:"cardPresent"`
	Items             []Item            `json:"items"`
}

type Item struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Category    *Category `json:"category"`

	// AICategory is assigned locally during categorization, never decoded
	// from upstream.
	AICategory *AICategory `json:"-"`
}

// AICategory is the model's answer for an item. ID is empty when the
// answer matches no known category name.
type AICategory struct {
	ID   string
	Name string
}

// SpendGroup is one bucket of an upstream grouping query.
type SpendGroup struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// BudgetAttribution is a category's proportional share of last period's
// payments. Computed locally and immediately submitted as a rule amount.
type BudgetAttribution struct {
	CategoryID   string
	CategoryName string
	Value        float64
}
