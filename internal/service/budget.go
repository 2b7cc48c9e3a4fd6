package service

import (
	"context"
	"fmt"
	"time"

	"cardpilot/internal/klutch"
	"cardpilot/internal/models"
	"cardpilot/pkg/config"

	"go.uber.org/zap"
)

// budgetHeadroom gives each derived budget 10% slack over the
// attributed value before its rule starts blocking.
const budgetHeadroom = 1.10

// BudgetService derives a monthly spend budget per category from last
// period's payments and installs one accumulating rule per category.
type BudgetService struct {
	api    CardAPI
	cfg    *config.KlutchConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewBudgetService(api CardAPI, cfg *config.KlutchConfig, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		api:    api,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Attribute splits totalPayments across categories in proportion to
// their share of spend. A zero spend total yields all-zero attributions
// instead of dividing by zero. Categories absent from spend get zero.
// No rounding is applied.
func Attribute(categories []models.Category, spend []models.SpendGroup, totalPayments float64) []models.BudgetAttribution {
	var total float64
	for _, s := range spend {
		total += s.Value
	}

	shares := make(map[string]float64, len(spend))
	if total != 0 {
		for _, s := range spend {
			shares[s.Key] = s.Value / total
		}
	}

	attributions := make([]models.BudgetAttribution, 0, len(categories))
	for _, cat := range categories {
		attributions = append(attributions, models.BudgetAttribution{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Value:        shares[cat.ID] * totalPayments,
		})
	}
	return attributions
}

// Run executes one batch attribution pass. Rule-creation failures are
// isolated per category; if any category failed, Run reports it so the
// batch process exits non-zero for its monitor.
func (s *BudgetService) Run(ctx context.Context) error {
	token, err := s.api.Authenticate(ctx, s.cfg.ClientID, s.cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	categories, err := s.api.TransactionCategories(ctx, token)
	if err != nil {
		return err
	}

	spend, err := s.spendThisMonth(ctx, token)
	if err != nil {
		return err
	}

	payments, err := s.paymentsLastMonth(ctx, token)
	if err != nil {
		return err
	}

	attributions := Attribute(categories, spend, payments)

	mccsByID := make(map[string][]string, len(categories))
	for _, cat := range categories {
		mccsByID[cat.ID] = cat.MCCs
	}

	var failed int
	for _, budget := range attributions {
		spec := models.AccumulatingRuleSpec{
			SpecType: models.SpecAccumulatingOverPeriod,
			Period:   models.PeriodMonth,
			Amount:   budget.Value * budgetHeadroom,
			Filters: []models.RuleFilter{
				{Field: "MCC", Operator: "CONTAINS", Value: mccsByID[budget.CategoryID]},
			},
		}
		name := "diff_budget_" + budget.CategoryID
		displayName := "Budget for " + budget.CategoryID

		// Empty card list scopes the rule to all cards.
		if _, err := s.api.CreateTransactionRule(ctx, token, name, displayName, []string{}, spec); err != nil {
			failed++
			s.logger.Error("failed to create budget rule",
				zap.String("category_id", budget.CategoryID),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("created budget rule",
			zap.String("category_id", budget.CategoryID),
			zap.String("category", budget.CategoryName),
			zap.Float64("amount", spec.Amount),
		)
	}

	if failed > 0 {
		return fmt.Errorf("failed to create %d of %d budget rules", failed, len(attributions))
	}
	return nil
}

// spendThisMonth sums pending and settled charges per category from the
// start of the current calendar month until now.
func (s *BudgetService) spendThisMonth(ctx context.Context, token string) ([]models.SpendGroup, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	filter := klutch.TransactionFilter{
		TransactionStatus: []models.TransactionStatus{models.StatusPending, models.StatusSettled},
		TransactionTypes:  []models.TransactionType{models.TypeCharge},
		StartDate:         start.Format(time.RFC3339),
		EndDate:           now.Format(time.RFC3339),
	}
	return s.api.GroupTransactions(ctx, token, filter, "CATEGORY", "SUM")
}

// paymentsLastMonth sums settled payments over the prior calendar
// month. Payments are recorded negative upstream, so the sign flips.
func (s *BudgetService) paymentsLastMonth(ctx context.Context, token string) (float64, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	filter := klutch.TransactionFilter{
		TransactionStatus: []models.TransactionStatus{models.StatusSettled},
		TransactionTypes:  []models.TransactionType{models.TypePayment},
		StartDate:         prevStart.Format(time.RFC3339),
		EndDate:           monthStart.Format(time.RFC3339),
	}
	sum, err := s.api.SumTransactions(ctx, token, filter)
	if err != nil {
		return 0, err
	}
	return -sum, nil
}
