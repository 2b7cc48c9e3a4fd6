package service

import (
	"context"
	"fmt"
	"strings"

	"cardpilot/internal/models"
	"cardpilot/pkg/config"

	"go.uber.org/zap"
)

// Night window and display name of the monitored card-not-present rule.
const (
	cooldownRuleDisplayName = "Swipe Twice"
	nightWindowStart        = "20:00:00"
	nightWindowEnd          = "07:00:00"
)

// CooldownService suspends the monitored rule for a fixed duration when
// a transaction is declined because of it, giving the cardholder a
// window to retry.
type CooldownService struct {
	api      CardAPI
	klutch   *config.KlutchConfig
	cooldown *config.CooldownConfig
	logger   *zap.Logger
}

func NewCooldownService(api CardAPI, klutchCfg *config.KlutchConfig, cooldownCfg *config.CooldownConfig, logger *zap.Logger) *CooldownService {
	return &CooldownService{
		api:      api,
		klutch:   klutchCfg,
		cooldown: cooldownCfg,
		logger:   logger,
	}
}

// Handle processes one TransactionCreated delivery: if the transaction
// was declined by the monitored rule, disable that rule for the
// configured duration. Anything else is a no-op.
func (s *CooldownService) Handle(ctx context.Context, transactionID string) error {
	token, err := s.api.Authenticate(ctx, s.klutch.ClientID, s.klutch.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	tx, err := s.api.Transaction(ctx, token, transactionID)
	if err != nil {
		return err
	}

	if tx.TransactionStatus != models.StatusDeclined || !strings.Contains(tx.DeclineReason, s.cooldown.Marker) {
		s.logger.Debug("no cooldown action for transaction",
			zap.String("transaction_id", transactionID),
			zap.String("status", string(tx.TransactionStatus)),
		)
		return nil
	}

	seconds := int(s.cooldown.Duration.Seconds())
	if err := s.api.DisableRule(ctx, token, s.cooldown.RuleName, seconds); err != nil {
		return err
	}

	s.logger.Info("rule temporarily disabled",
		zap.String("rule", s.cooldown.RuleName),
		zap.String("transaction_id", transactionID),
		zap.Duration("duration", s.cooldown.Duration),
	)
	return nil
}

// EnsureRule installs the monitored rule itself: card-not-present
// transactions are blocked during the night window on the configured
// card. Called once at startup.
func (s *CooldownService) EnsureRule(ctx context.Context) error {
	token, err := s.api.Authenticate(ctx, s.klutch.ClientID, s.klutch.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	spec := models.TimeOfDayRuleSpec{
		SpecType:  models.SpecTimeOfDay,
		StartTime: nightWindowStart,
		EndTime:   nightWindowEnd,
		Filters: []models.RuleFilter{
			{Field: "CARD_PRESENT", Operator: "EQUALS", Value: `"CARD_NOT_PRESENT"`},
		},
	}

	rule, err := s.api.CreateTransactionRule(ctx, token, s.cooldown.RuleName, cooldownRuleDisplayName, []string{s.klutch.CardID}, spec)
	if err != nil {
		return err
	}

	ruleID := ""
	if rule != nil {
		ruleID = rule.ID
	}
	s.logger.Info("night-window rule installed",
		zap.String("rule", s.cooldown.RuleName),
		zap.String("rule_id", ruleID),
		zap.String("card_id", s.klutch.CardID),
	)
	return nil
}
