package service

import (
	"context"
	"fmt"
	"sync"

	"cardpilot/internal/models"
	"cardpilot/pkg/config"

	"go.uber.org/zap"
)

// CategorizationService assigns an AI-chosen category to every line
// item of a transaction and writes the resolved ids back upstream.
type CategorizationService struct {
	api        CardAPI
	classifier Classifier
	cfg        *config.KlutchConfig
	logger     *zap.Logger
}

func NewCategorizationService(api CardAPI, classifier Classifier, cfg *config.KlutchConfig, logger *zap.Logger) *CategorizationService {
	return &CategorizationService{
		api:        api,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run processes one TransactionItemCreated delivery. Item-level
// failures (classification or write-back) are isolated and logged; the
// returned error covers only flow-level failures.
func (s *CategorizationService) Run(ctx context.Context, transactionID string) error {
	token, err := s.api.Authenticate(ctx, s.cfg.ClientID, s.cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	// A missing category list degrades to unconstrained classification
	// rather than aborting; resolution will then almost surely skip.
	categories, err := s.api.TransactionCategories(ctx, token)
	if err != nil {
		s.logger.Warn("failed to fetch categories, classifying unconstrained", zap.Error(err))
		categories = nil
	}
	names := make([]string, 0, len(categories))
	idByName := make(map[string]string, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
		idByName[cat.Name] = cat.ID
	}

	tx, err := s.api.Transaction(ctx, token, transactionID)
	if err != nil {
		return err
	}

	items := tx.Items

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(item *models.Item) {
			defer wg.Done()
			name := s.classifier.Classify(ctx, item.Description, names)
			if name == "" {
				return
			}
			// Name resolution is exact and case-sensitive; an unknown
			// name leaves the id empty and the item is skipped below.
			item.AICategory = &models.AICategory{Name: name, ID: idByName[name]}
		}(&items[i])
	}
	wg.Wait()

	var updated, skipped, failed int
	for i := range items {
		item := &items[i]
		if item.AICategory == nil || item.AICategory.ID == "" {
			skipped++
			s.logger.Warn("skipping item, no valid category assigned",
				zap.String("item_id", item.ID),
				zap.String("description", item.Description),
			)
			continue
		}
		if err := s.api.ChangeItemCategory(ctx, token, transactionID, item.ID, item.AICategory.ID); err != nil {
			failed++
			s.logger.Error("failed to update item category",
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		updated++
		s.logger.Info("updated item category",
			zap.String("item_id", item.ID),
			zap.String("category", item.AICategory.Name),
			zap.String("category_id", item.AICategory.ID),
		)
	}

	s.logger.Info("categorization finished",
		zap.String("transaction_id", transactionID),
		zap.Int("updated", updated),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}
