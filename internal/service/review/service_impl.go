package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/clock"
	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/domain/srs"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/redact"
	"github.com/wordloom/wordloom-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*reviewService)(nil)

// reviewService implements the Service interface.
type reviewService struct {
	items      store.ReviewItemStore
	txRunner   store.TxRunner
	srsService srs.Service
	content    content.Provider
	clock      clock.Clock
	cfg        Config
	logger     *slog.Logger
}

// NewService creates a new review Service.
func NewService(
	items store.ReviewItemStore,
	txRunner store.TxRunner,
	srsService srs.Service,
	provider content.Provider,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) Service {
	if items == nil {
		panic("review item store cannot be nil")
	}
	if txRunner == nil {
		panic("txRunner cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if provider == nil {
		panic("content provider cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewService{
		items:      items,
		txRunner:   txRunner,
		srsService: srsService,
		content:    provider,
		clock:      clk,
		cfg:        cfg.withDefaults(),
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

// GetReviewDeck implements Service.GetReviewDeck.
func (s *reviewService) GetReviewDeck(ctx context.Context, userID string, limit int) (*Deck, error) {
	const op = "get_review_deck"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(op, "user ID cannot be empty", ErrInvalidInput, nil)
	}
	if limit <= 0 {
		return &Deck{Entries: []DeckEntry{}}, nil
	}
	if limit > s.cfg.MaxDeckLimit {
		return nil, newServiceError(op,
			fmt.Sprintf("limit must not exceed %d", s.cfg.MaxDeckLimit), ErrInvalidInput, nil)
	}

	now := s.clock.Now()

	items, err := s.items.FindDue(ctx, userID, now, limit)
	if err != nil {
		log.Error("failed to find due review items",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID))
		return nil, classify(op, "failed to find due items", err)
	}

	totalDue, err := s.items.CountDue(ctx, userID, now)
	if err != nil {
		log.Error("failed to count due review items",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID))
		return nil, classify(op, "failed to count due items", err)
	}

	remaining := totalDue - len(items)
	if remaining < 0 {
		remaining = 0
	}

	entries := s.resolveContent(ctx, log, items)
	if err := ctx.Err(); err != nil {
		return nil, newServiceError(op, "deck assembly interrupted", nil, err)
	}

	log.Debug("review deck assembled",
		slog.String("user_id", userID),
		slog.Int("limit", limit),
		slog.Int("selected", len(items)),
		slog.Int("returned", len(entries)),
		slog.Int("remaining_due", remaining))

	return &Deck{Entries: entries, RemainingDue: remaining}, nil
}

// resolveContent fetches content for every item, keeping the input order.
// Items without content are dropped.
func (s *reviewService) resolveContent(
	ctx context.Context,
	log *slog.Logger,
	items []*domain.ReviewItem,
) []DeckEntry {
	contents := make([]*domain.WordContent, len(items))
	sem := make(chan struct{}, s.cfg.ContentFetchConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item *domain.ReviewItem) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ContentFetchTimeout)
			defer cancel()

			c, err := s.content.GetWordContent(fetchCtx, item.Word, item.Language)
			if err == nil && c == nil {
				err = content.ErrContentNotFound
			}
			if err != nil {
				log.Warn("skipping review item without content",
					slog.String("item_id", item.ID.String()),
					slog.String("word", item.Word),
					slog.String("language", item.Language),
					slog.String("error", redact.Error(err)))
				return
			}
			contents[i] = c
		}(i, item)
	}
	wg.Wait()

	entries := make([]DeckEntry, 0, len(items))
	for i, item := range items {
		if contents[i] != nil {
			entries = append(entries, DeckEntry{Item: item, Content: contents[i]})
		}
	}
	return entries
}

// UpdateWordReview implements Service.UpdateWordReview.
func (s *reviewService) UpdateWordReview(
	ctx context.Context,
	userID string,
	itemID uuid.UUID,
	difficulty domain.Difficulty,
) (*domain.ReviewItem, error) {
	const op = "update_word_review"
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review",
		slog.String("user_id", userID),
		slog.String("item_id", itemID.String()),
		slog.String("difficulty", difficulty.String()))

	if !difficulty.Valid() {
		log.Warn("invalid review difficulty",
			slog.String("user_id", userID),
			slog.String("item_id", itemID.String()),
			slog.Int("difficulty", int(difficulty)))
		return nil, newServiceError(op, "invalid difficulty", ErrInvalidInput, domain.ErrInvalidDifficulty)
	}
	if itemID == uuid.Nil {
		return nil, newServiceError(op, "item ID cannot be empty", ErrInvalidInput, domain.ErrInvalidID)
	}

	var updated *domain.ReviewItem
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		items := s.items.WithTx(tx)

		item, err := items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		// Another user's item is reported exactly like a missing one.
		if item.UserID != userID {
			log.Warn("review item not owned by user",
				slog.String("user_id", userID),
				slog.String("item_id", itemID.String()))
			return store.ErrReviewItemNotFound
		}

		next, err := s.srsService.CalculateNextReview(item, difficulty, s.clock.Now())
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}

		if err := items.Update(ctx, next); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		svcErr := classify(op, "failed to record review", err)
		if errors.Is(svcErr, ErrReviewItemNotFound) || errors.Is(svcErr, ErrConflict) {
			log.Warn("review not recorded",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", userID),
				slog.String("item_id", itemID.String()))
		} else {
			log.Error("failed to record review",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", userID),
				slog.String("item_id", itemID.String()))
		}
		return nil, svcErr
	}

	log.Info("review recorded",
		slog.String("user_id", userID),
		slog.String("item_id", itemID.String()),
		slog.String("difficulty", difficulty.String()),
		slog.Int("level", updated.Level),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Time("next_review_at", updated.NextReviewAt))

	return updated, nil
}

// GetUserVocabStats implements Service.GetUserVocabStats.
func (s *reviewService) GetUserVocabStats(ctx context.Context, userID string) (domain.VocabStats, error) {
	const op = "get_vocab_stats"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(userID) == "" {
		return domain.VocabStats{}, newServiceError(op, "user ID cannot be empty", ErrInvalidInput, nil)
	}

	stats, err := s.items.CountByUser(ctx, userID, s.clock.Now(), s.srsService.MasteryLevel())
	if err != nil {
		log.Error("failed to aggregate vocabulary stats",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID))
		return domain.VocabStats{}, classify(op, "failed to aggregate stats", err)
	}

	return stats, nil
}

// AddWord implements Service.AddWord.
func (s *reviewService) AddWord(
	ctx context.Context,
	userID, word, language string,
) (*domain.ReviewItem, bool, error) {
	const op = "add_word"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(userID) == "" {
		return nil, false, newServiceError(op, "user ID cannot be empty", ErrInvalidInput, nil)
	}
	if strings.TrimSpace(language) == "" {
		language = s.cfg.DefaultLanguage
	}

	item, err := s.srsService.NewItem(userID, word, language, s.clock.Now())
	if err != nil {
		return nil, false, classify(op, "invalid word", err)
	}

	existing, err := s.items.GetByUserAndWord(ctx, userID, item.Word)
	if err == nil {
		return existing, false, nil
	}
	if !store.IsNotFoundError(err) {
		log.Error("failed to look up word",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID))
		return nil, false, classify(op, "failed to look up word", err)
	}

	if err := s.items.Create(ctx, item); err != nil {
		if store.IsDuplicateError(err) {
			// Lost a race with a concurrent add of the same word.
			existing, getErr := s.items.GetByUserAndWord(ctx, userID, item.Word)
			if getErr == nil {
				return existing, false, nil
			}
			err = getErr
		}
		log.Error("failed to add word",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID),
			slog.String("word", item.Word))
		return nil, false, classify(op, "failed to add word", err)
	}

	log.Info("word added",
		slog.String("user_id", userID),
		slog.String("item_id", item.ID.String()),
		slog.String("word", item.Word))

	return item, true, nil
}
