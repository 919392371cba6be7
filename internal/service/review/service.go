package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/domain"
)

// DeckEntry is one word of a review session: its scheduling state and the
// content shown to the learner.
type DeckEntry struct {
	Item    *domain.ReviewItem
	Content *domain.WordContent
}

// Deck is an ordered review session.
type Deck struct {
	// Entries are ordered by next review time, oldest first, ties broken by item ID.
	Entries []DeckEntry

	// RemainingDue counts the items that are due but were not selected
	// because of the limit.
	RemainingDue int
}

// Service provides the review operations of the application.
type Service interface {
	// GetReviewDeck assembles up to limit due words for the user.
	//
	// A limit of zero or less yields an empty deck without reading the store.
	// A limit above the configured maximum is rejected with ErrInvalidInput.
	// Words whose content cannot be resolved are left out of the deck and logged;
	// they never fail the whole request.
	GetReviewDeck(ctx context.Context, userID string, limit int) (*Deck, error)

	// UpdateWordReview applies a review outcome to one of the user's items and
	// returns the item as persisted.
	//
	// Returns:
	//   - ErrInvalidInput for a difficulty outside the closed set
	//   - ErrReviewItemNotFound if the item does not exist or belongs to another user
	//   - ErrConflict if the item was changed concurrently; the caller may retry
	//   - ErrStoreUnavailable if the store cannot be reached; the caller may retry
	UpdateWordReview(
		ctx context.Context,
		userID string,
		itemID uuid.UUID,
		difficulty domain.Difficulty,
	) (*domain.ReviewItem, error)

	// GetUserVocabStats summarizes the user's collection at the current time.
	GetUserVocabStats(ctx context.Context, userID string) (domain.VocabStats, error)

	// AddWord enrolls a word for the user. If the user already has the word the
	// existing item is returned with created=false.
	AddWord(
		ctx context.Context,
		userID, word, language string,
	) (item *domain.ReviewItem, created bool, err error)
}

// Config holds the tunables of the review service.
type Config struct {
	// DefaultDeckLimit is the deck size used by callers that do not specify one.
	DefaultDeckLimit int

	// MaxDeckLimit is the largest deck a caller may request.
	MaxDeckLimit int

	// ContentFetchTimeout bounds each content lookup during deck assembly.
	ContentFetchTimeout time.Duration

	// ContentFetchConcurrency is how many content lookups run at once.
	ContentFetchConcurrency int

	// DefaultLanguage is used when a word is added without a language.
	DefaultLanguage string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultDeckLimit:        20,
		MaxDeckLimit:            100,
		ContentFetchTimeout:     2 * time.Second,
		ContentFetchConcurrency: 4,
		DefaultLanguage:         domain.DefaultLanguage,
	}
}

// ConfigFromSettings derives the service configuration from application settings.
func ConfigFromSettings(cfg *config.Config) Config {
	return Config{
		DefaultDeckLimit:    cfg.SRS.DefaultDeckLimit,
		MaxDeckLimit:        cfg.SRS.MaxDeckLimit,
		ContentFetchTimeout: time.Duration(cfg.Content.FetchTimeoutMS) * time.Millisecond,
		DefaultLanguage:     cfg.Content.DefaultLanguage,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultDeckLimit <= 0 {
		c.DefaultDeckLimit = d.DefaultDeckLimit
	}
	if c.MaxDeckLimit <= 0 {
		c.MaxDeckLimit = d.MaxDeckLimit
	}
	if c.ContentFetchTimeout <= 0 {
		c.ContentFetchTimeout = d.ContentFetchTimeout
	}
	if c.ContentFetchConcurrency <= 0 {
		c.ContentFetchConcurrency = d.ContentFetchConcurrency
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = d.DefaultLanguage
	}
	return c
}
