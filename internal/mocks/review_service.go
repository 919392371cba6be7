package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/service/review"
)

// MockReviewService implements review.Service for handler tests.
// Each method delegates to its Fn field when set and otherwise returns the
// zero value with the matching Err field.
type MockReviewService struct {
	GetReviewDeckFn     func(ctx context.Context, userID string, limit int) (*review.Deck, error)
	UpdateWordReviewFn  func(ctx context.Context, userID string, itemID uuid.UUID, d domain.Difficulty) (*domain.ReviewItem, error)
	GetUserVocabStatsFn func(ctx context.Context, userID string) (domain.VocabStats, error)
	AddWordFn           func(ctx context.Context, userID, word, language string) (*domain.ReviewItem, bool, error)

	Deck       *review.Deck
	DeckErr    error
	Item       *domain.ReviewItem
	UpdateErr  error
	Stats      domain.VocabStats
	StatsErr   error
	Created    bool
	AddWordErr error
}

var _ review.Service = (*MockReviewService)(nil)

// GetReviewDeck implements review.Service.
func (m *MockReviewService) GetReviewDeck(ctx context.Context, userID string, limit int) (*review.Deck, error) {
	if m.GetReviewDeckFn != nil {
		return m.GetReviewDeckFn(ctx, userID, limit)
	}
	if m.DeckErr != nil {
		return nil, m.DeckErr
	}
	if m.Deck == nil {
		return &review.Deck{}, nil
	}
	return m.Deck, nil
}

// UpdateWordReview implements review.Service.
func (m *MockReviewService) UpdateWordReview(
	ctx context.Context,
	userID string,
	itemID uuid.UUID,
	d domain.Difficulty,
) (*domain.ReviewItem, error) {
	if m.UpdateWordReviewFn != nil {
		return m.UpdateWordReviewFn(ctx, userID, itemID, d)
	}
	return m.Item, m.UpdateErr
}

// GetUserVocabStats implements review.Service.
func (m *MockReviewService) GetUserVocabStats(ctx context.Context, userID string) (domain.VocabStats, error) {
	if m.GetUserVocabStatsFn != nil {
		return m.GetUserVocabStatsFn(ctx, userID)
	}
	return m.Stats, m.StatsErr
}

// AddWord implements review.Service.
func (m *MockReviewService) AddWord(
	ctx context.Context,
	userID, word, language string,
) (*domain.ReviewItem, bool, error) {
	if m.AddWordFn != nil {
		return m.AddWordFn(ctx, userID, word, language)
	}
	return m.Item, m.Created, m.AddWordErr
}
