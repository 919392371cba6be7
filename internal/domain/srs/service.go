package srs

import (
	"errors"
	"time"

	"github.com/wordloom/wordloom-api/internal/domain"
)

// Common errors
var (
	ErrNilItem           = errors.New("review item cannot be nil")
	ErrInvalidDifficulty = domain.ErrInvalidDifficulty
)

// Service defines the interface for scheduling algorithm operations
type Service interface {
	// CalculateNextReview computes the next scheduling state for a review.
	CalculateNextReview(
		item *domain.ReviewItem,
		difficulty domain.Difficulty,
		now time.Time,
	) (*domain.ReviewItem, error)

	// NewItem creates the initial scheduling state for a word a user adds.
	NewItem(userID, word, language string, now time.Time) (*domain.ReviewItem, error)

	// MasteryLevel returns the level at or above which an item counts as mastered.
	MasteryLevel() int
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	item *domain.ReviewItem,
	difficulty domain.Difficulty,
	now time.Time,
) (*domain.ReviewItem, error) {
	if item == nil {
		return nil, ErrNilItem
	}

	if !difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}

	return calculateNextState(item, difficulty, now, s.params), nil
}

// NewItem implements the Service interface
func (s *defaultService) NewItem(
	userID, word, language string,
	now time.Time,
) (*domain.ReviewItem, error) {
	return domain.NewReviewItem(userID, word, language, now, s.params.InitialReviewDelay)
}

// MasteryLevel implements the Service interface
func (s *defaultService) MasteryLevel() int {
	return s.params.MasteryLevel
}
