package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default scheduling state for a newly enrolled word.
const (
	DefaultEaseFactor   = 2.5
	DefaultIntervalDays = 1
	InitialLevel        = 1
	DefaultLanguage     = "en"
)

// ReviewItem holds one user's scheduling state for one vocabulary word.
// It is mutated only by the interval calculator in response to a review.
type ReviewItem struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	Word         string    `json:"word"`
	Language     string    `json:"language"`
	Level        int       `json:"level"`
	Repetitions  int       `json:"repetitions"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeWord returns the key under which a word is stored for a user.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// NewReviewItem creates the initial scheduling state for a word a user has just added.
// The item becomes due at now plus initialDelay.
func NewReviewItem(
	userID, word, language string,
	now time.Time,
	initialDelay time.Duration,
) (*ReviewItem, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	now = now.UTC()

	item := &ReviewItem{
		ID:           uuid.New(),
		UserID:       userID,
		Word:         NormalizeWord(word),
		Language:     strings.ToLower(strings.TrimSpace(language)),
		Level:        InitialLevel,
		Repetitions:  0,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: DefaultIntervalDays,
		NextReviewAt: now.Add(initialDelay),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the structural invariants of a ReviewItem.
func (r *ReviewItem) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return NewValidationError("user_id", "cannot be empty")
	}
	if r.Word == "" {
		return NewValidationError("word", "cannot be empty")
	}
	if r.Level < 1 {
		return NewValidationError("level", "must be at least 1")
	}
	if r.Repetitions < 0 {
		return NewValidationError("repetitions", "cannot be negative")
	}
	if r.EaseFactor <= 1.0 {
		return NewValidationError("ease_factor", "must be greater than 1.0")
	}
	if r.IntervalDays < 1 {
		return NewValidationError("interval_days", "must be at least 1")
	}
	return nil
}

// IsDue reports whether the item is eligible for review at now.
func (r *ReviewItem) IsDue(now time.Time) bool {
	return !r.NextReviewAt.After(now)
}

// IsMastered reports whether the item has reached the given mastery level.
func (r *ReviewItem) IsMastered(masteryLevel int) bool {
	return r.Level >= masteryLevel
}

// Clone returns a copy of the item.
func (r *ReviewItem) Clone() *ReviewItem {
	c := *r
	return &c
}
