package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/domain"
)

// ReviewItemStore defines the interface for review item persistence.
//
// Implementations must give per-item read-modify-write atomicity: GetForUpdate
// inside a transaction locks the row, and Update checks the version it was
// read at so a stale write is rejected instead of silently overwriting.
type ReviewItemStore interface {
	// Create saves a new review item.
	// Returns ErrReviewItemExists if the user already has an item for the word.
	// Returns validation errors wrapped in ErrInvalidEntity if the item is invalid.
	Create(ctx context.Context, item *domain.ReviewItem) error

	// GetByID retrieves a review item by its unique ID.
	// Returns ErrReviewItemNotFound if the item does not exist.
	// NOTE: This method does NOT lock the row.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)

	// GetForUpdate retrieves a review item and locks it for the rest of the
	// enclosing transaction. It should only be called on a store obtained via WithTx.
	// Returns ErrReviewItemNotFound if the item does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)

	// GetByUserAndWord retrieves the item a user holds for a normalized word.
	// Returns ErrReviewItemNotFound if the user has not added the word.
	GetByUserAndWord(ctx context.Context, userID, word string) (*domain.ReviewItem, error)

	// Update persists new scheduling state for an existing item.
	// The write succeeds only if the stored version equals item.Version; on
	// success item.Version is incremented to match the stored row.
	// Returns ErrReviewItemNotFound if the item does not exist and
	// ErrVersionConflict if it changed since it was read.
	Update(ctx context.Context, item *domain.ReviewItem) error

	// FindDue returns at most limit items of the user with NextReviewAt <= now,
	// ordered by NextReviewAt ascending and then by ID ascending.
	FindDue(ctx context.Context, userID string, now time.Time, limit int) ([]*domain.ReviewItem, error)

	// CountDue returns how many of the user's items have NextReviewAt <= now.
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)

	// CountByUser aggregates the user's collection in a single read.
	// An item counts as mastered when its level is at least masteryLevel.
	CountByUser(ctx context.Context, userID string, now time.Time, masteryLevel int) (domain.VocabStats, error)

	// WithTx returns a new ReviewItemStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ReviewItemStore
}
