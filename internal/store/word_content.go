package store

import (
	"context"
	"database/sql"

	"github.com/wordloom/wordloom-api/internal/domain"
)

// WordContentStore defines the interface for word display content persistence.
type WordContentStore interface {
	// Get retrieves the content for a word in a language.
	// Returns ErrWordContentNotFound if nothing is stored.
	Get(ctx context.Context, word, language string) (*domain.WordContent, error)

	// Upsert inserts the content or replaces the stored content for the same word and language.
	Upsert(ctx context.Context, content *domain.WordContent) error

	// WithTx returns a new WordContentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WordContentStore
}
