package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/store"
)

// PostgresWordContentStore implements the store.WordContentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWordContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordContentStore creates a new PostgreSQL implementation of the WordContentStore interface.
func NewPostgresWordContentStore(db store.DBTX, logger *slog.Logger) *PostgresWordContentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_content_store")),
	}
}

var _ store.WordContentStore = (*PostgresWordContentStore)(nil)

// Get implements store.WordContentStore.Get
func (s *PostgresWordContentStore) Get(ctx context.Context, word, language string) (*domain.WordContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT word, language, translation, mnemonic, example, image_url, audio_url, updated_at
		FROM word_contents
		WHERE word = $1 AND language = $2
	`
	var c domain.WordContent
	err := s.db.QueryRowContext(ctx, query, word, language).Scan(
		&c.Word,
		&c.Language,
		&c.Translation,
		&c.Mnemonic,
		&c.Example,
		&c.ImageURL,
		&c.AudioURL,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordContentNotFound
		}
		log.Error("failed to get word content",
			slog.String("error", err.Error()),
			slog.String("word", word),
			slog.String("language", language))
		return nil, store.NewStoreError("word_content", "get", "query failed", MapError(err))
	}
	c.UpdatedAt = c.UpdatedAt.UTC()

	return &c, nil
}

// Upsert implements store.WordContentStore.Upsert
func (s *PostgresWordContentStore) Upsert(ctx context.Context, c *domain.WordContent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO word_contents (word, language, translation, mnemonic, example, image_url, audio_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (word, language) DO UPDATE SET
			translation = EXCLUDED.translation,
			mnemonic = EXCLUDED.mnemonic,
			example = EXCLUDED.example,
			image_url = EXCLUDED.image_url,
			audio_url = EXCLUDED.audio_url,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.Word, c.Language, c.Translation, c.Mnemonic, c.Example, c.ImageURL, c.AudioURL, c.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to upsert word content",
			slog.String("error", err.Error()),
			slog.String("word", c.Word))
		return store.NewStoreError("word_content", "upsert", "insert failed", MapError(err))
	}

	log.Debug("word content stored",
		slog.String("word", c.Word),
		slog.String("language", c.Language))
	return nil
}

// WithTx implements store.WordContentStore.WithTx
func (s *PostgresWordContentStore) WithTx(tx *sql.Tx) store.WordContentStore {
	return &PostgresWordContentStore{
		db:     tx,
		logger: s.logger,
	}
}
