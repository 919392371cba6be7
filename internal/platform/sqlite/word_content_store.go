package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/store"
)

type wordContentRow struct {
	Word        string    `db:"word"`
	Language    string    `db:"language"`
	Translation string    `db:"translation"`
	Mnemonic    string    `db:"mnemonic"`
	Example     string    `db:"example"`
	ImageURL    string    `db:"image_url"`
	AudioURL    string    `db:"audio_url"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// SQLiteWordContentStore implements the store.WordContentStore interface on SQLite.
type SQLiteWordContentStore struct {
	base   *sqlx.DB
	db     sqlx.ExtContext
	logger *slog.Logger
}

// NewSQLiteWordContentStore creates a new SQLite implementation of the WordContentStore interface.
func NewSQLiteWordContentStore(db *sqlx.DB, logger *slog.Logger) *SQLiteWordContentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteWordContentStore{
		base:   db,
		db:     db,
		logger: logger.With(slog.String("component", "word_content_store")),
	}
}

var _ store.WordContentStore = (*SQLiteWordContentStore)(nil)

// Get implements store.WordContentStore.Get
func (s *SQLiteWordContentStore) Get(ctx context.Context, word, language string) (*domain.WordContent, error) {
	var row wordContentRow
	err := sqlx.GetContext(ctx, s.db, &row, `
		SELECT word, language, translation, mnemonic, example, image_url, audio_url, updated_at
		FROM word_contents
		WHERE word = ? AND language = ?`, word, language)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWordContentNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get word content",
			slog.String("error", err.Error()),
			slog.String("word", word))
		return nil, store.NewStoreError("word_content", "get", "query failed", MapError(err))
	}

	return &domain.WordContent{
		Word:        row.Word,
		Language:    row.Language,
		Translation: row.Translation,
		Mnemonic:    row.Mnemonic,
		Example:     row.Example,
		ImageURL:    row.ImageURL,
		AudioURL:    row.AudioURL,
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

// Upsert implements store.WordContentStore.Upsert
func (s *SQLiteWordContentStore) Upsert(ctx context.Context, c *domain.WordContent) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	row := wordContentRow{
		Word:        c.Word,
		Language:    c.Language,
		Translation: c.Translation,
		Mnemonic:    c.Mnemonic,
		Example:     c.Example,
		ImageURL:    c.ImageURL,
		AudioURL:    c.AudioURL,
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
	query := `
		INSERT INTO word_contents (word, language, translation, mnemonic, example, image_url, audio_url, updated_at)
		VALUES (:word, :language, :translation, :mnemonic, :example, :image_url, :audio_url, :updated_at)
		ON CONFLICT (word, language) DO UPDATE SET
			translation = excluded.translation,
			mnemonic = excluded.mnemonic,
			example = excluded.example,
			image_url = excluded.image_url,
			audio_url = excluded.audio_url,
			updated_at = excluded.updated_at
	`
	if _, err := sqlx.NamedExecContext(ctx, s.db, query, row); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert word content",
			slog.String("error", err.Error()),
			slog.String("word", c.Word))
		return store.NewStoreError("word_content", "upsert", "insert failed", MapError(err))
	}
	return nil
}

// WithTx implements store.WordContentStore.WithTx
func (s *SQLiteWordContentStore) WithTx(tx *sql.Tx) store.WordContentStore {
	return &SQLiteWordContentStore{
		base:   s.base,
		db:     txExt(s.base, tx),
		logger: s.logger,
	}
}
