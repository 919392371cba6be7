package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/store"
)

// reviewItemRow is the table shape of review_items.
type reviewItemRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       string    `db:"user_id"`
	Word         string    `db:"word"`
	Language     string    `db:"language"`
	Level        int       `db:"level"`
	Repetitions  int       `db:"repetitions"`
	EaseFactor   float64   `db:"ease_factor"`
	IntervalDays int       `db:"interval_days"`
	NextReviewAt time.Time `db:"next_review_at"`
	Version      int       `db:"version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toRow(item *domain.ReviewItem) reviewItemRow {
	return reviewItemRow{
		ID:           item.ID,
		UserID:       item.UserID,
		Word:         item.Word,
		Language:     item.Language,
		Level:        item.Level,
		Repetitions:  item.Repetitions,
		EaseFactor:   item.EaseFactor,
		IntervalDays: item.IntervalDays,
		NextReviewAt: item.NextReviewAt.UTC(),
		Version:      item.Version,
		CreatedAt:    item.CreatedAt.UTC(),
		UpdatedAt:    item.UpdatedAt.UTC(),
	}
}

func (r reviewItemRow) toDomain() *domain.ReviewItem {
	return &domain.ReviewItem{
		ID:           r.ID,
		UserID:       r.UserID,
		Word:         r.Word,
		Language:     r.Language,
		Level:        r.Level,
		Repetitions:  r.Repetitions,
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		NextReviewAt: r.NextReviewAt.UTC(),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

const selectReviewItem = `
	SELECT id, user_id, word, language, level, repetitions, ease_factor,
		interval_days, next_review_at, version, created_at, updated_at
	FROM review_items`

// SQLiteReviewItemStore implements the store.ReviewItemStore interface on SQLite.
type SQLiteReviewItemStore struct {
	base   *sqlx.DB
	db     sqlx.ExtContext
	logger *slog.Logger
}

// NewSQLiteReviewItemStore creates a new SQLite implementation of the ReviewItemStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteReviewItemStore(db *sqlx.DB, logger *slog.Logger) *SQLiteReviewItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteReviewItemStore{
		base:   db,
		db:     db,
		logger: logger.With(slog.String("component", "review_item_store")),
	}
}

var _ store.ReviewItemStore = (*SQLiteReviewItemStore)(nil)

// Create implements store.ReviewItemStore.Create
func (s *SQLiteReviewItemStore) Create(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("review item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_items (id, user_id, word, language, level, repetitions, ease_factor,
			interval_days, next_review_at, version, created_at, updated_at)
		VALUES (:id, :user_id, :word, :language, :level, :repetitions, :ease_factor,
			:interval_days, :next_review_at, :version, :created_at, :updated_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, s.db, query, toRow(item)); err != nil {
		if isUniqueViolation(err) {
			log.Debug("review item already exists",
				slog.String("user_id", item.UserID),
				slog.String("word", item.Word))
			return fmt.Errorf("%w: %v", store.ErrReviewItemExists, err)
		}
		log.Error("failed to create review item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("review_item", "create", "insert failed", MapError(err))
	}

	log.Info("review item created successfully",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID),
		slog.String("word", item.Word))
	return nil
}

func (s *SQLiteReviewItemStore) getOne(
	ctx context.Context,
	operation, query string,
	args ...any,
) (*domain.ReviewItem, error) {
	var row reviewItemRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewItemNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get review item",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_item", operation, "query failed", MapError(err))
	}
	return row.toDomain(), nil
}

// GetByID implements store.ReviewItemStore.GetByID
func (s *SQLiteReviewItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	return s.getOne(ctx, "get_by_id", selectReviewItem+` WHERE id = ?`, id)
}

// GetForUpdate implements store.ReviewItemStore.GetForUpdate
// The enclosing transaction already holds the database write lock.
func (s *SQLiteReviewItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	return s.getOne(ctx, "get_for_update", selectReviewItem+` WHERE id = ?`, id)
}

// GetByUserAndWord implements store.ReviewItemStore.GetByUserAndWord
func (s *SQLiteReviewItemStore) GetByUserAndWord(
	ctx context.Context,
	userID, word string,
) (*domain.ReviewItem, error) {
	return s.getOne(ctx, "get_by_user_and_word", selectReviewItem+` WHERE user_id = ? AND word = ?`, userID, word)
}

// Update implements store.ReviewItemStore.Update
func (s *SQLiteReviewItemStore) Update(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_items
		SET level = :level, repetitions = :repetitions, ease_factor = :ease_factor,
			interval_days = :interval_days, next_review_at = :next_review_at,
			updated_at = :updated_at, version = version + 1
		WHERE id = :id AND version = :version
	`
	result, err := sqlx.NamedExecContext(ctx, s.db, query, toRow(item))
	if err != nil {
		log.Error("failed to update review item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("review_item", "update", "update failed", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("review_item", "update", "rows affected", MapError(err))
	}
	if affected == 0 {
		var count int
		if err := sqlx.GetContext(ctx, s.db, &count,
			`SELECT COUNT(*) FROM review_items WHERE id = ?`, item.ID); err != nil {
			return store.NewStoreError("review_item", "update", "existence check failed", MapError(err))
		}
		if count == 0 {
			return store.ErrReviewItemNotFound
		}
		log.Warn("review item version conflict",
			slog.String("item_id", item.ID.String()),
			slog.Int("version", item.Version))
		return store.ErrVersionConflict
	}

	item.Version++
	return nil
}

// FindDue implements store.ReviewItemStore.FindDue
func (s *SQLiteReviewItemStore) FindDue(
	ctx context.Context,
	userID string,
	now time.Time,
	limit int,
) ([]*domain.ReviewItem, error) {
	if limit <= 0 {
		return []*domain.ReviewItem{}, nil
	}

	var rows []reviewItemRow
	query := selectReviewItem + `
		WHERE user_id = ? AND next_review_at <= ?
		ORDER BY next_review_at ASC, id ASC
		LIMIT ?`
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, userID, now.UTC(), limit); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query due review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, store.NewStoreError("review_item", "find_due", "query failed", MapError(err))
	}

	items := make([]*domain.ReviewItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDomain())
	}
	return items, nil
}

// CountDue implements store.ReviewItemStore.CountDue
func (s *SQLiteReviewItemStore) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.db, &count,
		`SELECT COUNT(*) FROM review_items WHERE user_id = ? AND next_review_at <= ?`,
		userID, now.UTC())
	if err != nil {
		return 0, store.NewStoreError("review_item", "count_due", "query failed", MapError(err))
	}
	return count, nil
}

// CountByUser implements store.ReviewItemStore.CountByUser
func (s *SQLiteReviewItemStore) CountByUser(
	ctx context.Context,
	userID string,
	now time.Time,
	masteryLevel int,
) (domain.VocabStats, error) {
	var agg struct {
		Total    int `db:"total"`
		Due      int `db:"due"`
		Mastered int `db:"mastered"`
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN next_review_at <= ? THEN 1 ELSE 0 END), 0) AS due,
			COALESCE(SUM(CASE WHEN level >= ? THEN 1 ELSE 0 END), 0) AS mastered
		FROM review_items
		WHERE user_id = ?
	`
	if err := sqlx.GetContext(ctx, s.db, &agg, query, now.UTC(), masteryLevel, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to aggregate review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return domain.VocabStats{}, store.NewStoreError("review_item", "count_by_user", "query failed", MapError(err))
	}

	return domain.VocabStats{
		Total:         agg.Total,
		DueCount:      agg.Due,
		MasteredCount: agg.Mastered,
		Learning:      agg.Total - agg.Mastered,
	}, nil
}

// WithTx implements store.ReviewItemStore.WithTx
func (s *SQLiteReviewItemStore) WithTx(tx *sql.Tx) store.ReviewItemStore {
	return &SQLiteReviewItemStore{
		base:   s.base,
		db:     txExt(s.base, tx),
		logger: s.logger,
	}
}
