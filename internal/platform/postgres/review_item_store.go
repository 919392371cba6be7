package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/store"
)

const reviewItemColumns = `id, user_id, word, language, level, repetitions, ease_factor,
	interval_days, next_review_at, version, created_at, updated_at`

// PostgresReviewItemStore implements the store.ReviewItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewItemStore creates a new PostgreSQL implementation of the ReviewItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewItemStore(db store.DBTX, logger *slog.Logger) *PostgresReviewItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_item_store")),
	}
}

// Ensure PostgresReviewItemStore implements store.ReviewItemStore interface
var _ store.ReviewItemStore = (*PostgresReviewItemStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewItem(row rowScanner) (*domain.ReviewItem, error) {
	var item domain.ReviewItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Word,
		&item.Language,
		&item.Level,
		&item.Repetitions,
		&item.EaseFactor,
		&item.IntervalDays,
		&item.NextReviewAt,
		&item.Version,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.NextReviewAt = item.NextReviewAt.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// Create implements store.ReviewItemStore.Create
func (s *PostgresReviewItemStore) Create(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("review item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_items (` + reviewItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.Word,
		item.Language,
		item.Level,
		item.Repetitions,
		item.EaseFactor,
		item.IntervalDays,
		item.NextReviewAt,
		item.Version,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("review item already exists",
				slog.String("user_id", item.UserID),
				slog.String("word", item.Word))
			return fmt.Errorf("%w: %v", store.ErrReviewItemExists, err)
		}

		log.Error("failed to create review item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("user_id", item.UserID))
		return store.NewStoreError("review_item", "create", "insert failed", MapError(err))
	}

	log.Info("review item created successfully",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID),
		slog.String("word", item.Word))
	return nil
}

func (s *PostgresReviewItemStore) getOne(
	ctx context.Context,
	operation, query string,
	args ...any,
) (*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := scanReviewItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review item not found", slog.String("operation", operation))
			return nil, store.ErrReviewItemNotFound
		}
		log.Error("failed to get review item",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_item", operation, "query failed", MapError(err))
	}
	return item, nil
}

// GetByID implements store.ReviewItemStore.GetByID
func (s *PostgresReviewItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	query := `SELECT ` + reviewItemColumns + ` FROM review_items WHERE id = $1`
	return s.getOne(ctx, "get_by_id", query, id)
}

// GetForUpdate implements store.ReviewItemStore.GetForUpdate
// It uses SELECT ... FOR UPDATE so concurrent submissions for the same item
// queue behind the first transaction.
func (s *PostgresReviewItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	query := `SELECT ` + reviewItemColumns + ` FROM review_items WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, "get_for_update", query, id)
}

// GetByUserAndWord implements store.ReviewItemStore.GetByUserAndWord
func (s *PostgresReviewItemStore) GetByUserAndWord(
	ctx context.Context,
	userID, word string,
) (*domain.ReviewItem, error) {
	query := `SELECT ` + reviewItemColumns + ` FROM review_items WHERE user_id = $1 AND word = $2`
	return s.getOne(ctx, "get_by_user_and_word", query, userID, word)
}

// Update implements store.ReviewItemStore.Update
func (s *PostgresReviewItemStore) Update(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("review item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE review_items
		SET level = $1, repetitions = $2, ease_factor = $3, interval_days = $4,
			next_review_at = $5, updated_at = $6, version = version + 1
		WHERE id = $7 AND version = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		item.Level,
		item.Repetitions,
		item.EaseFactor,
		item.IntervalDays,
		item.NextReviewAt,
		item.UpdatedAt,
		item.ID,
		item.Version,
	)
	if err != nil {
		log.Error("failed to update review item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("review_item", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "review item"); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return store.NewStoreError("review_item", "update", "rows affected", err)
		}
		// Distinguish a missing row from a stale version.
		var exists bool
		if qErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM review_items WHERE id = $1)`, item.ID,
		).Scan(&exists); qErr != nil {
			return store.NewStoreError("review_item", "update", "existence check failed", MapError(qErr))
		}
		if !exists {
			return store.ErrReviewItemNotFound
		}
		log.Warn("review item version conflict",
			slog.String("item_id", item.ID.String()),
			slog.Int("version", item.Version))
		return store.ErrVersionConflict
	}

	item.Version++

	log.Debug("review item updated successfully",
		slog.String("item_id", item.ID.String()),
		slog.Int("version", item.Version))
	return nil
}

// FindDue implements store.ReviewItemStore.FindDue
func (s *PostgresReviewItemStore) FindDue(
	ctx context.Context,
	userID string,
	now time.Time,
	limit int,
) ([]*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return []*domain.ReviewItem{}, nil
	}

	query := `
		SELECT ` + reviewItemColumns + `
		FROM review_items
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC, id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, now.UTC(), limit)
	if err != nil {
		log.Error("failed to query due review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, store.NewStoreError("review_item", "find_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.ReviewItem, 0, limit)
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			return nil, store.NewStoreError("review_item", "find_due", "scan failed", MapError(err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_item", "find_due", "iteration failed", MapError(err))
	}

	log.Debug("due review items retrieved",
		slog.String("user_id", userID),
		slog.Int("count", len(items)))
	return items, nil
}

// CountDue implements store.ReviewItemStore.CountDue
func (s *PostgresReviewItemStore) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_items WHERE user_id = $1 AND next_review_at <= $2`,
		userID, now.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("review_item", "count_due", "query failed", MapError(err))
	}
	return count, nil
}

// CountByUser implements store.ReviewItemStore.CountByUser
func (s *PostgresReviewItemStore) CountByUser(
	ctx context.Context,
	userID string,
	now time.Time,
	masteryLevel int,
) (domain.VocabStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE next_review_at <= $2),
			COUNT(*) FILTER (WHERE level >= $3)
		FROM review_items
		WHERE user_id = $1
	`
	var stats domain.VocabStats
	err := s.db.QueryRowContext(ctx, query, userID, now.UTC(), masteryLevel).Scan(
		&stats.Total,
		&stats.DueCount,
		&stats.MasteredCount,
	)
	if err != nil {
		log.Error("failed to aggregate review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return domain.VocabStats{}, store.NewStoreError("review_item", "count_by_user", "query failed", MapError(err))
	}
	stats.Learning = stats.Total - stats.MasteredCount

	return stats, nil
}

// WithTx implements store.ReviewItemStore.WithTx
func (s *PostgresReviewItemStore) WithTx(tx *sql.Tx) store.ReviewItemStore {
	return &PostgresReviewItemStore{
		db:     tx,
		logger: s.logger,
	}
}
