package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/platform/migrations"
)

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log, _ := logger.NewTestLogger()

	db, err := Open(ctx, config.DatabaseConfig{
		Driver: migrations.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "wordloom.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, migrations.DriverSQLite, db.Driver())
	require.NoError(t, db.SQL().PingContext(ctx))
	require.NoError(t, db.Migrate(ctx, log))

	items, contents := db.Stores(log)
	require.NotNil(t, items)
	require.NotNil(t, contents)

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	item, err := domain.NewReviewItem("user-1", "Lantern", "en", now, 0)
	require.NoError(t, err)

	err = db.TxRunner().RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return items.WithTx(tx).Create(ctx, item)
	})
	require.NoError(t, err)

	got, err := items.GetByUserAndWord(ctx, "user-1", "lantern")
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger()
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", URL: "x"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
