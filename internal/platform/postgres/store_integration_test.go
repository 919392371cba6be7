//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/postgres"
	"github.com/wordloom/wordloom-api/internal/store"
	"github.com/wordloom/wordloom-api/internal/store/storetest"
	"github.com/wordloom/wordloom-api/internal/testdb"
)

func TestPostgresStores(t *testing.T) {
	db := testdb.OpenPostgres(t)

	storetest.Run(t, storetest.Harness{
		DB:       db,
		Items:    postgres.NewPostgresReviewItemStore(db, nil),
		Contents: postgres.NewPostgresWordContentStore(db, nil),
	})
}

func TestPostgresReviewItemStore_WithTxRollsBack(t *testing.T) {
	db := testdb.OpenPostgres(t)
	items := postgres.NewPostgresReviewItemStore(db, nil)
	ctx := context.Background()

	var id uuid.UUID
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		item, err := domain.NewReviewItem("user-"+uuid.NewString(), "ventana", "es", time.Now(), 0)
		require.NoError(t, err)
		id = item.ID

		txItems := items.WithTx(tx)
		require.NoError(t, txItems.Create(ctx, item))

		got, err := txItems.GetForUpdate(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "ventana", got.Word)
	})

	_, err := items.GetByID(ctx, id)
	assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
}
