package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/store"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"file:data/app.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_loc=UTC",
		DSN("data/app.db"))

	assert.Equal(t,
		"file:app.db?_busy_timeout=100&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_loc=UTC",
		DSN("file:app.db?_busy_timeout=100"))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	require.NoError(t, db.Get(&mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", mode)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrNotFound},
		{
			name:     "unique",
			err:      sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			expected: store.ErrDuplicate,
		},
		{
			name:     "check",
			err:      sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck},
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "busy",
			err:      fmt.Errorf("exec: %w", sqlite3.Error{Code: sqlite3.ErrBusy}),
			expected: store.ErrUnavailable,
		},
		{name: "conn done", err: sql.ErrConnDone, expected: store.ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tc.err), tc.expected)
		})
	}

	assert.NoError(t, MapError(nil))
	plain := errors.New("near \"SELEC\": syntax error")
	assert.Equal(t, plain, MapError(plain))
}

func TestConstructorsPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewSQLiteReviewItemStore(nil, nil) })
	assert.Panics(t, func() { NewSQLiteWordContentStore(nil, nil) })
}
