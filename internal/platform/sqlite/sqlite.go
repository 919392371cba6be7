package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/wordloom/wordloom-api/internal/store"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

var defaultParams = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
	"_journal_mode=WAL",
	"_txlock=immediate",
	"_loc=UTC",
}

// DSN turns a database path or file: URL into a connection string carrying
// the parameters the stores rely on. Parameters already present are kept.
func DSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	var extra []string
	for _, p := range defaultParams {
		key := p[:strings.Index(p, "=")+1]
		if !strings.Contains(dsn, key) {
			extra = append(extra, p)
		}
	}
	if len(extra) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}

// Open connects to the SQLite database at path and verifies the connection.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// MapError maps a go-sqlite3 error to an appropriate store error,
// mirroring the PostgreSQL mapping.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case sqlite3.ErrConstraintCheck,
			sqlite3.ErrConstraintNotNull,
			sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return err
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// txExt wraps a caller-managed transaction so sqlx helpers can use it.
func txExt(db *sqlx.DB, tx *sql.Tx) sqlx.ExtContext {
	return &sqlx.Tx{Tx: tx, Mapper: db.Mapper}
}
