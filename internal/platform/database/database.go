// Package database opens the configured SQL backend and builds the stores on it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/platform/migrations"
	"github.com/wordloom/wordloom-api/internal/platform/postgres"
	"github.com/wordloom/wordloom-api/internal/platform/sqlite"
	"github.com/wordloom/wordloom-api/internal/store"
)

// PingTimeout bounds the connectivity check performed by Open.
const PingTimeout = 5 * time.Second

// DB is an open connection to one of the supported backends.
type DB struct {
	driver string
	db     *sql.DB
	sqlxDB *sqlx.DB // set for sqlite only
}

// Open establishes a connection for the configured driver and applies the
// connection pool settings.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	switch cfg.Driver {
	case migrations.DriverPostgres:
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", postgres.MapError(err))
		}

		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return &DB{driver: cfg.Driver, db: db}, nil

	case migrations.DriverSQLite:
		sqlxDB, err := sqlite.Open(pingCtx, cfg.URL)
		if err != nil {
			return nil, err
		}
		// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
		sqlxDB.SetMaxOpenConns(1)

		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return &DB{driver: cfg.Driver, db: sqlxDB.DB, sqlxDB: sqlxDB}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver name.
func (d *DB) Driver() string {
	return d.driver
}

// SQL returns the underlying connection pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate applies all pending migrations.
func (d *DB) Migrate(ctx context.Context, logger *slog.Logger) error {
	return migrations.Up(ctx, d.db, d.driver, logger)
}

// Stores builds the review item and word content stores for the backend.
func (d *DB) Stores(logger *slog.Logger) (store.ReviewItemStore, store.WordContentStore) {
	if d.sqlxDB != nil {
		return sqlite.NewSQLiteReviewItemStore(d.sqlxDB, logger),
			sqlite.NewSQLiteWordContentStore(d.sqlxDB, logger)
	}
	return postgres.NewPostgresReviewItemStore(d.db, logger),
		postgres.NewPostgresWordContentStore(d.db, logger)
}

// TxRunner returns a transaction runner bound to the connection pool.
func (d *DB) TxRunner() store.TxRunner {
	return store.NewSQLTxRunner(d.db)
}
