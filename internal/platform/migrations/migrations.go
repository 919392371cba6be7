// Package migrations embeds the SQL schema for every supported database
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

// TableName is the goose version table.
const TableName = "schema_migrations"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	log *slog.Logger
}

// Printf implements goose.Logger.
func (l slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It logs instead of exiting so callers
// still receive the error goose returns.
func (l slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func dialectFor(driver string) (dialect, dir string, err error) {
	switch driver {
	case DriverPostgres:
		return "postgres", "postgres", nil
	case DriverSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func withGoose(driver string, log *slog.Logger, fn func(dir string) error) error {
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return err
	}
	if log == nil {
		log = slog.Default()
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	goose.SetTableName(TableName)
	goose.SetLogger(slogGooseLogger{log: log.With(slog.String("component", "migrations"))})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	return fn(dir)
}

// Up applies all pending migrations for the given driver.
func Up(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	return withGoose(driver, log, func(dir string) error {
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	return withGoose(driver, log, func(dir string) error {
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return nil
	})
}

// Status logs the state of every migration.
func Status(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	return withGoose(driver, log, func(dir string) error {
		return goose.StatusContext(ctx, db, dir)
	})
}

// Version returns the schema version currently applied.
func Version(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) (int64, error) {
	var version int64
	err := withGoose(driver, log, func(string) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}

// Run executes a named migration command: up, down, status or version.
func Run(ctx context.Context, db *sql.DB, driver, command string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	switch command {
	case "up":
		return Up(ctx, db, driver, log)
	case "down":
		return Down(ctx, db, driver, log)
	case "status":
		return Status(ctx, db, driver, log)
	case "version":
		v, err := Version(ctx, db, driver, log)
		if err != nil {
			return err
		}
		log.Info("current schema version", slog.Int64("version", v))
		return nil
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, status, or version)",
			command,
		)
	}
}
