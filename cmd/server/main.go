// Package main implements the entry point for the Wordloom review API server,
// which schedules vocabulary reviews with a spaced repetition algorithm.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/platform/database"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/platform/migrations"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	skipMigrations := flag.Bool("skip-migrations", false, "do not apply pending migrations on startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, runOptions{
		configFile:     *configFile,
		envFile:        *envFile,
		migrateCmd:     *migrateCmd,
		skipMigrations: *skipMigrations,
	}); err != nil {
		log.Printf("wordloom-api: %v", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configFile     string
	envFile        string
	migrateCmd     string
	skipMigrations bool
}

// run loads configuration, connects to the database and either executes a
// migration command or serves HTTP until ctx is cancelled.
func run(ctx context.Context, opts runOptions) error {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l := logger.Setup(cfg.Server)
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("llm_enabled", cfg.LLM.Enabled))

	db, err := database.Open(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if opts.migrateCmd != "" {
		return migrations.Run(ctx, db.SQL(), cfg.Database.Driver, opts.migrateCmd, l)
	}

	if !opts.skipMigrations {
		if err := db.Migrate(ctx, l); err != nil {
			return err
		}
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
