package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordloom/wordloom-api/internal/clock"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/domain/srs"
	"github.com/wordloom/wordloom-api/internal/platform/database"
	"github.com/wordloom/wordloom-api/internal/platform/gemini"
	"github.com/wordloom/wordloom-api/internal/service/auth"
	"github.com/wordloom/wordloom-api/internal/service/review"
	"github.com/wordloom/wordloom-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *database.DB

	reviewItemStore  store.ReviewItemStore
	wordContentStore store.WordContentStore

	jwtService      auth.JWTService
	srsService      srs.Service
	contentProvider content.Provider
	reviewService   review.Service
}

// newApplication wires every component of the service from configuration.
// The database connection is established by the caller.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *database.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.reviewItemStore, app.wordContentStore = db.Stores(logger)

	app.srsService = srs.NewServiceWithParams(srs.ParamsFromConfig(cfg.SRS))

	app.contentProvider, err = newContentProvider(ctx, cfg.LLM, app.wordContentStore, logger)
	if err != nil {
		return nil, err
	}

	app.reviewService = review.NewService(
		app.reviewItemStore,
		db.TxRunner(),
		app.srsService,
		app.contentProvider,
		clock.Real{},
		review.ConfigFromSettings(cfg),
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newContentProvider returns the store-backed provider, falling back to
// Gemini generation when the LLM is enabled.
func newContentProvider(
	ctx context.Context,
	cfg config.LLMConfig,
	contents store.WordContentStore,
	logger *slog.Logger,
) (content.Provider, error) {
	if !cfg.Enabled {
		logger.Info("LLM content generation disabled")
		return content.NewStoreProvider(contents), nil
	}

	generator, err := gemini.NewGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized successfully", slog.String("model", cfg.ModelName))

	return content.NewFallbackProvider(contents, generator, logger), nil
}
