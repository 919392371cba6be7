package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/wordloom/wordloom-api/internal/api"
	apiMiddleware "github.com/wordloom/wordloom-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if origins := app.config.CORS.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{apiMiddleware.TraceHeader},
			MaxAge:         300,
		}).Handler)
	}

	healthHandler := api.NewHealthHandler(app.db.SQL(), app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.config.SRS.DefaultDeckLimit, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", healthHandler.Check)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/review", reviewHandler.GetReviewDeck)
		r.Post("/review", reviewHandler.SubmitReview)
		r.Get("/review/stats", reviewHandler.GetStats)
		r.Post("/words", reviewHandler.AddWord)
	})

	return r
}
