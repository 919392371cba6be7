package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/api"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/database"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/platform/migrations"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 5},
		Database: config.DatabaseConfig{
			Driver:       migrations.DriverSQLite,
			URL:          dbPath,
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Auth: config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60},
		SRS: config.SRSConfig{
			MinEaseFactor:        1.3,
			MaxIntervalDays:      36500,
			AgainEasePenalty:     0.20,
			HardEasePenalty:      0.15,
			EasyEaseBonus:        0.15,
			HardIntervalModifier: 0.8,
			EasyIntervalModifier: 1.3,
			RepetitionsPerLevel:  1,
			MaxLevel:             10,
			MasteryLevel:         5,
			DefaultDeckLimit:     20,
			MaxDeckLimit:         100,
		},
		Content: config.ContentConfig{DefaultLanguage: "en", FetchTimeoutMS: 2000},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"https://app.example"}},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log, _ := logger.NewTestLogger()
	cfg := testConfig(filepath.Join(t.TempDir(), "wordloom.db"))

	db, err := database.Open(ctx, cfg.Database, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx, log))

	app, err := newApplication(ctx, cfg, log, db)
	require.NoError(t, err)
	return app
}

func call(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestApplicationReviewRoundTrip(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()
	ctx := context.Background()

	token, err := app.jwtService.GenerateToken(ctx, "learner-1")
	require.NoError(t, err)

	for _, word := range []string{"gato", "perro", "casa"} {
		require.NoError(t, app.wordContentStore.Upsert(ctx, &domain.WordContent{
			Word:        word,
			Language:    "es",
			Translation: "en:" + word,
			UpdatedAt:   time.Now().UTC(),
		}))
		w := call(t, router, http.MethodPost, "/words", token, map[string]string{"word": word, "language": "es"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := call(t, router, http.MethodPost, "/words", token, map[string]string{"word": " GATO ", "language": "es"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, router, http.MethodGet, "/review?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var deck api.ReviewDeckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deck))
	require.Len(t, deck.Words, 2)
	assert.Equal(t, 1, deck.RemainingDue)
	assert.Equal(t, "en:"+deck.Words[0].WordData.Word, deck.Words[0].WordData.Translation)

	w = call(t, router, http.MethodPost, "/review", token, map[string]interface{}{
		"userWordId": deck.Words[0].UserWordID,
		"difficulty": int(domain.DifficultyMedium),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted api.SubmitReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.True(t, submitted.Success)
	assert.Equal(t, 3, submitted.Word.SRSData.Interval)
	assert.Equal(t, 1, submitted.Word.SRSData.Repetitions)

	w = call(t, router, http.MethodGet, "/review/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"dueCount":2,"masteredCount":0,"learning":3}`, w.Body.String())

	otherToken, err := app.jwtService.GenerateToken(ctx, "learner-2")
	require.NoError(t, err)
	w = call(t, router, http.MethodPost, "/review", otherToken, map[string]interface{}{
		"userWordId": deck.Words[1].UserWordID,
		"difficulty": int(domain.DifficultyEasy),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationRejectsUnauthenticatedRequests(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/review"},
		{http.MethodPost, "/review"},
		{http.MethodGet, "/review/stats"},
		{http.MethodPost, "/words"},
	} {
		w := call(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)

		w = call(t, router, tc.method, tc.path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestApplicationHealthAndCORS(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	w := call(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	req := httptest.NewRequest(http.MethodOptions, "/review", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	t.Setenv("WORDLOOM_DATABASE_DRIVER", migrations.DriverSQLite)
	t.Setenv("WORDLOOM_DATABASE_URL", dbPath)
	t.Setenv("WORDLOOM_AUTH_JWT_SECRET", testSecret)

	ctx := context.Background()
	require.NoError(t, run(ctx, runOptions{migrateCmd: "up"}))
	require.NoError(t, run(ctx, runOptions{migrateCmd: "version"}))
	assert.Error(t, run(ctx, runOptions{migrateCmd: "sideways"}))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("WORDLOOM_DATABASE_DRIVER", "oracle")
	t.Setenv("WORDLOOM_DATABASE_URL", "whatever")
	t.Setenv("WORDLOOM_AUTH_JWT_SECRET", testSecret)

	err := run(context.Background(), runOptions{migrateCmd: "up"})

	assert.Error(t, err)
}
