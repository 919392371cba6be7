package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/platform/database"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/platform/migrations"
	"github.com/xuri/excelize/v2"
)

func writeDeck(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	path := filepath.Join(t.TempDir(), "deck.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func setTestEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "deck.db")
	t.Setenv("WORDLOOM_DATABASE_DRIVER", migrations.DriverSQLite)
	t.Setenv("WORDLOOM_DATABASE_URL", dbPath)
	t.Setenv("WORDLOOM_AUTH_JWT_SECRET", "test-secret-that-is-at-least-32-characters-long")
	t.Setenv("WORDLOOM_SERVER_LOG_LEVEL", "error")
	return dbPath
}

func TestRunImportsDeck(t *testing.T) {
	dbPath := setTestEnv(t)
	deck := writeDeck(t, [][]interface{}{
		{"word", "translation", "mnemonic"},
		{"hola", "hello", "oh la la"},
		{"adiós", "goodbye"},
		{"", "orphan translation"},
	})
	ctx := context.Background()
	opts := runOptions{file: deck, userID: "learner-7", language: "es", envFile: filepath.Join(t.TempDir(), "none.env")}

	var out bytes.Buffer
	require.NoError(t, run(ctx, opts, &out))
	assert.Contains(t, out.String(), "words enrolled:   2")
	assert.Contains(t, out.String(), "row errors:       1")
	assert.Contains(t, out.String(), "row 4: word cannot be empty")

	out.Reset()
	require.NoError(t, run(ctx, opts, &out))
	assert.Contains(t, out.String(), "words enrolled:   0")
	assert.Contains(t, out.String(), "already enrolled: 2")

	log, _ := logger.NewTestLogger()
	db, err := database.Open(ctx, config.DatabaseConfig{Driver: migrations.DriverSQLite, URL: dbPath}, log)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	items, contents := db.Stores(log)

	item, err := items.GetByUserAndWord(ctx, "learner-7", "hola")
	require.NoError(t, err)
	assert.Equal(t, "es", item.Language)

	c, err := contents.Get(ctx, "hola", "es")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Translation)
	assert.Equal(t, "oh la la", c.Mnemonic)
}

func TestRunRequiresFlags(t *testing.T) {
	err := run(context.Background(), runOptions{userID: "u"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errMissingFlag)

	err = run(context.Background(), runOptions{file: "deck.xlsx"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, errMissingFlag)
}

func TestRunMissingFile(t *testing.T) {
	setTestEnv(t)
	opts := runOptions{
		file:    filepath.Join(t.TempDir(), "missing.xlsx"),
		userID:  "u",
		envFile: filepath.Join(t.TempDir(), "none.env"),
	}

	err := run(context.Background(), opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import failed")
}
