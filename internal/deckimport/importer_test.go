package deckimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/clock"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/mocks"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type enrollCall struct {
	userID, word, language string
}

// recordingEnroller enrolls words into an in-memory set keyed by user and word.
type recordingEnroller struct {
	mu       sync.Mutex
	calls    []enrollCall
	enrolled map[string]bool
	failOn   string
}

func newRecordingEnroller() *recordingEnroller {
	return &recordingEnroller{enrolled: make(map[string]bool)}
}

func (e *recordingEnroller) AddWord(
	_ context.Context,
	userID, word, language string,
) (*domain.ReviewItem, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, enrollCall{userID: userID, word: word, language: language})
	if word == e.failOn {
		return nil, false, errors.New("store offline")
	}
	item, err := domain.NewReviewItem(userID, word, language, testNow, 0)
	if err != nil {
		return nil, false, err
	}
	key := userID + "/" + word
	if e.enrolled[key] {
		return item, false, nil
	}
	e.enrolled[key] = true
	return item, true, nil
}

// buildWorkbook writes rows into the default sheet of a new workbook.
func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	return f
}

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := buildWorkbook(t, rows)
	defer func() { _ = f.Close() }()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var header = []interface{}{"Word", "Translation", "Mnemonic", "Example", "Image", "Audio"}

func newTestImporter(contents *mocks.MockWordContentStore, enroller WordEnroller) *Importer {
	log, _ := logger.NewTestLogger()
	return NewImporter(contents, enroller, clock.NewFixed(testNow), log)
}

func TestImporter_Import(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, [][]interface{}{
		header,
		{"  Apple ", "яблоко", "an apple a day", "I ate an apple.", "https://img/apple.png", "https://audio/apple.mp3"},
		{"river", "река"},
		{"", "пусто"},
		{},
		{"cloud"},
	})

	contents := mocks.NewMockWordContentStore()
	enroller := newRecordingEnroller()
	imp := newTestImporter(contents, enroller)

	res, err := imp.Import(context.Background(), buf, Options{UserID: "user-1", Language: " EN "})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", res.Sheet)
	assert.Equal(t, 4, res.Processed, "blank rows are not counted")
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 0, res.AlreadyEnrolled)
	assert.Equal(t, 2, res.ContentStored, "rows without a translation store no content")
	require.Len(t, res.RowErrors, 1)
	assert.Equal(t, 4, res.RowErrors[0].Row)
	assert.Equal(t, "row 4: word cannot be empty", res.RowErrors[0].Error())

	apple, err := contents.Get(context.Background(), "apple", "en")
	require.NoError(t, err)
	assert.Equal(t, "яблоко", apple.Translation)
	assert.Equal(t, "an apple a day", apple.Mnemonic)
	assert.Equal(t, "I ate an apple.", apple.Example)
	assert.Equal(t, "https://img/apple.png", apple.ImageURL)
	assert.Equal(t, "https://audio/apple.mp3", apple.AudioURL)
	assert.Equal(t, testNow, apple.UpdatedAt)

	river, err := contents.Get(context.Background(), "river", "en")
	require.NoError(t, err)
	assert.Empty(t, river.Mnemonic)

	assert.Equal(t, []enrollCall{
		{userID: "user-1", word: "apple", language: "en"},
		{userID: "user-1", word: "river", language: "en"},
		{userID: "user-1", word: "cloud", language: "en"},
	}, enroller.calls)
}

func TestImporter_ReimportCountsAlreadyEnrolled(t *testing.T) {
	t.Parallel()

	rows := [][]interface{}{header, {"apple", "яблоко"}, {"river", "река"}}
	contents := mocks.NewMockWordContentStore()
	enroller := newRecordingEnroller()
	imp := newTestImporter(contents, enroller)

	first, err := imp.Import(context.Background(), workbookBytes(t, rows), Options{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := imp.Import(context.Background(), workbookBytes(t, rows), Options{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.AlreadyEnrolled)
	assert.Equal(t, 4, contents.UpsertCalls(), "content is refreshed on every import")
}

func TestImporter_DefaultLanguage(t *testing.T) {
	t.Parallel()

	enroller := newRecordingEnroller()
	imp := newTestImporter(mocks.NewMockWordContentStore(), enroller)

	_, err := imp.Import(context.Background(),
		workbookBytes(t, [][]interface{}{header, {"apple", "yabloko"}}),
		Options{UserID: "u"})
	require.NoError(t, err)
	require.Len(t, enroller.calls, 1)
	assert.Equal(t, domain.DefaultLanguage, enroller.calls[0].language)
}

func TestImporter_NamedSheet(t *testing.T) {
	t.Parallel()

	buf := workbookBytes(t, [][]interface{}{header, {"run", "бежать"}})
	imp := newTestImporter(mocks.NewMockWordContentStore(), newRecordingEnroller())

	res, err := imp.Import(context.Background(), buf, Options{UserID: "u", Sheet: "sheet1"})
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", res.Sheet)
	assert.Equal(t, 1, res.Imported)

	buf = workbookBytes(t, [][]interface{}{header, {"run", "бежать"}})
	_, err = imp.Import(context.Background(), buf, Options{UserID: "u", Sheet: "Nouns"})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestImporter_RowFailuresDoNotStopImport(t *testing.T) {
	t.Parallel()

	t.Run("enroll failure", func(t *testing.T) {
		t.Parallel()
		enroller := newRecordingEnroller()
		enroller.failOn = "river"
		imp := newTestImporter(mocks.NewMockWordContentStore(), enroller)

		res, err := imp.Import(context.Background(),
			workbookBytes(t, [][]interface{}{header, {"river", "река"}, {"apple", "яблоко"}}),
			Options{UserID: "u"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
		require.Len(t, res.RowErrors, 1)
		assert.Equal(t, "river", res.RowErrors[0].Word)
		assert.Contains(t, res.RowErrors[0].Message, "failed to enroll")
	})

	t.Run("content failure", func(t *testing.T) {
		t.Parallel()
		contents := mocks.NewMockWordContentStore()
		contents.UpsertErr = errors.New("disk full")
		enroller := newRecordingEnroller()
		imp := newTestImporter(contents, enroller)

		res, err := imp.Import(context.Background(),
			workbookBytes(t, [][]interface{}{header, {"apple", "яблоко"}}),
			Options{UserID: "u"})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Imported)
		require.Len(t, res.RowErrors, 1)
		assert.Contains(t, res.RowErrors[0].Message, "failed to store content")
		assert.Empty(t, enroller.calls, "a row whose content failed is not enrolled")
	})
}

func TestImporter_RequiresUser(t *testing.T) {
	t.Parallel()

	imp := newTestImporter(mocks.NewMockWordContentStore(), newRecordingEnroller())
	_, err := imp.Import(context.Background(),
		workbookBytes(t, [][]interface{}{header}),
		Options{UserID: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImporter_CanceledContext(t *testing.T) {
	t.Parallel()

	enroller := newRecordingEnroller()
	imp := newTestImporter(mocks.NewMockWordContentStore(), enroller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.Import(ctx,
		workbookBytes(t, [][]interface{}{header, {"apple", "яблоко"}}),
		Options{UserID: "u"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, enroller.calls)
}

func TestImporter_ImportFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deck.xlsx")
	f := buildWorkbook(t, [][]interface{}{header, {"apple", "яблоко"}})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	imp := newTestImporter(mocks.NewMockWordContentStore(), newRecordingEnroller())
	res, err := imp.ImportFile(context.Background(), path, Options{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	_, err = imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), Options{UserID: "u"})
	assert.Error(t, err)
}

func TestNewImporter_PanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewImporter(nil, newRecordingEnroller(), nil, nil) })
	assert.Panics(t, func() { NewImporter(mocks.NewMockWordContentStore(), nil, nil, nil) })
}
