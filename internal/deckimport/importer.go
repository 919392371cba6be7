package deckimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wordloom/wordloom-api/internal/clock"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/redact"
	"github.com/wordloom/wordloom-api/internal/store"
	"github.com/xuri/excelize/v2"
)

// Column positions within a deck row.
const (
	colWord = iota
	colTranslation
	colMnemonic
	colExample
	colImageURL
	colAudioURL
)

var (
	// ErrSheetNotFound is returned when the requested sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptyWorkbook is returned when the workbook has no sheets.
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// WordEnroller adds a word to a user's collection.
// review.Service satisfies it.
type WordEnroller interface {
	AddWord(ctx context.Context, userID, word, language string) (*domain.ReviewItem, bool, error)
}

// Options selects what to import and for whom.
type Options struct {
	// UserID is the learner the words are enrolled for.
	UserID string

	// Language is the language code stored with every row.
	Language string

	// Sheet names the sheet to read. Empty means the first sheet.
	Sheet string
}

// RowError describes a row that could not be imported.
type RowError struct {
	Row     int // 1-based, as shown in a spreadsheet application
	Word    string
	Message string
}

// Error implements the error interface.
func (e RowError) Error() string {
	if e.Word == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Word, e.Message)
}

// Result summarizes an import run.
type Result struct {
	Sheet           string
	Processed       int
	Imported        int
	AlreadyEnrolled int
	ContentStored   int
	RowErrors       []RowError
}

// Importer reads deck spreadsheets into the content store and enrolls their words.
type Importer struct {
	contents store.WordContentStore
	enroller WordEnroller
	clock    clock.Clock
	logger   *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(
	contents store.WordContentStore,
	enroller WordEnroller,
	clk clock.Clock,
	log *slog.Logger,
) *Importer {
	if contents == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("contents cannot be nil")
	}
	if enroller == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("enroller cannot be nil")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		contents: contents,
		enroller: enroller,
		clock:    clk,
		logger:   log.With(slog.String("component", "deck_importer")),
	}
}

// ImportFile imports the deck stored at path.
func (i *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			i.logger.Warn("failed to close workbook", slog.String("error", closeErr.Error()))
		}
	}()
	return i.importWorkbook(ctx, f, opts)
}

// Import imports a deck read from r.
func (i *Importer) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			i.logger.Warn("failed to close workbook", slog.String("error", closeErr.Error()))
		}
	}()
	return i.importWorkbook(ctx, f, opts)
}

func (i *Importer) importWorkbook(ctx context.Context, f *excelize.File, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.UserID) == "" {
		return nil, domain.NewValidationError("user_id", "cannot be empty")
	}
	language := strings.ToLower(strings.TrimSpace(opts.Language))
	if language == "" {
		language = domain.DefaultLanguage
	}

	sheet, err := resolveSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	log := logger.FromContextOrDefault(ctx, i.logger).With(
		slog.String("user_id", opts.UserID),
		slog.String("sheet", sheet),
	)
	log.Info("importing deck", slog.Int("rows", len(rows)))

	result := &Result{Sheet: sheet}
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			continue
		}
		result.Processed++
		i.importRow(ctx, log, idx+1, row, opts.UserID, language, result)
	}

	log.Info("deck imported",
		slog.Int("processed", result.Processed),
		slog.Int("imported", result.Imported),
		slog.Int("already_enrolled", result.AlreadyEnrolled),
		slog.Int("row_errors", len(result.RowErrors)))

	return result, nil
}

func (i *Importer) importRow(
	ctx context.Context,
	log *slog.Logger,
	rowNum int,
	row []string,
	userID, language string,
	result *Result,
) {
	word := domain.NormalizeWord(cell(row, colWord))
	if word == "" {
		result.RowErrors = append(result.RowErrors, RowError{Row: rowNum, Message: "word cannot be empty"})
		return
	}

	content := &domain.WordContent{
		Word:        word,
		Language:    language,
		Translation: cell(row, colTranslation),
		Mnemonic:    cell(row, colMnemonic),
		Example:     cell(row, colExample),
		ImageURL:    cell(row, colImageURL),
		AudioURL:    cell(row, colAudioURL),
		UpdatedAt:   i.clock.Now().UTC(),
	}

	// Rows without a translation are still enrolled; the content provider
	// resolves their display content at review time.
	if content.Translation != "" {
		if err := i.contents.Upsert(ctx, content); err != nil {
			log.Warn("failed to store word content",
				slog.Int("row", rowNum),
				slog.String("word", word),
				slog.String("error", redact.Error(err)))
			result.RowErrors = append(result.RowErrors, RowError{
				Row:     rowNum,
				Word:    word,
				Message: "failed to store content: " + redact.Error(err),
			})
			return
		}
		result.ContentStored++
	}

	_, created, err := i.enroller.AddWord(ctx, userID, word, language)
	if err != nil {
		log.Warn("failed to enroll word",
			slog.Int("row", rowNum),
			slog.String("word", word),
			slog.String("error", redact.Error(err)))
		result.RowErrors = append(result.RowErrors, RowError{
			Row:     rowNum,
			Word:    word,
			Message: "failed to enroll: " + redact.Error(err),
		})
		return
	}

	if created {
		result.Imported++
	} else {
		result.AlreadyEnrolled++
	}
}

func resolveSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrEmptyWorkbook
	}
	if name == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
