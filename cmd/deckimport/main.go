// Package main implements deckimport, a command that loads a vocabulary deck
// from an .xlsx spreadsheet and enrolls its words for a learner.
//
// Usage:
//
//	deckimport -file deck.xlsx -user <user-id> [-language es] [-sheet Verbs]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wordloom/wordloom-api/internal/clock"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/deckimport"
	"github.com/wordloom/wordloom-api/internal/domain/srs"
	"github.com/wordloom/wordloom-api/internal/platform/database"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/service/review"
)

var errMissingFlag = errors.New("missing required flag")

type runOptions struct {
	configFile string
	envFile    string
	file       string
	userID     string
	language   string
	sheet      string
}

func main() {
	var opts runOptions
	flag.StringVar(&opts.configFile, "config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.StringVar(&opts.envFile, "env-file", ".env", "path to an optional .env file")
	flag.StringVar(&opts.file, "file", "", "path to the .xlsx deck (required)")
	flag.StringVar(&opts.userID, "user", "", "ID of the learner to enroll the words for (required)")
	flag.StringVar(&opts.language, "language", "", "language code of the deck (default: content.default_language)")
	flag.StringVar(&opts.sheet, "sheet", "", "sheet to import (default: first sheet)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if errors.Is(err, errMissingFlag) {
			flag.Usage()
		}
		log.Printf("deckimport: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts runOptions, out io.Writer) error {
	if strings.TrimSpace(opts.file) == "" {
		return fmt.Errorf("%w: -file", errMissingFlag)
	}
	if strings.TrimSpace(opts.userID) == "" {
		return fmt.Errorf("%w: -user", errMissingFlag)
	}

	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l := logger.Setup(cfg.Server)

	db, err := database.Open(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if err := db.Migrate(ctx, l); err != nil {
		return err
	}

	items, contents := db.Stores(l)
	reviews := review.NewService(
		items,
		db.TxRunner(),
		srs.NewServiceWithParams(srs.ParamsFromConfig(cfg.SRS)),
		content.NewStoreProvider(contents),
		clock.Real{},
		review.ConfigFromSettings(cfg),
		l,
	)

	language := opts.language
	if language == "" {
		language = cfg.Content.DefaultLanguage
	}

	importer := deckimport.NewImporter(contents, reviews, clock.Real{}, l)
	res, err := importer.ImportFile(ctx, opts.file, deckimport.Options{
		UserID:   opts.userID,
		Language: language,
		Sheet:    opts.sheet,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printResult(out, res)
	return nil
}

func printResult(out io.Writer, res *deckimport.Result) {
	fmt.Fprintf(out, "sheet:            %s\n", res.Sheet)
	fmt.Fprintf(out, "rows processed:   %d\n", res.Processed)
	fmt.Fprintf(out, "words enrolled:   %d\n", res.Imported)
	fmt.Fprintf(out, "already enrolled: %d\n", res.AlreadyEnrolled)
	fmt.Fprintf(out, "content stored:   %d\n", res.ContentStored)
	if len(res.RowErrors) == 0 {
		return
	}
	fmt.Fprintf(out, "row errors:       %d\n", len(res.RowErrors))
	for _, rowErr := range res.RowErrors {
		fmt.Fprintf(out, "  %s\n", rowErr.Error())
	}
}
