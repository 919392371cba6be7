package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/store"
)

// Provider returns the display content for a word.
type Provider interface {
	// GetWordContent returns ErrContentNotFound when nothing is known for the word.
	GetWordContent(ctx context.Context, word, language string) (*domain.WordContent, error)
}

// Generator produces content for a word that has none stored.
type Generator interface {
	GenerateWordContent(ctx context.Context, word, language string) (*domain.WordContent, error)
}

// StoreProvider serves content from a WordContentStore.
type StoreProvider struct {
	store store.WordContentStore
}

var _ Provider = (*StoreProvider)(nil)

// NewStoreProvider creates a provider backed by s.
func NewStoreProvider(s store.WordContentStore) *StoreProvider {
	if s == nil {
		panic("word content store cannot be nil")
	}
	return &StoreProvider{store: s}
}

// GetWordContent implements Provider.
func (p *StoreProvider) GetWordContent(
	ctx context.Context,
	word, language string,
) (*domain.WordContent, error) {
	c, err := p.store.Get(ctx, normalize(word), normalize(language))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, word)
		}
		return nil, fmt.Errorf("failed to load word content: %w", err)
	}
	return c, nil
}

// FallbackProvider serves stored content and generates missing content on demand.
// Generated content is written back to the store so each word is generated once.
type FallbackProvider struct {
	store     store.WordContentStore
	generator Generator
	logger    *slog.Logger
	now       func() time.Time
}

var _ Provider = (*FallbackProvider)(nil)

// NewFallbackProvider creates a provider that consults generator for words
// missing from s.
func NewFallbackProvider(s store.WordContentStore, generator Generator, log *slog.Logger) *FallbackProvider {
	if s == nil {
		panic("word content store cannot be nil")
	}
	if generator == nil {
		panic("content generator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FallbackProvider{
		store:     s,
		generator: generator,
		logger:    log.With(slog.String("component", "content_provider")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetWordContent implements Provider.
func (p *FallbackProvider) GetWordContent(
	ctx context.Context,
	word, language string,
) (*domain.WordContent, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	word, language = normalize(word), normalize(language)

	c, err := p.store.Get(ctx, word, language)
	if err == nil {
		return c, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load word content: %w", err)
	}

	log.DebugContext(ctx, "no stored content, generating",
		slog.String("word", word),
		slog.String("language", language))

	generated, err := p.generator.GenerateWordContent(ctx, word, language)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if generated == nil {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, word)
	}

	generated.Word = word
	generated.Language = language
	generated.UpdatedAt = p.now()

	if err := p.store.Upsert(ctx, generated); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		// The content is still usable for this request.
		log.WarnContext(ctx, "failed to cache generated content",
			slog.String("word", word),
			slog.String("error", err.Error()))
	}

	return generated, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
