package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/domain"
)

// MockContentProvider implements content.Provider for testing.
// Words listed in Errors fail with the given error; words missing from
// Contents fail with content.ErrContentNotFound.
type MockContentProvider struct {
	GetWordContentFn func(ctx context.Context, word, language string) (*domain.WordContent, error)

	Contents map[string]*domain.WordContent
	Errors   map[string]error

	mu    sync.Mutex
	calls []string
}

var _ content.Provider = (*MockContentProvider)(nil)

// NewMockContentProvider returns a provider with translated content for each word.
func NewMockContentProvider(words ...string) *MockContentProvider {
	m := &MockContentProvider{
		Contents: make(map[string]*domain.WordContent),
		Errors:   make(map[string]error),
	}
	for _, w := range words {
		m.Contents[w] = &domain.WordContent{
			Word:        w,
			Language:    domain.DefaultLanguage,
			Translation: "translation of " + w,
		}
	}
	return m
}

// GetWordContent implements content.Provider.
func (m *MockContentProvider) GetWordContent(
	ctx context.Context,
	word, language string,
) (*domain.WordContent, error) {
	m.mu.Lock()
	m.calls = append(m.calls, word)
	m.mu.Unlock()

	if m.GetWordContentFn != nil {
		return m.GetWordContentFn(ctx, word, language)
	}
	if err, ok := m.Errors[word]; ok {
		return nil, err
	}
	c, ok := m.Contents[word]
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrContentNotFound, word)
	}
	cp := *c
	return &cp, nil
}

// Calls returns the words requested so far, in order.
func (m *MockContentProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
