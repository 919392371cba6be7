package mocks

import (
	"context"
	"sync"

	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/domain"
)

// MockGenerator implements content.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the GenerateWordContent behavior
	GenerateFn func(ctx context.Context, word, language string) (*domain.WordContent, error)

	// Default response values
	Content *domain.WordContent
	Err     error

	// Call tracking for verification
	mu    sync.Mutex
	Words []string
}

var _ content.Generator = (*MockGenerator)(nil)

// GenerateWordContent implements the content.Generator interface
func (m *MockGenerator) GenerateWordContent(
	ctx context.Context,
	word, language string,
) (*domain.WordContent, error) {
	m.mu.Lock()
	m.Words = append(m.Words, word)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, word, language)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Content == nil {
		return nil, nil
	}
	cp := *m.Content
	return &cp, nil
}

// Calls returns how many times the generator was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Words)
}

// MockGeneratorWithContentBlocked creates a MockGenerator that simulates content being blocked
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{Err: content.ErrContentBlocked}
}

// MockGeneratorWithTransientFailure creates a MockGenerator that simulates a transient failure
func MockGeneratorWithTransientFailure() *MockGenerator {
	return &MockGenerator{Err: content.ErrTransientFailure}
}
