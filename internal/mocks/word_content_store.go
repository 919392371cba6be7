package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/store"
)

// MockWordContentStore is an in-memory store.WordContentStore.
type MockWordContentStore struct {
	GetErr    error
	UpsertErr error

	mu          sync.Mutex
	contents    map[string]*domain.WordContent
	upsertCalls int
}

var _ store.WordContentStore = (*MockWordContentStore)(nil)

// NewMockWordContentStore creates a store holding the given contents.
func NewMockWordContentStore(contents ...*domain.WordContent) *MockWordContentStore {
	m := &MockWordContentStore{contents: make(map[string]*domain.WordContent)}
	for _, c := range contents {
		cp := *c
		m.contents[contentKey(c.Word, c.Language)] = &cp
	}
	return m
}

// Get implements store.WordContentStore.
func (m *MockWordContentStore) Get(ctx context.Context, word, language string) (*domain.WordContent, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[contentKey(word, language)]
	if !ok {
		return nil, store.ErrWordContentNotFound
	}
	cp := *c
	return &cp, nil
}

// Upsert implements store.WordContentStore.
func (m *MockWordContentStore) Upsert(ctx context.Context, c *domain.WordContent) error {
	m.mu.Lock()
	m.upsertCalls++
	m.mu.Unlock()

	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.contents[contentKey(c.Word, c.Language)] = &cp
	return nil
}

// WithTx implements store.WordContentStore.
func (m *MockWordContentStore) WithTx(_ *sql.Tx) store.WordContentStore {
	return m
}

// UpsertCalls returns how many times Upsert was called.
func (m *MockWordContentStore) UpsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

func contentKey(word, language string) string {
	return language + "\x00" + word
}
