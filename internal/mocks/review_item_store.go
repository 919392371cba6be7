package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/store"
)

// MockReviewItemStore is an in-memory store.ReviewItemStore.
// It is safe for concurrent use and applies the same optimistic version
// check as the SQL implementations.
type MockReviewItemStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, item *domain.ReviewItem) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	GetForUpdateFn func(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)
	UpdateFn       func(ctx context.Context, item *domain.ReviewItem) error
	FindDueFn      func(ctx context.Context, userID string, now time.Time, limit int) ([]*domain.ReviewItem, error)

	// Injected errors, returned before touching the data when set
	CreateErr      error
	GetErr         error
	UpdateErr      error
	FindDueErr     error
	CountDueErr    error
	CountByUserErr error

	mu          sync.Mutex
	items       map[uuid.UUID]*domain.ReviewItem
	updateCalls int
	findCalls   int
}

var _ store.ReviewItemStore = (*MockReviewItemStore)(nil)

// NewMockReviewItemStore creates an empty store.
func NewMockReviewItemStore(items ...*domain.ReviewItem) *MockReviewItemStore {
	m := &MockReviewItemStore{items: make(map[uuid.UUID]*domain.ReviewItem)}
	for _, item := range items {
		m.Put(item)
	}
	return m
}

// Put stores a copy of item, bypassing validation and uniqueness checks.
func (m *MockReviewItemStore) Put(item *domain.ReviewItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item.Clone()
}

// Item returns a copy of the stored item, or nil.
func (m *MockReviewItemStore) Item(id uuid.UUID) *domain.ReviewItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		return item.Clone()
	}
	return nil
}

// UpdateCalls returns how many times Update was called.
func (m *MockReviewItemStore) UpdateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCalls
}

// FindDueCalls returns how many times FindDue was called.
func (m *MockReviewItemStore) FindDueCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findCalls
}

// Create implements store.ReviewItemStore.
func (m *MockReviewItemStore) Create(ctx context.Context, item *domain.ReviewItem) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.UserID == item.UserID && existing.Word == item.Word {
			return store.ErrReviewItemExists
		}
	}
	m.items[item.ID] = item.Clone()
	return nil
}

// GetByID implements store.ReviewItemStore.
func (m *MockReviewItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.get(id)
}

// GetForUpdate implements store.ReviewItemStore.
func (m *MockReviewItemStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, id)
	}
	return m.get(id)
}

func (m *MockReviewItemStore) get(id uuid.UUID) (*domain.ReviewItem, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrReviewItemNotFound
	}
	return item.Clone(), nil
}

// GetByUserAndWord implements store.ReviewItemStore.
func (m *MockReviewItemStore) GetByUserAndWord(
	ctx context.Context,
	userID, word string,
) (*domain.ReviewItem, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.UserID == userID && item.Word == word {
			return item.Clone(), nil
		}
	}
	return nil, store.ErrReviewItemNotFound
}

// Update implements store.ReviewItemStore.
func (m *MockReviewItemStore) Update(ctx context.Context, item *domain.ReviewItem) error {
	m.mu.Lock()
	m.updateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, item)
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return store.ErrReviewItemNotFound
	}
	if stored.Version != item.Version {
		return store.ErrVersionConflict
	}
	item.Version++
	m.items[item.ID] = item.Clone()
	return nil
}

// FindDue implements store.ReviewItemStore.
func (m *MockReviewItemStore) FindDue(
	ctx context.Context,
	userID string,
	now time.Time,
	limit int,
) ([]*domain.ReviewItem, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()

	if m.FindDueFn != nil {
		return m.FindDueFn(ctx, userID, now, limit)
	}
	if m.FindDueErr != nil {
		return nil, m.FindDueErr
	}

	due := m.due(userID, now)
	if limit >= 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// CountDue implements store.ReviewItemStore.
func (m *MockReviewItemStore) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	if m.CountDueErr != nil {
		return 0, m.CountDueErr
	}
	return len(m.due(userID, now)), nil
}

// CountByUser implements store.ReviewItemStore.
func (m *MockReviewItemStore) CountByUser(
	ctx context.Context,
	userID string,
	now time.Time,
	masteryLevel int,
) (domain.VocabStats, error) {
	if m.CountByUserErr != nil {
		return domain.VocabStats{}, m.CountByUserErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var stats domain.VocabStats
	for _, item := range m.items {
		if item.UserID != userID {
			continue
		}
		stats.Total++
		if item.IsDue(now) {
			stats.DueCount++
		}
		if item.IsMastered(masteryLevel) {
			stats.MasteredCount++
		}
	}
	stats.Learning = stats.Total - stats.MasteredCount
	return stats, nil
}

// WithTx implements store.ReviewItemStore. The mock has no transactions,
// so the same store is returned.
func (m *MockReviewItemStore) WithTx(_ *sql.Tx) store.ReviewItemStore {
	return m
}

func (m *MockReviewItemStore) due(userID string, now time.Time) []*domain.ReviewItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	due := make([]*domain.ReviewItem, 0)
	for _, item := range m.items {
		if item.UserID == userID && item.IsDue(now) {
			due = append(due, item.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	return due
}
