// Package storetest holds behavioral tests shared by every store implementation.
// Each backend's test file builds a Harness and calls Run.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/store"
)

// Harness bundles the stores under test and the database they share.
type Harness struct {
	DB       *sql.DB
	Items    store.ReviewItemStore
	Contents store.WordContentStore
}

// base is a fixed instant so timestamps round-trip exactly on every backend.
var base = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newUserID() string {
	return "user-" + uuid.NewString()
}

func newItem(t *testing.T, userID, word string, due time.Time) *domain.ReviewItem {
	t.Helper()
	item, err := domain.NewReviewItem(userID, word, "es", base, 0)
	require.NoError(t, err)
	item.NextReviewAt = due
	return item
}

func assertSameInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "expected %s, got %s", want, got)
}

// Run executes the shared store behavior tests against h.
func Run(t *testing.T, h Harness) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, h) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, h) })
	t.Run("CreateInvalid", func(t *testing.T) { testCreateInvalid(t, h) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, h) })
	t.Run("UpdateVersioning", func(t *testing.T) { testUpdateVersioning(t, h) })
	t.Run("FindDueOrderingAndLimit", func(t *testing.T) { testFindDue(t, h) })
	t.Run("FindDueStableTies", func(t *testing.T) { testFindDueTies(t, h) })
	t.Run("CountByUser", func(t *testing.T) { testCountByUser(t, h) })
	t.Run("TransactionalReadModifyWrite", func(t *testing.T) { testTransactionalUpdate(t, h) })
	t.Run("ConcurrentSubmissionsSerialize", func(t *testing.T) { testConcurrentUpdates(t, h) })
	t.Run("WordContent", func(t *testing.T) { testWordContent(t, h) })
}

func testCreateAndGet(t *testing.T, h Harness) {
	ctx := context.Background()
	item := newItem(t, newUserID(), "gato", base)
	require.NoError(t, h.Items.Create(ctx, item))

	got, err := h.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.UserID, got.UserID)
	assert.Equal(t, "gato", got.Word)
	assert.Equal(t, "es", got.Language)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 0, got.Repetitions)
	assert.InDelta(t, 2.5, got.EaseFactor, 1e-9)
	assert.Equal(t, 1, got.IntervalDays)
	assert.Equal(t, 1, got.Version)
	assertSameInstant(t, item.NextReviewAt, got.NextReviewAt)
	assertSameInstant(t, item.CreatedAt, got.CreatedAt)

	byWord, err := h.Items.GetByUserAndWord(ctx, item.UserID, "gato")
	require.NoError(t, err)
	assert.Equal(t, item.ID, byWord.ID)
}

func testCreateDuplicate(t *testing.T, h Harness) {
	ctx := context.Background()
	userID := newUserID()
	require.NoError(t, h.Items.Create(ctx, newItem(t, userID, "perro", base)))

	err := h.Items.Create(ctx, newItem(t, userID, "perro", base))
	assert.ErrorIs(t, err, store.ErrReviewItemExists)
	assert.True(t, store.IsDuplicateError(err))

	// The same word for another user is allowed
	require.NoError(t, h.Items.Create(ctx, newItem(t, newUserID(), "perro", base)))
}

func testCreateInvalid(t *testing.T, h Harness) {
	item := newItem(t, newUserID(), "casa", base)
	item.IntervalDays = 0

	err := h.Items.Create(context.Background(), item)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func testGetMissing(t *testing.T, h Harness) {
	ctx := context.Background()

	_, err := h.Items.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
	assert.True(t, store.IsNotFoundError(err))

	_, err = h.Items.GetByUserAndWord(ctx, newUserID(), "nada")
	assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
}

func testUpdateVersioning(t *testing.T, h Harness) {
	ctx := context.Background()
	item := newItem(t, newUserID(), "libro", base)
	require.NoError(t, h.Items.Create(ctx, item))

	stale := item.Clone()

	item.Repetitions = 1
	item.Level = 2
	item.EaseFactor = 2.65
	item.IntervalDays = 3
	item.UpdatedAt = base.Add(time.Hour)
	item.NextReviewAt = item.UpdatedAt.AddDate(0, 0, 3)
	require.NoError(t, h.Items.Update(ctx, item))
	assert.Equal(t, 2, item.Version)

	got, err := h.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, 2, got.Level)
	assert.InDelta(t, 2.65, got.EaseFactor, 1e-9)
	assert.Equal(t, 3, got.IntervalDays)
	assertSameInstant(t, item.NextReviewAt, got.NextReviewAt)
	assertSameInstant(t, item.UpdatedAt, got.UpdatedAt)

	stale.Repetitions = 9
	assert.ErrorIs(t, h.Items.Update(ctx, stale), store.ErrVersionConflict)

	missing := newItem(t, newUserID(), "fantasma", base)
	assert.ErrorIs(t, h.Items.Update(ctx, missing), store.ErrReviewItemNotFound)
}

func testFindDue(t *testing.T, h Harness) {
	ctx := context.Background()
	userID := newUserID()
	now := base.Add(48 * time.Hour)

	var due []*domain.ReviewItem
	for i := 0; i < 25; i++ {
		item := newItem(t, userID, fmt.Sprintf("due-%02d", i), now.Add(-time.Duration(i+1)*time.Minute))
		require.NoError(t, h.Items.Create(ctx, item))
		due = append(due, item)
	}
	for i := 0; i < 3; i++ {
		item := newItem(t, userID, fmt.Sprintf("later-%d", i), now.Add(time.Duration(i+1)*time.Hour))
		require.NoError(t, h.Items.Create(ctx, item))
	}
	// Due items of another user never leak in
	require.NoError(t, h.Items.Create(ctx, newItem(t, newUserID(), "ajeno", base)))

	got, err := h.Items.FindDue(ctx, userID, now, 20)
	require.NoError(t, err)
	require.Len(t, got, 20)

	// Most overdue first: due-24 has the oldest timestamp
	for i, item := range got {
		assert.Equal(t, fmt.Sprintf("due-%02d", 24-i), item.Word)
		assert.False(t, item.NextReviewAt.After(now))
	}

	all, err := h.Items.FindDue(ctx, userID, now, 100)
	require.NoError(t, err)
	assert.Len(t, all, len(due))

	count, err := h.Items.CountDue(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	// Exactly due at now is included
	boundary, err := h.Items.FindDue(ctx, userID, now.Add(time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, boundary, 26)

	none, err := h.Items.FindDue(ctx, userID, now, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := h.Items.FindDue(ctx, newUserID(), now, 20)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testFindDueTies(t *testing.T, h Harness) {
	ctx := context.Background()
	userID := newUserID()
	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		item := newItem(t, userID, fmt.Sprintf("tie-%d", i), base)
		require.NoError(t, h.Items.Create(ctx, item))
		ids = append(ids, item.ID.String())
	}
	sort.Strings(ids)

	first, err := h.Items.FindDue(ctx, userID, base, 10)
	require.NoError(t, err)
	second, err := h.Items.FindDue(ctx, userID, base, 10)
	require.NoError(t, err)

	require.Len(t, first, 6)
	for i := range first {
		assert.Equal(t, ids[i], first[i].ID.String())
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func testCountByUser(t *testing.T, h Harness) {
	ctx := context.Background()
	userID := newUserID()
	now := base.Add(24 * time.Hour)

	for i := 0; i < 10; i++ {
		due := now.Add(time.Hour)
		if i < 4 {
			due = now.Add(-time.Hour)
		}
		item := newItem(t, userID, fmt.Sprintf("word-%d", i), due)
		if i >= 7 {
			item.Level = 5 + i - 7
		}
		require.NoError(t, h.Items.Create(ctx, item))
	}

	stats, err := h.Items.CountByUser(ctx, userID, now, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.VocabStats{Total: 10, DueCount: 4, MasteredCount: 3, Learning: 7}, stats)

	again, err := h.Items.CountByUser(ctx, userID, now, 5)
	require.NoError(t, err)
	assert.Equal(t, stats, again)

	empty, err := h.Items.CountByUser(ctx, newUserID(), now, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.VocabStats{}, empty)
}

func testTransactionalUpdate(t *testing.T, h Harness) {
	ctx := context.Background()
	item := newItem(t, newUserID(), "mesa", base)
	require.NoError(t, h.Items.Create(ctx, item))

	err := store.RunInTransaction(ctx, h.DB, func(ctx context.Context, tx *sql.Tx) error {
		txItems := h.Items.WithTx(tx)
		locked, err := txItems.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		locked.Repetitions++
		return txItems.Update(ctx, locked)
	})
	require.NoError(t, err)

	got, err := h.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
	assert.Equal(t, 2, got.Version)

	// A rolled back transaction leaves no trace
	err = store.RunInTransaction(ctx, h.DB, func(ctx context.Context, tx *sql.Tx) error {
		txItems := h.Items.WithTx(tx)
		locked, err := txItems.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		locked.Repetitions = 42
		if err := txItems.Update(ctx, locked); err != nil {
			return err
		}
		return store.ErrTransactionFailed
	})
	assert.ErrorIs(t, err, store.ErrTransactionFailed)

	got, err = h.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
}

func testConcurrentUpdates(t *testing.T, h Harness) {
	ctx := context.Background()
	item := newItem(t, newUserID(), "silla", base)
	require.NoError(t, h.Items.Create(ctx, item))

	const workers = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.RunInTransaction(ctx, h.DB, func(ctx context.Context, tx *sql.Tx) error {
				txItems := h.Items.WithTx(tx)
				locked, err := txItems.GetForUpdate(ctx, item.ID)
				if err != nil {
					return err
				}
				locked.Repetitions++
				return txItems.Update(ctx, locked)
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		// A backend may reject a racing writer, but never apply a stale write
		assert.ErrorIs(t, err, store.ErrVersionConflict)
	}

	got, err := h.Items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, succeeded, got.Repetitions)
	assert.Equal(t, 1+succeeded, got.Version)
	assert.Positive(t, succeeded)
}

func testWordContent(t *testing.T, h Harness) {
	ctx := context.Background()
	word := "palabra-" + uuid.NewString()[:8]

	_, err := h.Contents.Get(ctx, word, "es")
	assert.ErrorIs(t, err, store.ErrWordContentNotFound)

	c := &domain.WordContent{
		Word:        word,
		Language:    "es",
		Translation: "word",
		Mnemonic:    "para-bla",
		UpdatedAt:   base,
	}
	require.NoError(t, h.Contents.Upsert(ctx, c))

	got, err := h.Contents.Get(ctx, word, "es")
	require.NoError(t, err)
	assert.Equal(t, "word", got.Translation)
	assert.Equal(t, "para-bla", got.Mnemonic)
	assert.Empty(t, got.ImageURL)

	c.Translation = "term"
	c.AudioURL = "https://cdn.example.com/a.mp3"
	c.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, h.Contents.Upsert(ctx, c))

	got, err = h.Contents.Get(ctx, word, "es")
	require.NoError(t, err)
	assert.Equal(t, "term", got.Translation)
	assert.Equal(t, "https://cdn.example.com/a.mp3", got.AudioURL)
	assertSameInstant(t, base.Add(time.Hour), got.UpdatedAt)

	_, err = h.Contents.Get(ctx, word, "fr")
	assert.ErrorIs(t, err, store.ErrWordContentNotFound)

	assert.ErrorIs(t, h.Contents.Upsert(ctx, &domain.WordContent{Word: word, Language: "es"}), store.ErrInvalidEntity)
}
