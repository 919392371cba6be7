package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/domain"
)

var allDifficulties = []domain.Difficulty{
	domain.DifficultyHard,
	domain.DifficultyMedium,
	domain.DifficultyEasy,
	domain.DifficultyAgain,
}

func newTestItem(t *testing.T, now time.Time) *domain.ReviewItem {
	t.Helper()
	item, err := NewDefaultService().NewItem("user-1", "palabra", "es", now)
	require.NoError(t, err)
	return item
}

func TestNewDefaultService(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	require.NotNil(t, service)

	ds, ok := service.(*defaultService)
	require.True(t, ok)
	require.NotNil(t, ds.params)
	assert.Equal(t, 5, service.MasteryLevel())
}

func TestNewServiceWithParams_NilFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	service := NewServiceWithParams(nil)

	assert.Equal(t, NewDefaultParams().MasteryLevel, service.MasteryLevel())
}

func TestCalculateNextReview_Validation(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Now().UTC()

	_, err := service.CalculateNextReview(nil, domain.DifficultyEasy, now)
	assert.ErrorIs(t, err, ErrNilItem)

	_, err = service.CalculateNextReview(newTestItem(t, now), domain.Difficulty(7), now)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
}

func TestNewItem_UsesInitialDelay(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	service := NewServiceWithParams(NewParams(ParamsConfig{InitialReviewDelay: time.Hour}))

	item, err := service.NewItem("user-1", "Perro", "es", now)
	require.NoError(t, err)

	assert.Equal(t, "perro", item.Word)
	assert.Equal(t, now.Add(time.Hour), item.NextReviewAt)
}

func TestCalculateNextReview_EaseFloorHoldsForFailures(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	rng := rand.New(rand.NewSource(42))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 50; run++ {
		item := newTestItem(t, now)
		for step := 0; step < 40; step++ {
			d := domain.DifficultyHard
			if rng.Intn(2) == 0 {
				d = domain.DifficultyAgain
			}
			next, err := service.CalculateNextReview(item, d, now)
			require.NoError(t, err)
			require.GreaterOrEqual(t, next.EaseFactor, 1.3)
			item = next
		}
	}
}

func TestCalculateNextReview_InvariantsOverRandomSequences(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	rng := rand.New(rand.NewSource(7))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 100; run++ {
		now := start
		item := newTestItem(t, now)
		for step := 0; step < 30; step++ {
			d := allDifficulties[rng.Intn(len(allDifficulties))]
			now = now.Add(time.Duration(rng.Intn(72)) * time.Hour)

			next, err := service.CalculateNextReview(item, d, now)
			require.NoError(t, err)

			require.GreaterOrEqual(t, next.IntervalDays, 1)
			require.LessOrEqual(t, next.IntervalDays, 36500)
			require.GreaterOrEqual(t, next.EaseFactor, 1.3)
			require.GreaterOrEqual(t, next.Level, 1)
			require.Equal(t, next.UpdatedAt.AddDate(0, 0, next.IntervalDays), next.NextReviewAt)

			if d == domain.DifficultyAgain {
				require.Equal(t, 0, next.Repetitions)
				require.Equal(t, 1, next.IntervalDays)
			} else {
				require.Equal(t, item.Repetitions+1, next.Repetitions)
			}
			item = next
		}
	}
}

func TestCalculateNextReview_SuccessesGrowInterval(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	rng := rand.New(rand.NewSource(99))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 100; run++ {
		item := newTestItem(t, now)
		item.EaseFactor = 1.3 + rng.Float64()*2

		// Short sequences stay well below the interval cap.
		for step := 0; step < 6; step++ {
			d := domain.DifficultyMedium
			if rng.Intn(2) == 0 {
				d = domain.DifficultyEasy
			}
			next, err := service.CalculateNextReview(item, d, now)
			require.NoError(t, err)
			require.Greater(t, next.IntervalDays, item.IntervalDays)
			item = next
		}
	}
}
