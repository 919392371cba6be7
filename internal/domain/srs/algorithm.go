package srs

import (
	"math"
	"time"

	"github.com/wordloom/wordloom-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor based on the review difficulty.
//
// The ease factor is the multiplicative growth rate of the interval. Higher values
// mean the word is easier and intervals grow faster.
//
// Parameters:
//   - currentEF: The current ease factor of the item
//   - difficulty: The user's reported difficulty
//   - params: Configuration parameters for the algorithm
//
// Returns:
//   - The new ease factor, rounded to two decimals and never below params.MinEaseFactor
//
// Algorithm behavior:
//   - "Again" lowers the ease factor by params.AgainEasePenalty (0.20)
//   - "Hard" lowers it by params.HardEasePenalty (0.15)
//   - "Medium" leaves it unchanged
//   - "Easy" raises it by params.EasyEaseBonus (0.15); there is no upper bound
func calculateNewEaseFactor(
	currentEF float64,
	difficulty domain.Difficulty,
	params *Params,
) float64 {
	newEF := currentEF
	switch difficulty {
	case domain.DifficultyAgain:
		newEF -= params.AgainEasePenalty
	case domain.DifficultyHard:
		newEF -= params.HardEasePenalty
	case domain.DifficultyEasy:
		newEF += params.EasyEaseBonus
	}

	// Two decimals keep repeated adjustments from accumulating float drift.
	newEF = math.Round(newEF*100) / 100

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days.
//
// Parameters:
//   - currentInterval: The current interval in days (at least 1)
//   - easeFactor: The ease factor after this review's adjustment
//   - difficulty: The user's reported difficulty
//   - params: Configuration parameters for the algorithm
//
// Returns:
//   - The new interval in days, in [1, params.MaxIntervalDays]
//
// Algorithm behavior:
//   - "Again" resets the interval to 1 day
//   - "Hard" grows slowly: round(interval * ef * 0.8), at least 1
//   - "Medium" grows by the ease factor: round(interval * ef)
//   - "Easy" grows faster: round(interval * ef * 1.3)
//   - "Medium" and "Easy" always add at least one day, so consecutive successes
//     strictly lengthen the interval
//
// Rounding is math.Round (half away from zero).
func calculateNewInterval(
	currentInterval int,
	easeFactor float64,
	difficulty domain.Difficulty,
	params *Params,
) int {
	if currentInterval < 1 {
		currentInterval = 1
	}

	var next float64
	switch difficulty {
	case domain.DifficultyAgain:
		return 1
	case domain.DifficultyHard:
		next = math.Round(float64(currentInterval) * easeFactor * params.HardIntervalModifier)
	case domain.DifficultyMedium:
		next = math.Max(float64(currentInterval+1), math.Round(float64(currentInterval)*easeFactor))
	case domain.DifficultyEasy:
		next = math.Max(
			float64(currentInterval+1),
			math.Round(float64(currentInterval)*easeFactor*params.EasyIntervalModifier),
		)
	}

	// Cap before converting so huge products never overflow int.
	if next > float64(params.MaxIntervalDays) {
		return params.MaxIntervalDays
	}
	if next < 1 {
		return 1
	}
	return int(next)
}

// calculateNewLevel determines the display level after a review.
//
// A lapse drops the level by one tier, never below 1. Any other review raises
// the level by one each time the repetition count reaches a multiple of
// params.RepetitionsPerLevel, capped at params.MaxLevel.
func calculateNewLevel(level, newRepetitions int, difficulty domain.Difficulty, params *Params) int {
	if difficulty.IsLapse() {
		if level <= 1 {
			return 1
		}
		return level - 1
	}

	if newRepetitions > 0 && newRepetitions%params.RepetitionsPerLevel == 0 {
		level++
	}
	if level > params.MaxLevel {
		level = params.MaxLevel
	}
	if level < 1 {
		level = 1
	}
	return level
}

// calculateNextReviewDate converts an interval into the next due time.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState creates a new ReviewItem with updated scheduling values.
//
// The original item is never modified. Identity fields, word data, and the
// version are copied unchanged; the store owns version increments.
//
// Algorithm behavior:
//   - Repetitions reset to 0 on "Again" and increment otherwise
//   - The ease factor is adjusted first; the interval formula uses the new value
//   - NextReviewAt is now plus the new interval in days
//   - UpdatedAt is set to now
func calculateNextState(
	item *domain.ReviewItem,
	difficulty domain.Difficulty,
	now time.Time,
	params *Params,
) *domain.ReviewItem {
	next := item.Clone()
	now = now.UTC()

	if difficulty.IsLapse() {
		next.Repetitions = 0
	} else {
		next.Repetitions = item.Repetitions + 1
	}

	next.EaseFactor = calculateNewEaseFactor(item.EaseFactor, difficulty, params)
	next.IntervalDays = calculateNewInterval(item.IntervalDays, next.EaseFactor, difficulty, params)
	next.Level = calculateNewLevel(item.Level, next.Repetitions, difficulty, params)
	next.NextReviewAt = calculateNextReviewDate(next.IntervalDays, now)
	next.UpdatedAt = now

	return next
}
