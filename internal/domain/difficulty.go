package domain

import "fmt"

// Difficulty is the user's self-reported recall quality for a review.
// The integer values are part of the HTTP contract and must not change.
type Difficulty int

// Possible difficulty values.
const (
	DifficultyHard   Difficulty = 0
	DifficultyMedium Difficulty = 1
	DifficultyEasy   Difficulty = 2
	DifficultyAgain  Difficulty = 3
)

// ParseDifficulty converts a wire value into a Difficulty.
// Any value outside the closed set is rejected with ErrInvalidDifficulty.
func ParseDifficulty(v int) (Difficulty, error) {
	d := Difficulty(v)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDifficulty, v)
	}
	return d, nil
}

// Valid reports whether d is one of the four defined difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyHard, DifficultyMedium, DifficultyEasy, DifficultyAgain:
		return true
	default:
		return false
	}
}

// IsLapse reports whether the review counts as a failure.
func (d Difficulty) IsLapse() bool {
	return d == DifficultyAgain
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyHard:
		return "hard"
	case DifficultyMedium:
		return "medium"
	case DifficultyEasy:
		return "easy"
	case DifficultyAgain:
		return "again"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}
