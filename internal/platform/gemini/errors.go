package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyWord is returned when asked to generate content for an empty word.
	ErrEmptyWord = errors.New("word cannot be empty")
)
