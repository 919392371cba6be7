package domain

import "time"

// WordContent is the display material shown for a word during review.
// It is owned by the content provider, not by the scheduler.
type WordContent struct {
	Word        string    `json:"word"`
	Language    string    `json:"language"`
	Translation string    `json:"translation"`
	Mnemonic    string    `json:"mnemonic,omitempty"`
	Example     string    `json:"example,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	AudioURL    string    `json:"audio_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks that the content identifies a word and carries a translation.
func (c *WordContent) Validate() error {
	if c.Word == "" {
		return NewValidationError("word", "cannot be empty")
	}
	if c.Language == "" {
		return NewValidationError("language", "cannot be empty")
	}
	if c.Translation == "" {
		return NewValidationError("translation", "cannot be empty")
	}
	return nil
}

// VocabStats summarizes a user's collection.
type VocabStats struct {
	Total         int `json:"total"`
	DueCount      int `json:"due_count"`
	MasteredCount int `json:"mastered_count"`
	Learning      int `json:"learning"`
}
