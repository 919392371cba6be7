package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/service/review"
)

// WordData is the display content of a word in a review session.
type WordData struct {
	Word        string `json:"word"`
	Language    string `json:"language"`
	Translation string `json:"translation,omitempty"`
	Mnemonic    string `json:"mnemonic,omitempty"`
	Example     string `json:"example,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

// SRSData is the scheduling state of a word as shown to clients.
type SRSData struct {
	Level          int       `json:"level"`
	Repetitions    int       `json:"repetitions"`
	NextReviewTime time.Time `json:"nextReviewTime"`
	Interval       int       `json:"interval"`
	EaseFactor     float64   `json:"easeFactor"`
}

// ReviewWord is one word of a review deck.
type ReviewWord struct {
	UserWordID string   `json:"userWordId"`
	WordData   WordData `json:"wordData"`
	SRSData    SRSData  `json:"srsData"`
}

// ReviewDeckResponse is the body of GET /review.
type ReviewDeckResponse struct {
	Words        []ReviewWord `json:"words"`
	RemainingDue int          `json:"remainingDue"`
}

// SubmitReviewRequest is the body of POST /review.
// Difficulty is a pointer so that a missing field is distinguishable from 0 (HARD).
type SubmitReviewRequest struct {
	UserWordID uuid.UUID `json:"userWordId" validate:"required"`
	Difficulty *int      `json:"difficulty" validate:"required"`
}

// SubmitReviewResponse is the body returned by POST /review.
type SubmitReviewResponse struct {
	Success bool       `json:"success"`
	Word    ReviewWord `json:"word"`
}

// VocabStatsResponse is the body of GET /review/stats.
type VocabStatsResponse struct {
	Total         int `json:"total"`
	DueCount      int `json:"dueCount"`
	MasteredCount int `json:"masteredCount"`
	Learning      int `json:"learning"`
}

// AddWordRequest is the body of POST /words.
type AddWordRequest struct {
	Word     string `json:"word" validate:"required,max=200"`
	Language string `json:"language" validate:"omitempty,min=2,max=16"`
}

// AddWordResponse is the body returned by POST /words.
type AddWordResponse struct {
	Created bool       `json:"created"`
	Word    ReviewWord `json:"word"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// reviewWordFromItem converts an item and optional content to its wire form.
// Without content only the word and language are filled in.
func reviewWordFromItem(item *domain.ReviewItem, content *domain.WordContent) ReviewWord {
	word := ReviewWord{
		UserWordID: item.ID.String(),
		WordData: WordData{
			Word:     item.Word,
			Language: item.Language,
		},
		SRSData: SRSData{
			Level:          item.Level,
			Repetitions:    item.Repetitions,
			NextReviewTime: item.NextReviewAt.UTC(),
			Interval:       item.IntervalDays,
			EaseFactor:     item.EaseFactor,
		},
	}

	if content != nil {
		word.WordData.Translation = content.Translation
		word.WordData.Mnemonic = content.Mnemonic
		word.WordData.Example = content.Example
		word.WordData.ImageURL = content.ImageURL
		word.WordData.AudioURL = content.AudioURL
	}

	return word
}

func deckToResponse(deck *review.Deck) ReviewDeckResponse {
	resp := ReviewDeckResponse{
		Words:        make([]ReviewWord, 0, len(deck.Entries)),
		RemainingDue: deck.RemainingDue,
	}
	for _, entry := range deck.Entries {
		resp.Words = append(resp.Words, reviewWordFromItem(entry.Item, entry.Content))
	}
	return resp
}

func statsToResponse(stats domain.VocabStats) VocabStatsResponse {
	return VocabStatsResponse{
		Total:         stats.Total,
		DueCount:      stats.DueCount,
		MasteredCount: stats.MasteredCount,
		Learning:      stats.Learning,
	}
}
