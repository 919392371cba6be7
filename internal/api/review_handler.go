package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wordloom/wordloom-api/internal/api/shared"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"github.com/wordloom/wordloom-api/internal/redact"
	"github.com/wordloom/wordloom-api/internal/service/review"
)

// ReviewHandler serves the review endpoints for the authenticated user.
type ReviewHandler struct {
	reviewService    review.Service
	defaultDeckLimit int
	logger           *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
// defaultDeckLimit is the deck size used when a request has no limit parameter.
func NewReviewHandler(
	reviewService review.Service,
	defaultDeckLimit int,
	logger *slog.Logger,
) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	if defaultDeckLimit <= 0 {
		defaultDeckLimit = review.DefaultConfig().DefaultDeckLimit
	}

	return &ReviewHandler{
		reviewService:    reviewService,
		defaultDeckLimit: defaultDeckLimit,
		logger:           logger.With(slog.String("component", "review_handler")),
	}
}

// GetReviewDeck handles GET /review?limit=N.
// It returns the user's due words, oldest first, with their display content.
func (h *ReviewHandler) GetReviewDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit := h.defaultDeckLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Debug("invalid limit parameter", slog.String("limit", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit: must be an integer")
			return
		}
		limit = parsed
	}

	deck, err := h.reviewService.GetReviewDeck(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review deck")
		return
	}

	log.Debug("review deck assembled",
		slog.Int("size", len(deck.Entries)),
		slog.Int("remaining_due", deck.RemainingDue))
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// SubmitReview handles POST /review.
// It records the user's difficulty rating for one word and returns its new schedule.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	difficulty, err := domain.ParseDifficulty(*req.Difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.reviewService.UpdateWordReview(r.Context(), userID, req.UserWordID, difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("item_id", item.ID.String()),
		slog.String("difficulty", difficulty.String()),
		slog.Int("interval_days", item.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		Success: true,
		Word:    reviewWordFromItem(item, nil),
	})
}

// GetStats handles GET /review/stats.
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.reviewService.GetUserVocabStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get vocabulary stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}

// AddWord handles POST /words.
// It responds 201 when the word was enrolled and 200 when the user already had it.
func (h *ReviewHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req AddWordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, created, err := h.reviewService.AddWord(r.Context(), userID, req.Word, req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add word")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		log.Info("word enrolled", slog.String("item_id", item.ID.String()))
	}
	shared.RespondWithJSON(w, r, status, AddWordResponse{
		Created: created,
		Word:    reviewWordFromItem(item, nil),
	})
}
