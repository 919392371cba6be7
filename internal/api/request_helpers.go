package api

import (
	"log/slog"
	"net/http"

	"github.com/wordloom/wordloom-api/internal/api/shared"
	"github.com/wordloom/wordloom-api/internal/domain"
)

// requireUserID returns the authenticated user's ID from the request context.
// When it is missing a 401 response is written and the second result is false.
// The auth middleware always sets it, so this only fires on a wiring mistake.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return "", false
	}
	return userID, true
}
