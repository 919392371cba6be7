package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wordloom/wordloom-api/internal/api/shared"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/service/auth"
	"github.com/wordloom/wordloom-api/internal/service/review"
	"github.com/wordloom/wordloom-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, review.ErrReviewItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, review.ErrConflict),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Retryable store failures
	case errors.Is(err, review.ErrStoreUnavailable),
		errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Bad request errors
	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return "Invalid token"

	case errors.Is(err, review.ErrReviewItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Word not found"

	case errors.Is(err, review.ErrConflict),
		errors.Is(err, store.ErrVersionConflict):
		return "Word was updated by another request, please retry"

	case errors.Is(err, review.ErrStoreUnavailable),
		errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable, please retry"

	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return validationMessage(err)
	case errors.Is(err, review.ErrInvalidInput):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage names the offending field of a domain validation error
// without echoing its value.
func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return fmt.Sprintf("Invalid %s", verr.Field)
	}
	return "Validation error"
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// jsonFieldName lower-cases the first letter of a Go field name so the
// message matches the JSON request field, e.g. UserWordID -> userWordID.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	case "uuid":
		return "invalid UUID"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status code and safe message that correspond to err.
// A non-empty msg replaces the derived message for 500 responses only, so
// client-actionable messages are never hidden.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && msg != "" {
		safeMessage = msg
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict || status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, safeMessage, err, opts...)
}
