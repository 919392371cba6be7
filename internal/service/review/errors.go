package review

import (
	"errors"
	"fmt"

	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/store"
)

// Common error types for the review service
var (
	// ErrReviewItemNotFound indicates that the item does not exist for the requesting user.
	ErrReviewItemNotFound = errors.New("review item not found")

	// ErrInvalidInput indicates a malformed request such as an unknown difficulty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the item changed while it was being reviewed.
	ErrConflict = errors.New("review item was modified concurrently")

	// ErrStoreUnavailable indicates the store could not be reached.
	ErrStoreUnavailable = errors.New("review store unavailable")
)

// ServiceError wraps errors from the review service with additional context.
// It matches both its category sentinel (Kind) and the underlying cause
// with errors.Is.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_review_deck", "update_word_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Kind is one of the package sentinels, or nil for unexpected failures
	Kind error
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the category and the cause to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newServiceError(operation, message string, kind, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Kind:      kind,
		Err:       err,
	}
}

// classify maps a lower-layer error onto the service taxonomy.
func classify(operation, message string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newServiceError(operation, message, ErrReviewItemNotFound, err)
	case errors.Is(err, store.ErrVersionConflict):
		return newServiceError(operation, message, ErrConflict, err)
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, store.ErrTransactionFailed):
		return newServiceError(operation, message, ErrStoreUnavailable, err)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, store.ErrInvalidEntity):
		return newServiceError(operation, message, ErrInvalidInput, err)
	default:
		return newServiceError(operation, message, nil, err)
	}
}
