package regexflowclient

import (
	"errors"
	"fmt"

	"github.com/GregMSThompson/regexflow/internal/errs"
)

// ErrUnauthenticated is returned when no token is held or the server rejected it.
var ErrUnauthenticated = errors.New("not signed in")

// APIError is a non-2xx answer. Message is the server's text, or a generic fallback
// when the body carried none.
type APIError struct {
	Status  int
	Code    string
	Message string
	typed   error
}

func (e *APIError) Error() string { return e.Message }

// Unwrap exposes the errs taxonomy so callers can use errors.As across the wire.
func (e *APIError) Unwrap() error { return e.typed }

func newAPIError(status int, code, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}
	e := &APIError{Status: status, Code: code, Message: message}
	switch code {
	case "not_found":
		e.typed = errs.NewNotFoundError(message)
	case "already_exists":
		e.typed = errs.NewAlreadyExistsError(message)
	case "invalid_input":
		e.typed = errs.NewValidationError(message)
	case "invalid_state_transition":
		e.typed = &errs.InvalidStateTransitionError{ErrorMessage: errs.ErrorMessage{Message: message}}
	case "duplicate_pattern":
		e.typed = errs.NewDuplicatePatternError(message, "", "")
	case "forbidden":
		e.typed = errs.NewForbiddenError(message)
	case "unauthenticated":
		e.typed = ErrUnauthenticated
	}
	return e
}
