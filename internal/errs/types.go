package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type ForbiddenError struct {
	ErrorMessage
}

// InvalidStateTransitionError is returned when a lifecycle action is attempted
// from a status that is not its precondition. The template is left unchanged.
type InvalidStateTransitionError struct {
	ErrorMessage
	From string
	To   string
}

// DuplicatePatternError is returned when a live template already uses the pattern text.
type DuplicatePatternError struct {
	ErrorMessage
	ExistingID     string
	ExistingStatus string
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewInvalidStateTransitionError(from, to string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("cannot transition from %s to %s", from, to)},
		From:         from,
		To:           to,
	}
}

// NewInvalidActionError reports a guard failure that is not a plain status mismatch,
// such as a non-owner trying to submit or a maker reviewing their own template.
func NewInvalidActionError(from, message string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		ErrorMessage: ErrorMessage{Message: message},
		From:         from,
	}
}

func NewDuplicatePatternError(message, existingID, existingStatus string) *DuplicatePatternError {
	if message == "" {
		message = fmt.Sprintf("This regex pattern already exists with status: %s. Cannot submit duplicate.", existingStatus)
	}
	return &DuplicatePatternError{
		ErrorMessage:   ErrorMessage{Message: message},
		ExistingID:     existingID,
		ExistingStatus: existingStatus,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}
