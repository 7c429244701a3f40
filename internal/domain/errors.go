package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrNotEditing is returned by save when no row of the list is in edit mode.
	ErrNotEditing = errors.New("no record is being edited")
	// ErrUnknownRecord is returned when an action names an id that the list does not hold.
	ErrUnknownRecord = errors.New("record is not in the list")
	// ErrReadOnly is returned when a non-admin session attempts an admin-only mutation.
	ErrReadOnly = errors.New("only managers can change this list")
)

// GenericFailure is shown when the server gave no usable message.
const GenericFailure = "An unknown error occurred."

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrUnauthorized:
		return e.Status == 401
	case ErrForbidden:
		return e.Status == 403
	}
	return false
}

// UserMessage returns the text a notification should carry for err.
func UserMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if errors.Is(err, ErrReadOnly) {
		return ErrReadOnly.Error()
	}
	return GenericFailure
}
