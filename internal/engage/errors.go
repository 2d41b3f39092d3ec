package engage

import "errors"

var (
	// ErrEventNotFound aborts a workflow before any mutation.
	ErrEventNotFound = errors.New("event not found")

	// ErrAlreadyRegistered is the duplicate-registration conflict. It is
	// checked before insert so callers can distinguish it from storage
	// failures.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrUserNotFound is returned when a workflow is invoked for an unknown
	// user id.
	ErrUserNotFound = errors.New("user not found")
)
