package domain

import "errors"

var (
	// ErrValidation means the caller must fix its input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned for ids the store does not know (stale references).
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps any failure of the backing task store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInterpreterUnavailable wraps any failure of the chat interpreter webhook.
	ErrInterpreterUnavailable = errors.New("interpreter unavailable")
)

// IsValidation reports whether err is a user-correctable input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
