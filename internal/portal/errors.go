package portal

import "errors"

// Sentinel errors for the failure taxonomy shared by every handler. Scoping
// failures on single-record reads surface as ErrNotFound on purpose: a
// probing caller must not learn that a foreign tenant's record exists. Batch
// operations are the exception — they abort whole with ErrForbidden.
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("record already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
