package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for the approval workflow. Services wrap these with
// context via fmt.Errorf("%w"); handlers map them to HTTP statuses through
// pkg/response without string matching.
var (
	// ErrAuthorization: the acting role/group does not match the required
	// approver. Surfaced as permission denied, never retried.
	ErrAuthorization = errors.New("not permitted to act on this request")

	// ErrValidation: bad input (missing/oversized rejection reason, malformed
	// payload). Surfaced directly for the user to correct.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState: action attempted on a request that is no longer
	// pending. The client should refresh its view.
	ErrInvalidState = errors.New("request can no longer be acted upon")

	// ErrConflict: a concurrent writer changed the row between read and
	// write. The client should re-fetch and retry once.
	ErrConflict = errors.New("request state changed, please retry")

	// ErrNotFound: unknown request or user id.
	ErrNotFound = errors.New("not found")
)

// Validationf wraps ErrValidation with a user-facing message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
