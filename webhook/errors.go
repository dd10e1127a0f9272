package webhook

import "errors"

/* Error taxonomy for the management surface
 * Validation, authorization and not-found are distinct so the HTTP layer
 * can map them to 400, 403 and 404 without string matching
 */

// ErrNotFound indicates the endpoint or delivery does not exist, or belongs
// to a different tenant. Existence is never leaked across tenants.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the caller is not allowed to manage webhooks
var ErrForbidden = errors.New("forbidden")

// ValidationError indicates the caller supplied invalid input
type ValidationError struct {
	Reason string
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// Error returns the validation failure reason
func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
