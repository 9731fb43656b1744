package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrNotVerified          = errors.New("account not verified")
	ErrCampaignNotActive    = errors.New("campaign is not accepting donations")
	ErrExpenseExceedsRaised = errors.New("expenses exceed raised funds")
	ErrInvalidTransition    = errors.New("invalid state transition")
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Unwrap lets callers match validation failures with ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
