package usecase

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrProviderUnavailable   = errors.New("metadata provider unavailable")
	ErrValidationFailed      = errors.New("validation failed")
	ErrRaceLost              = errors.New("no longer available")
	ErrJobAlreadyRunning     = errors.New("sync job already running")
	ErrInvalidRange          = errors.New("invalid sync range")
)

// ValidationError carries every violated transaction rule.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
