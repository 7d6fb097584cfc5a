package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch marks a source whose relation or optional column is missing.
	ErrSchemaMismatch = errors.New("pool source schema mismatch")
	// ErrNotAvailable is returned when a conditional draft finds the entry no longer available.
	ErrNotAvailable = errors.New("pool entry no longer available")
)

type SourceErrorKind int

const (
	SourceErrorOther SourceErrorKind = iota
	SourceErrorSchemaMismatch
)

func (k SourceErrorKind) String() string {
	switch k {
	case SourceErrorSchemaMismatch:
		return "schema_mismatch"
	default:
		return "other"
	}
}

// SourceError is the only error shape a Source returns.
type SourceError struct {
	Source string
	Kind   SourceErrorKind
	Err    error
}

func NewSourceError(source string, kind SourceErrorKind, err error) *SourceError {
	return &SourceError{Source: source, Kind: kind, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("pool source %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func (e *SourceError) Is(target error) bool {
	return target == ErrSchemaMismatch && e.Kind == SourceErrorSchemaMismatch
}

// KindOf classifies any source error. Unknown errors are SourceErrorOther.
func KindOf(err error) SourceErrorKind {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr.Kind
	}
	return SourceErrorOther
}
