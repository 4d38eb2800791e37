package query

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is wrapped by *InvalidFilterError.
var ErrInvalidFilter = errors.New("query: invalid filter")

// InvalidFilterError reports a where-map key, operator, or relation name
// the compiler does not recognize.
type InvalidFilterError struct {
	Model  string
	Detail string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("query: invalid filter on %s: %s", e.Model, e.Detail)
}

func (e *InvalidFilterError) Unwrap() error { return ErrInvalidFilter }

func (e *InvalidFilterError) Is(target error) bool { return target == ErrInvalidFilter }

func (e *InvalidFilterError) Context() map[string]any {
	return map[string]any{"model": e.Model, "detail": e.Detail}
}

// IsInvalidFilter reports whether err is, or wraps, an *InvalidFilterError.
func IsInvalidFilter(err error) bool {
	var e *InvalidFilterError
	return errors.As(err, &e)
}
