package stamp

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every typed error below unwraps to one of these, so callers
// can branch with errors.Is without knowing the concrete type.
var (
	ErrInvalidInput  = errors.New("stamp: invalid input")
	ErrConfiguration = errors.New("stamp: invalid configuration")
	ErrGeometry      = errors.New("stamp: geometry error")
)

// InvalidInputError reports a malformed construction argument.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("stamp: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports an enumerated selector outside its recognized set.
type ConfigurationError struct {
	Field string
	Value string
	Valid []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stamp: %s must be one of %s, not %q",
		e.Field, strings.Join(e.Valid, ", "), e.Value)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// GeometryError reports a patch that cannot be reconciled with the base terrain.
type GeometryError struct {
	Stage  string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("stamp: %s: %s", e.Stage, e.Reason)
}

// Unwrap returns ErrGeometry.
func (e *GeometryError) Unwrap() error { return ErrGeometry }
