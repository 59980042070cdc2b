package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	// ErrUserInactive matches ErrInvalidToken as well.
	ErrUserInactive = fmt.Errorf("user is inactive: %w", ErrInvalidToken)
)

// NonFieldErrors is the key used for errors that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError collects messages per input field.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError(field, msg string) *ValidationError {
	e := &ValidationError{Fields: map[string][]string{}}
	e.Add(field, msg)
	return e
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
