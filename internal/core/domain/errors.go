package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnableToLogin is returned for both an unknown email and a wrong
// password so callers cannot enumerate accounts.
var ErrUnableToLogin = &AuthenticationError{Message: "Unable to login"}

// ErrUnauthorized is returned for a missing, malformed or revoked token.
var ErrUnauthorized = &AuthenticationError{Message: "Unauthorized request"}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field rule for a request, so a
// caller can correct all of them at once.
type ValidationError struct {
	Violations []FieldViolation
}

func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))

	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthenticationError is deliberately generic. The cause of the failure
// (absent account, bad password, revoked token) is never exposed.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// DependencyError wraps a failure of a collaborator (task store,
// transcoder) that must abort the enclosing operation.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthentication(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
