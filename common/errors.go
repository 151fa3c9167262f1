package common

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. The api layer maps these onto HTTP statuses;
// everything else stays a plain wrapped error and surfaces as 500.

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// UnauthenticatedError means the caller presented no valid credentials
// (HTTP 401); PermissionDeniedError means valid credentials without the
// right to act (HTTP 403).
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string {
	return e.Message
}

type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewConflictError(resource, message string) error {
	return &ConflictError{Resource: resource, Message: message}
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func NewUnauthenticatedError(message string) error {
	return &UnauthenticatedError{Message: message}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsUnauthenticated(err error) bool {
	var e *UnauthenticatedError
	return errors.As(err, &e)
}

func IsPermissionDenied(err error) bool {
	var e *PermissionDeniedError
	return errors.As(err, &e)
}
