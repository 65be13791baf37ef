package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated covers every authentication failure: bad credentials,
// missing/invalid/expired token. It is deliberately detail-free so the
// boundary leaks nothing about which check failed.
var ErrUnauthenticated = errors.New("unauthenticated")

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// PermissionError is an authorization denial. The reason text is part of
// the API contract and is surfaced verbatim with a 403.
type PermissionError struct {
	Reason string
}

func (e PermissionError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}

// Is enables errors.Is matching on PermissionError.
func (e PermissionError) Is(target error) bool {
	_, ok := target.(PermissionError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionError)
	return ok
}

// ErrForbidden is the sentinel error for authorization denials.
var ErrForbidden = PermissionError{}

// ValidationError rejects malformed input before it reaches the store.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return "invalid input"
	}
	return e.Message
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrInvalid is the sentinel error for validation failures.
var ErrInvalid = ValidationError{}
