// Package apperrors defines the error taxonomy shared across the service:
// validation failures, missing records, upstream transport failures, and
// lost concurrent updates. Every error carries a machine-readable kind.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the machine-readable classification of a failure.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream_error"
	KindConflict   Kind = "conflict"
)

// ErrNotFound is the sentinel for a missing record.
var ErrNotFound = &NotFoundError{Resource: "resource"}

// ValidationError reports malformed input or unresolvable references.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewUnresolvedProductsError names every product id the catalog failed to
// resolve so no partial order is ever created on a bad reference.
func NewUnresolvedProductsError(ids []string) *ValidationError {
	return &ValidationError{
		Field:   "items",
		Message: fmt.Sprintf("product id(s) not found in catalog: %s", strings.Join(ids, ", ")),
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// NotFoundError reports a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }

// Is lets any NotFoundError match the ErrNotFound sentinel.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// UpstreamError reports a transport failure or timeout talking to a
// collaborator service. It is never conflated with an empty result.
type UpstreamError struct {
	Service string
	Err     error
}

func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream call failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Kind() Kind { return KindUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConflictError reports a concurrent update that lost its race.
type ConflictError struct {
	Resource string
	ID       string
	Message  string
}

func NewConflictError(resource, id, message string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id, Message: message}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Message)
}

func (e *ConflictError) Kind() Kind { return KindConflict }

// KindOf returns the taxonomy kind for err, or an empty Kind for errors
// outside the taxonomy.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
