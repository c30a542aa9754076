// Package apperrors defines the error kinds the API maps onto HTTP
// statuses. Callers match with errors.Is against a zero value of the kind,
// so each type implements Is as a type check.
package apperrors

import "fmt"

// ErrValidation marks a request rejected before any side effect.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

func NewValidationError(format string, args ...interface{}) *ErrValidation {
	return &ErrValidation{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound marks a lookup that found no record.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

func NewNotFoundError(resource, id string) *ErrNotFound {
	return &ErrNotFound{Resource: resource, ID: id}
}

// ErrUpstream marks a failed call to an external service. StatusCode is zero
// for transport-level failures; Err then carries the underlying cause.
type ErrUpstream struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ErrUpstream) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

func (e *ErrUpstream) Is(target error) bool {
	_, ok := target.(*ErrUpstream)
	return ok
}

func NewUpstreamError(service string, statusCode int) *ErrUpstream {
	return &ErrUpstream{Service: service, StatusCode: statusCode}
}

func NewUpstreamTransportError(service string, err error) *ErrUpstream {
	return &ErrUpstream{Service: service, Err: err}
}

// ErrUnauthorized marks a rejected credential or token.
type ErrUnauthorized struct {
	Reason string
}

func (e *ErrUnauthorized) Error() string {
	return e.Reason
}

func (e *ErrUnauthorized) Is(target error) bool {
	_, ok := target.(*ErrUnauthorized)
	return ok
}

func NewUnauthorizedError(reason string) *ErrUnauthorized {
	return &ErrUnauthorized{Reason: reason}
}
