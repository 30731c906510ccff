// Package errs defines the error taxonomy shared across the storefront core.
// Handlers map these types to HTTP statuses in one place; nothing retries
// automatically, so every error carries enough detail for the caller to decide.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateOrder is returned by the payment repository when a record
	// with the same order id already exists. Callers should regenerate
	// identifiers and retry.
	ErrDuplicateOrder = errors.New("order id already exists")

	// ErrVersionConflict signals that a conditional write lost a race with
	// another writer. The caller re-reads and retries.
	ErrVersionConflict = errors.New("collection version conflict")
)

// ConfigurationError means a required credential or setting is absent or
// unusable. Fatal for the operation, never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

func NewConfiguration(msg string) *ConfigurationError {
	return &ConfigurationError{Msg: msg}
}

// ValidationError reports missing or malformed request fields.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation: missing fields: %s", strings.Join(e.Fields, ", "))
	}
	return "validation: " + e.Msg
}

func NewValidation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func NewValidationMsg(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

// PersistenceError wraps a backend read or write failure, naming the backend
// that was active when the operation failed.
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s on %s backend: %v", e.Op, e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistence(backend, op string, err error) *PersistenceError {
	return &PersistenceError{Backend: backend, Op: op, Err: err}
}

// NotFoundError reports an update targeting a record that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// GatewayError carries the payment gateway's own message. The local record is
// retained in its prior state for manual reconciliation.
type GatewayError struct {
	Msg string
	Err error
}

func (e *GatewayError) Error() string { return "gateway: " + e.Msg }

func (e *GatewayError) Unwrap() error { return e.Err }

func NewGateway(msg string, err error) *GatewayError {
	return &GatewayError{Msg: msg, Err: err}
}
