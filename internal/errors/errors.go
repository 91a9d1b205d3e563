package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common application error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or expired credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a resource conflict
	ErrConflict = errors.New("resource conflict")

	// ErrActionNotPermitted indicates the action is not legal in the current cluster/host state
	ErrActionNotPermitted = errors.New("action not permitted in current state")

	// ErrInFlight indicates the same user action is already being processed
	ErrInFlight = errors.New("request already in flight")
)

// Kind classifies a failure surfaced by the installer client.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindClient is an HTTP 4xx answer.
	KindClient Kind = "client"
	// KindServer is an HTTP 5xx answer.
	KindServer Kind = "server"
	// KindMalformed means a response body could not be decoded.
	KindMalformed Kind = "malformed"
	// KindAuth means the request was never sent because the credentials are unusable.
	KindAuth Kind = "auth"
)

// ServerFailureReason is reported for 5xx answers that carry no reason of their own.
const ServerFailureReason = "The installer service failed to process the request. Please try again."

// APIError is the single error shape returned by the installer client. Code is
// the HTTP status (0 when no response was received) and Reason is the
// human-readable message shown to the user.
type APIError struct {
	Op     string
	Kind   Kind
	Code   int
	Reason string
	Err    error
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: API error %d: %s", e.Op, e.Code, e.Reason)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an APIError against the sentinel errors by status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrConflict:
		return e.Code == http.StatusConflict
	case ErrUnauthorized:
		return e.Kind == KindAuth || e.Code == http.StatusUnauthorized
	case ErrInvalidInput:
		return e.Code == http.StatusBadRequest
	}
	return false
}

// NewAPIError creates a new API error
func NewAPIError(op string, kind Kind, code int, reason string, err error) *APIError {
	return &APIError{
		Op:     op,
		Kind:   kind,
		Code:   code,
		Reason: reason,
		Err:    err,
	}
}

// ValidationError represents a field-level validation failure caught before any request is sent
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// FieldErrors collects validation errors keyed by field name
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%d field(s) failed validation", len(f))
}

// Unwrap makes FieldErrors match ErrInvalidInput
func (f FieldErrors) Unwrap() error {
	return ErrInvalidInput
}

// NetworkError represents network-specific errors
type NetworkError struct {
	Host      string
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s to %s failed: %v", e.Operation, e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new network error
func NewNetworkError(host, operation string, err error) *NetworkError {
	return &NetworkError{
		Host:      host,
		Operation: operation,
		Err:       err,
	}
}

// Message returns the text to show a user for err: the installer's reason for
// API errors, the field message for validation errors, and err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// KindOf returns the Kind of an APIError in err's chain, or "" when there is none
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is checks if an error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
