// Package errors provides the standardized error taxonomy shared by the form
// engine, the submission gateway and the event-request sender.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Field-level errors
const (
	ErrCodeFieldValidationFailed ErrorCode = "FIELD_VALIDATION_FAILED"
	ErrCodeFieldReadOnly         ErrorCode = "FIELD_READ_ONLY"
	ErrCodeUnknownField          ErrorCode = "UNKNOWN_FIELD"
)

// Submission errors
const (
	ErrCodeFormSubmissionBlocked   ErrorCode = "FORM_SUBMISSION_BLOCKED"
	ErrCodeSubmissionInFlight      ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodePayloadValidationFailed ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeTransportError          ErrorCode = "TRANSPORT_ERROR"
	ErrCodeSubmissionRejected      ErrorCode = "SUBMISSION_REJECTED"
)

// Event request / mail errors
const (
	ErrCodeEmailPatternMismatch ErrorCode = "EMAIL_PATTERN_MISMATCH"
	ErrCodeMailSendFailed       ErrorCode = "MAIL_SEND_FAILED"
	ErrCodeEventRequestNotSaved ErrorCode = "EVENT_REQUEST_NOT_SAVED"
	ErrCodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns the error after attaching a metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFieldValidationError creates a non-retryable per-field error. Message is
// the rule's UI copy.
func NewFieldValidationError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldValidationFailed,
		Message:   message,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldReadOnlyError rejects a user edit of a derived field.
func NewFieldReadOnlyError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldReadOnly,
		Message:   "Field is read-only",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownFieldError(form, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownField,
		Message:   "Field is not part of the form",
		Details:   fmt.Sprintf("form: %s, field: %s", form, field),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewFormSubmissionBlockedError is returned when aggregate validity is false
// at submit time. No request is attempted.
func NewFormSubmissionBlockedError(form string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormSubmissionBlocked,
		Message:   "Please fix the highlighted fields before submitting",
		Details:   fmt.Sprintf("form: %s", form),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionInFlightError(form string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A submission is already in progress",
		Details:   fmt.Sprintf("form: %s", form),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadValidationError is the gateway's fail-fast result when the
// defensive re-validation of a snapshot or payload fails.
func NewPayloadValidationError(form string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Form data is invalid",
		Details:   fmt.Sprintf("form: %s, errors: %s", form, strings.Join(problems, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"errors": problems},
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError wraps a network level failure of the outbound request.
func NewTransportError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportError,
		Message:   "Could not reach the server, please try again",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionRejectedError reports a non-2xx response. reason is shown to
// the user when the server supplied one.
func NewSubmissionRejectedError(endpoint string, status int, reason string) *StandardError {
	if reason == "" {
		reason = "The server rejected the request"
	}
	return &StandardError{
		Code:      ErrCodeSubmissionRejected,
		Message:   reason,
		Details:   fmt.Sprintf("endpoint: %s, status: %d", endpoint, status),
		Retryable: status >= 500,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailPatternError carries the literal UI copy for a rejected address.
func NewEmailPatternError(email, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailPatternMismatch,
		Message:   message,
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMailSendFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMailSendFailed,
		Message:   "Failed to send the event request mail",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEventRequestNotSavedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEventRequestNotSaved,
		Message:   "Save the event request first",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError normalizes an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Inspection Helpers
// ==========================

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// UserMessage returns the string a form should display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if stdErr, ok := As(err); ok {
		return stdErr.Message
	}
	return "Something went wrong, please try again"
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportError: true,
	ErrCodeMailSendFailed: true,
}

// IsRetryableErrorCode reports whether a user may reasonably retry. Nothing in
// this module retries automatically.
func IsRetryableErrorCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFieldValidationFailed, ErrCodeFieldReadOnly, ErrCodeUnknownField,
		ErrCodePayloadValidationFailed, ErrCodeEmailPatternMismatch:
		return "validation"
	case ErrCodeFormSubmissionBlocked, ErrCodeSubmissionInFlight, ErrCodeEventRequestNotSaved:
		return "submission"
	case ErrCodeTransportError, ErrCodeSubmissionRejected:
		return "transport"
	case ErrCodeMailSendFailed:
		return "mail"
	default:
		return "internal"
	}
}
