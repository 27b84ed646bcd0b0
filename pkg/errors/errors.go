package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// AppError represents an application error.
// Code is the coarse category used for status mapping, Reason is the stable
// machine-readable cause returned to clients.
type AppError struct {
	Code    string      `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	code := e.Code
	if e.Reason != "" {
		code = e.Code + "/" + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithReason returns a copy of the error carrying the given reason.
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	cp.Reason = reason
	return &cp
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToJSON converts an error to the standard JSON response.
// Causes of internal errors are only exposed when debug is set.
func ToJSON(err error, traceID string, debug bool) (int, []byte) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternal("An internal error occurred", err)
	}

	body := ErrorBody{
		Code:    appErr.Code,
		Reason:  appErr.Reason,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == CodeInternal {
		body.Message = "An internal error occurred"
		body.Details = nil
		if debug && appErr.Err != nil {
			body.Details = appErr.Err.Error()
		}
	}

	data, _ := json.Marshal(ErrorResponse{Error: body, TraceID: traceID})
	return HTTPStatus(appErr), data
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// GRPCStatus converts an error to a gRPC status
func GRPCStatus(err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, "internal error")
	}

	var code codes.Code
	switch appErr.Code {
	case CodeValidation:
		code = codes.InvalidArgument
	case CodeNotFound:
		code = codes.NotFound
	case CodeConflict:
		code = codes.FailedPrecondition
	case CodeUnauthorized:
		code = codes.Unauthenticated
	case CodeForbidden:
		code = codes.PermissionDenied
	default:
		return status.Error(codes.Internal, "internal error")
	}

	msg := appErr.Message
	if appErr.Reason != "" {
		msg = appErr.Reason + ": " + msg
	}
	return status.Error(code, msg)
}

// Constructor functions

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id '%v' not found", resource, id),
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewForbidden creates a forbidden error
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HasReason checks if an error carries a specific reason
func HasReason(err error, reason string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason == reason
	}
	return false
}

// OrInternal returns err unchanged when it is already an AppError and
// wraps it as an internal error otherwise
func OrInternal(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewInternal(message, err)
}
