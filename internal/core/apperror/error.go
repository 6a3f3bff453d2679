// Package apperror provides structured error handling for the allocation
// platform. All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. Allocation outcomes that are expected in normal operation
// (insufficient single-batch stock, shortdated advisories) are NOT errors;
// they are returned as result variants by the allocation services.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Caller contract violations (400)
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// Allocation-domain violations (422)
	CodeNoEligibleBatch      = "NO_ELIGIBLE_BATCH"
	CodeManualSelection      = "MANUAL_SELECTION_REQUIRED"
	CodeAmbiguousSerialBatch = "AMBIGUOUS_SERIAL_BATCH_LINK"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the platform.
// It implements the error interface and provides structured details for
// API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, batch tables, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewInvalidArgument creates a caller contract violation (400).
func NewInvalidArgument(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidArgument,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404).
func NewNotFound(entity string, key any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "key": key},
	}
}

// NewNoEligibleBatch signals that the candidate set filtered down to nothing.
// Advisory in most call paths; terminal only when the caller demanded a batch.
func NewNoEligibleBatch(itemCode, warehouse string) *AppError {
	return &AppError{
		Code:       CodeNoEligibleBatch,
		Message:    "no eligible batch for item at warehouse",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"itemCode": itemCode, "warehouse": warehouse},
	}
}

// NewManualSelectionRequired is the hard-fail form of the manual-selection
// outcome: no single batch can cover the requested quantity. The presentable
// eligible-batch table travels in Details under "batches".
func NewManualSelectionRequired(itemCode string, batches any) *AppError {
	return &AppError{
		Code:       CodeManualSelection,
		Message:    "no single batch has sufficient quantity; select a batch manually or split the row",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"itemCode": itemCode, "batches": batches},
	}
}

// NewAmbiguousSerialBatchLink rejects a serial number that maps to more than
// one batch.
func NewAmbiguousSerialBatchLink(serialNo string, batchIDs []string) *AppError {
	return &AppError{
		Code:       CodeAmbiguousSerialBatch,
		Message:    "serial number is linked to more than one batch",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"serialNo": serialNo, "batchIds": batchIDs},
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403).
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helpers ---

// IsAppError checks if err is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts an AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if err is CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
