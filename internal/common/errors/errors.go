// internal/common/errors/errors.go
// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Funnel core error codes.
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeSeatsExhausted       ErrorCode = "SEATS_EXHAUSTED"
	ErrCodeReservationExpired   ErrorCode = "RESERVATION_EXPIRED"
	ErrCodeAlreadyFinalized     ErrorCode = "ALREADY_FINALIZED"
	ErrCodeDuplicateReservation ErrorCode = "DUPLICATE_RESERVATION"
	ErrCodeReservationNotFound  ErrorCode = "RESERVATION_NOT_FOUND"

	ErrCodeSignatureMismatch  ErrorCode = "SIGNATURE_MISMATCH"
	ErrCodeAmountMismatch     ErrorCode = "AMOUNT_MISMATCH"
	ErrCodeGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrCodeOrderNotFound      ErrorCode = "ORDER_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
// Scoring inputs are deterministic, so no retry helps.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Assessment input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSeatsExhaustedError creates a non-retryable capacity error.
func NewSeatsExhaustedError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeatsExhausted,
		Message:   "No seats remaining in program",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReservationExpiredError creates a non-retryable TTL error; the caller
// must re-reserve.
func NewReservationExpiredError(reservationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReservationExpired,
		Message:   "Reservation hold has expired",
		Details:   fmt.Sprintf("reservationId: %s", reservationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyFinalizedError creates a non-retryable terminal-state error.
func NewAlreadyFinalizedError(resource, id, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyFinalized,
		Message:   "Resource already reached a terminal state",
		Details:   fmt.Sprintf("%s %s is %s", resource, id, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateReservationError creates a non-retryable per-holder guard error.
func NewDuplicateReservationError(holderRef string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateReservation,
		Message:   "Holder already has a pending reservation",
		Details:   fmt.Sprintf("holderRef: %s", holderRef),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReservationNotFoundError creates a non-retryable lookup error.
func NewReservationNotFoundError(reservationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReservationNotFound,
		Message:   "Reservation not found",
		Details:   fmt.Sprintf("reservationId: %s", reservationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignatureMismatchError creates a non-retryable verification error.
// Details stay in the log; callers surface only a generic failure.
func NewSignatureMismatchError(providerOrderRef string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureMismatch,
		Message:   "Payment verification failed",
		Details:   fmt.Sprintf("providerOrderRef: %s", providerOrderRef),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAmountMismatchError creates a non-retryable verification error.
func NewAmountMismatchError(orderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAmountMismatch,
		Message:   "Payment amount or currency does not match order",
		Details:   fmt.Sprintf("orderId: %s", orderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayUnavailableError creates the only retryable payment error.
func NewGatewayUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayUnavailable,
		Message:   "Payment gateway unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderNotFoundError creates a non-retryable lookup error.
func NewOrderNotFoundError(ref string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Payment order not found",
		Details:   fmt.Sprintf("providerOrderRef: %s", ref),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The two sets
// are identical so process models catch on the same names.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeSeatsExhausted:           "SEATS_EXHAUSTED",
	ErrCodeReservationExpired:       "RESERVATION_EXPIRED",
	ErrCodeAlreadyFinalized:         "ALREADY_FINALIZED",
	ErrCodeDuplicateReservation:     "DUPLICATE_RESERVATION",
	ErrCodeReservationNotFound:      "RESERVATION_NOT_FOUND",
	ErrCodeSignatureMismatch:        "SIGNATURE_MISMATCH",
	ErrCodeAmountMismatch:           "AMOUNT_MISMATCH",
	ErrCodeGatewayUnavailable:       "GATEWAY_UNAVAILABLE",
	ErrCodeOrderNotFound:            "ORDER_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeGatewayUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SEAT") || strings.Contains(codeStr, "RESERVATION"):
		return "SEATS"
	case strings.Contains(codeStr, "SIGNATURE") || strings.Contains(codeStr, "AMOUNT") ||
		strings.Contains(codeStr, "GATEWAY") || strings.Contains(codeStr, "ORDER"):
		return "PAYMENT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
