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

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeRunInProgress     ErrorCode = "RUN_IN_PROGRESS"
	ErrCodeWhiteTestMissing  ErrorCode = "WHITE_TEST_MISSING"
	ErrCodeUpstreamFetch     ErrorCode = "UPSTREAM_FETCH_FAILED"
	ErrCodeSlotExhausted     ErrorCode = "SLOT_EXHAUSTED"
	ErrCodeMeetingCreate     ErrorCode = "MEETING_CREATE_FAILED"
	ErrCodeSchedulerInternal ErrorCode = "SCHEDULER_INTERNAL"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
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

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job variables failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRunInProgressError signals that another scheduling run holds the
// per-job lock. Retryable: the lock expires.
func NewRunInProgressError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunInProgress,
		Message:   "A scheduling run is already in progress for this job",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWhiteTestMissingError creates a non-retryable business error: the
// job posting has no screening test configured yet.
func NewWhiteTestMissingError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWhiteTestMissing,
		Message:   "Job posting has no screening test configured",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFetchError creates a retryable job-board API error.
func NewUpstreamFetchError(resource string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFetch,
		Message:   "Job-board API request failed",
		Details:   fmt.Sprintf("resource: %s, error: %s", resource, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSlotExhaustedError records that the probe gave up before finding a
// free slot for a candidate.
func NewSlotExhaustedError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSlotExhausted,
		Message:   "No free interview slot within the probe window",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMeetingCreateError creates a retryable meeting creation error.
func NewMeetingCreateError(candidateID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMeetingCreate,
		Message:   "Meeting creation call rejected",
		Details:   fmt.Sprintf("candidateId: %s, error: %s", candidateID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchedulerInternalError wraps an unexpected failure inside the run.
func NewSchedulerInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchedulerInternal,
		Message:   "Unexpected scheduler failure",
		Details:   err.Error(),
		Retryable: true,
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

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// two sets are deliberately identical so operators see the same code in
// Operate that the logs carry.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeRunInProgress:            "RUN_IN_PROGRESS",
	ErrCodeWhiteTestMissing:         "WHITE_TEST_MISSING",
	ErrCodeUpstreamFetch:            "UPSTREAM_FETCH_FAILED",
	ErrCodeSlotExhausted:            "SLOT_EXHAUSTED",
	ErrCodeMeetingCreate:            "MEETING_CREATE_FAILED",
	ErrCodeSchedulerInternal:        "SCHEDULER_INTERNAL",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFetch,
		ErrCodeMeetingCreate,
		ErrCodeSchedulerInternal,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed:
		return 3 // Retryable technical errors

	case ErrCodeRunInProgress:
		return 2 // Lock holder should finish or expire before the retry

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
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SLOT") || strings.Contains(codeStr, "MEETING") || strings.Contains(codeStr, "SCHEDULER") || strings.Contains(codeStr, "RUN"):
		return "SCHEDULING"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "WHITE_TEST") || strings.Contains(codeStr, "BUSINESS"):
		return "BUSINESS"
	default:
		return "OTHER"
	}
}
