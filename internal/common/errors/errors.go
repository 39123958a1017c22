// Package errors provides the standardized error taxonomy for loan
// application processing.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Document extraction / combination errors.
	ErrCodeSchemaMismatch    ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeProfileIncomplete ErrorCode = "PROFILE_INCOMPLETE"
	ErrCodeInvalidDate       ErrorCode = "INVALID_DATE"
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"

	// Policy evaluation errors.
	ErrCodeUndefinedRatio ErrorCode = "UNDEFINED_RATIO"

	// External collaborator errors.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeMalformedVerdict   ErrorCode = "MALFORMED_VERDICT"

	// Input / lookup errors.
	ErrCodeValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeReportNotFound   ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeStorageFailed    ErrorCode = "STORAGE_FAILED"
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

// NewSchemaMismatchError reports extracted data tagged with the wrong
// document type. Fatal to that document.
func NewSchemaMismatchError(expected, got string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Extracted data tagged with the wrong document type",
		Details:   fmt.Sprintf("expected: %s, got: %s", expected, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileIncompleteError reports required fields missing after
// combination. It names every missing field, not just the first.
func NewProfileIncompleteError(missingFields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileIncomplete,
		Message:   "Required applicant fields missing after combination",
		Details:   fmt.Sprintf("missing fields: %s", strings.Join(missingFields, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missing_fields": missingFields},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDateError reports a malformed or future employment start date.
func NewInvalidDateError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDate,
		Message:   "Employment duration cannot be derived from the given date",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError reports that a document could not be extracted
// into the declared schema (corrupt file, required-field miss, bad payload).
func NewExtractionFailedError(documentType, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Document extraction did not produce a valid field mapping",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"document_type": documentType},
		Timestamp: time.Now().UTC(),
	}
}

// NewUndefinedRatioError reports a DTI computation with a zero or unknown
// income denominator. Surfaced distinctly from a computed high-DTI result.
func NewUndefinedRatioError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUndefinedRatio,
		Message:   "Debt-to-income ratio is undefined for this profile",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError reports an external call that failed or timed
// out after the retry budget was exhausted.
func NewServiceUnavailableError(service string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("External service '%s' unavailable", service),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedVerdictError reports reasoning-service output that failed the
// strict verdict shape. Treated like unavailability by the assembler.
func NewMalformedVerdictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedVerdict,
		Message:   "Reasoning service returned data not matching the verdict shape",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports invalid submission input.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportNotFoundError reports a missing stored report.
func NewReportNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportNotFound,
		Message:   "No report found for application",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageFailedError reports a database or cache write/read failure.
func NewStorageFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailed,
		Message:   "Report storage operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the retry budget for an error code. External
// round-trips get exactly one bounded retry; everything else is fatal.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeServiceUnavailable:
		return 1
	case ErrCodeStorageFailed:
		return 3
	default:
		return 0
	}
}

// CodeOf extracts the ErrorCode from an error chain, or "" when the error
// is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode checks whether an error chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// MissingFields returns the missing-field list carried by a
// PROFILE_INCOMPLETE error, or nil for any other error.
func MissingFields(err error) []string {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) || stdErr.Code != ErrCodeProfileIncomplete {
		return nil
	}
	if fields, ok := stdErr.Metadata["missing_fields"].([]string); ok {
		return fields
	}
	return nil
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "DATE"):
		return "COMBINATION"
	case strings.Contains(codeStr, "RATIO"):
		return "POLICY"
	case strings.Contains(codeStr, "SERVICE") || strings.Contains(codeStr, "VERDICT"):
		return "AI"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REPORT") || strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
