package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileIncompleteError_CarriesAllMissingFields(t *testing.T) {
	missing := []string{"full_name", "monthly_gross_income", "employment_start_date"}
	err := NewProfileIncompleteError(missing)

	assert.Equal(t, ErrCodeProfileIncomplete, err.Code)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Details, "full_name")
	assert.Contains(t, err.Details, "monthly_gross_income")
	assert.Contains(t, err.Details, "employment_start_date")
	assert.Equal(t, missing, MissingFields(err))
}

func TestMissingFields_NilForOtherErrors(t *testing.T) {
	assert.Nil(t, MissingFields(NewInvalidDateError("future start date")))
	assert.Nil(t, MissingFields(fmt.Errorf("plain error")))
}

func TestCodeOf_UnwrapsChains(t *testing.T) {
	inner := NewUndefinedRatioError("monthly_gross_income is unknown")
	wrapped := fmt.Errorf("evaluate policy: %w", inner)

	assert.Equal(t, ErrCodeUndefinedRatio, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeUndefinedRatio))
	assert.False(t, IsCode(wrapped, ErrCodeInvalidDate))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("not standard")))
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeServiceUnavailable, 1},
		{ErrCodeStorageFailed, 3},
		{ErrCodeSchemaMismatch, 0},
		{ErrCodeProfileIncomplete, 0},
		{ErrCodeMalformedVerdict, 0},
		{ErrCodeUndefinedRatio, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.retries, GetRetryCount(tt.code), string(tt.code))
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "EXTRACTION", GetErrorCategory(ErrCodeSchemaMismatch))
	assert.Equal(t, "COMBINATION", GetErrorCategory(ErrCodeProfileIncomplete))
	assert.Equal(t, "POLICY", GetErrorCategory(ErrCodeUndefinedRatio))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeMalformedVerdict))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeReportNotFound))
}
