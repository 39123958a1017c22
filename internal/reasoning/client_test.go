// internal/reasoning/client_test.go
package reasoning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-processor/internal/common/config"
	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
	"loan-processor/internal/policy"
	"loan-processor/internal/profile"
)

func floatPtr(v float64) *float64 { return &v }

func newTestClient(t *testing.T, endpoint string, maxRetries int) *Client {
	t.Helper()
	return NewClient(config.ReasoningConfig{
		Endpoint:    endpoint,
		APIKey:      "test-key",
		Model:       "mistral-large-latest",
		Timeout:     5000,
		MaxRetries:  maxRetries,
		Temperature: 0.3,
		MaxTokens:   2000,
	}, logger.NewNoOpLogger())
}

func testProfile() *profile.ApplicantProfile {
	return &profile.ApplicantProfile{
		FullName:                 "Maria Schmidt",
		EmployerName:             "Acme GmbH",
		MonthlyGrossIncome:       4200,
		EmploymentDurationMonths: 55,
		HasBankStatement:         true,
		RecurringLoanPayments:    floatPtr(350),
	}
}

func testCompliance(t *testing.T) *policy.Compliance {
	t.Helper()
	c, err := policy.NewEvaluator().Evaluate(testProfile(), 15000, policy.DefaultThresholds())
	require.NoError(t, err)
	return c
}

func chatCompletion(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	}
}

const validVerdictJSON = `{
  "risk_score": 25,
  "risk_level": "LOW",
  "debt_to_income_ratio": 0.15,
  "recommendation": "APPROVE",
  "explanation": "Stable employment and low debt ratio.",
  "flags": [],
  "suggested_actions": []
}`

func TestAssessParsesVerdict(t *testing.T) {
	var gotRequest chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(chatCompletion(validVerdictJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	verdict, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 25, verdict.RiskScore)
	assert.Equal(t, RiskLevelLow, verdict.RiskLevel)
	assert.Equal(t, RecommendationApprove, verdict.Recommendation)

	require.Len(t, gotRequest.Messages, 2)
	assert.Equal(t, "system", gotRequest.Messages[0].Role)
	assert.Contains(t, gotRequest.Messages[1].Content, "Maria Schmidt")
	assert.Contains(t, gotRequest.Messages[1].Content, "Debt-to-income ratio")
	assert.InDelta(t, 0.3, gotRequest.Temperature, 0.001)
	assert.Equal(t, 2000, gotRequest.MaxTokens)
}

func TestAssessStripsMarkdownFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion("```json\n" + validVerdictJSON + "\n```"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	verdict, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, RecommendationApprove, verdict.Recommendation)
}

func TestAssessRejectsNonJSONContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion("I am unable to assess this application."))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMalformedVerdict, apperrors.CodeOf(err))
}

func TestAssessRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"score out of range",
			`{"risk_score": 140, "risk_level": "HIGH", "debt_to_income_ratio": 0.5, "recommendation": "REJECT", "explanation": "x", "flags": [], "suggested_actions": []}`,
		},
		{
			"unknown risk level",
			`{"risk_score": 40, "risk_level": "SEVERE", "debt_to_income_ratio": 0.5, "recommendation": "REJECT", "explanation": "x", "flags": [], "suggested_actions": []}`,
		},
		{
			"unknown recommendation",
			`{"risk_score": 40, "risk_level": "HIGH", "debt_to_income_ratio": 0.5, "recommendation": "DECLINE", "explanation": "x", "flags": [], "suggested_actions": []}`,
		},
		{
			"empty explanation",
			`{"risk_score": 40, "risk_level": "HIGH", "debt_to_income_ratio": 0.5, "recommendation": "REJECT", "explanation": "", "flags": [], "suggested_actions": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatCompletion(tt.content))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, 0)

			_, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeMalformedVerdict, apperrors.CodeOf(err))
		})
	}
}

func TestAssessToleratesExtraFields(t *testing.T) {
	withExtra := `{
  "risk_score": 55,
  "risk_level": "MEDIUM",
  "debt_to_income_ratio": 0.32,
  "recommendation": "MANUAL_REVIEW",
  "explanation": "Borderline ratio.",
  "flags": [{"flag_type": "high_dti", "message": "close to limit", "severity": "MEDIUM"}],
  "suggested_actions": ["request guarantor"],
  "model_notes": "internal scratchpad"
}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletion(withExtra))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	verdict, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, RecommendationManualReview, verdict.Recommendation)
	require.Len(t, verdict.Flags, 1)
	assert.Equal(t, "high_dti", verdict.Flags[0].FlagType)
}

func TestAssessRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(chatCompletion(validVerdictJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	_, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestAssessExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	_, err := client.Assess(context.Background(), testProfile(), 15000, testCompliance(t), policy.DefaultThresholds())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServiceUnavailable, apperrors.CodeOf(err))
}
