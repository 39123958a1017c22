// internal/assessment/assembler_test.go
package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/policy"
	"loan-processor/internal/reasoning"
)

func complianceWith(violations int, dti float64) *policy.Compliance {
	c := &policy.Compliance{
		DTI:                 dti,
		MaxDTI:              policy.RuleResult{Rule: "max_debt_to_income", Compliant: true, Actual: dti, Limit: 0.40},
		MinEmploymentMonths: policy.RuleResult{Rule: "min_employment_months", Compliant: true, Actual: 24, Limit: 6},
		MinIncome:           policy.RuleResult{Rule: "min_monthly_gross_income", Compliant: true, Actual: 4200, Limit: 2000},
	}
	if violations >= 1 {
		c.MaxDTI.Compliant = false
	}
	if violations >= 2 {
		c.MinEmploymentMonths.Compliant = false
	}
	if violations >= 3 {
		c.MinIncome.Compliant = false
	}
	return c
}

func verdict(score int, level, recommendation string) *reasoning.Verdict {
	return &reasoning.Verdict{
		RiskScore:         score,
		RiskLevel:         level,
		DebtToIncomeRatio: 0.99, // wrong on purpose, must not leak through
		Recommendation:    recommendation,
		Explanation:       "test verdict",
	}
}

func TestAssembleCompliantPassThrough(t *testing.T) {
	a := Assemble(complianceWith(0, 0.15), verdict(55, reasoning.RiskLevelMedium, reasoning.RecommendationManualReview), nil)

	assert.Equal(t, reasoning.RecommendationManualReview, a.Recommendation)
	assert.Equal(t, reasoning.RiskLevelMedium, a.RiskLevel)
	assert.Equal(t, 55, a.RiskScore)
	assert.Empty(t, a.Flags)
}

func TestAssembleUsesLocalDTI(t *testing.T) {
	a := Assemble(complianceWith(0, 0.15), verdict(25, reasoning.RiskLevelLow, reasoning.RecommendationApprove), nil)
	assert.InDelta(t, 0.15, a.DebtToIncomeRatio, 1e-9)
}

func TestAssembleSingleViolationForcesManualReview(t *testing.T) {
	a := Assemble(complianceWith(1, 0.55), verdict(20, reasoning.RiskLevelLow, reasoning.RecommendationApprove), nil)

	assert.Equal(t, reasoning.RecommendationManualReview, a.Recommendation)
	require.Len(t, a.Flags, 1)
	assert.Equal(t, "POLICY_OVERRIDE", a.Flags[0].FlagType)
}

func TestAssembleSingleViolationKeepsStricterVerdict(t *testing.T) {
	a := Assemble(complianceWith(1, 0.55), verdict(80, reasoning.RiskLevelHigh, reasoning.RecommendationReject), nil)

	assert.Equal(t, reasoning.RecommendationReject, a.Recommendation)
	assert.Empty(t, a.Flags)
}

func TestAssembleTwoViolationsForceReject(t *testing.T) {
	a := Assemble(complianceWith(2, 0.55), verdict(20, reasoning.RiskLevelLow, reasoning.RecommendationApprove), nil)

	assert.Equal(t, reasoning.RecommendationReject, a.Recommendation)
	assert.NotEqual(t, reasoning.RiskLevelLow, a.RiskLevel)
	require.Len(t, a.Flags, 1)
	assert.Equal(t, "POLICY_OVERRIDE", a.Flags[0].FlagType)
}

func TestAssembleRejectNeverLowRisk(t *testing.T) {
	a := Assemble(complianceWith(0, 0.15), verdict(10, reasoning.RiskLevelLow, reasoning.RecommendationReject), nil)

	assert.Equal(t, reasoning.RecommendationReject, a.Recommendation)
	assert.Equal(t, reasoning.RiskLevelMedium, a.RiskLevel)
}

func TestAssembleUnavailableServiceFallsBack(t *testing.T) {
	verdictErr := apperrors.NewServiceUnavailableError("risk-reasoning", nil)

	a := Assemble(complianceWith(0, 0.15), nil, verdictErr)

	assert.Equal(t, reasoning.RecommendationReject, a.Recommendation)
	assert.Equal(t, reasoning.RiskLevelHigh, a.RiskLevel)
	assert.Equal(t, 100, a.RiskScore)
	assert.InDelta(t, 0.15, a.DebtToIncomeRatio, 1e-9)
	require.Len(t, a.Flags, 1)
	assert.Equal(t, "SERVICE_UNAVAILABLE", a.Flags[0].FlagType)
	assert.Equal(t, reasoning.SeverityHigh, a.Flags[0].Severity)
}

func TestAssembleMalformedVerdictFallsBack(t *testing.T) {
	verdictErr := apperrors.NewMalformedVerdictError("risk_score out of range")

	a := Assemble(complianceWith(1, 0.55), nil, verdictErr)

	assert.Equal(t, reasoning.RecommendationReject, a.Recommendation)
	assert.Equal(t, reasoning.RiskLevelHigh, a.RiskLevel)
}
