// Package assessment merges the deterministic policy evaluation with the
// AI verdict into the final risk assessment. Policy always has the last
// word: the AI can tighten an outcome but never loosen one.
package assessment

import (
	"fmt"

	"loan-processor/internal/policy"
	"loan-processor/internal/reasoning"
)

// RiskAssessment is the final merged assessment for one application.
// DebtToIncomeRatio is always the locally computed value, never the one
// the reasoning service echoed back.
type RiskAssessment struct {
	RiskScore         int              `json:"risk_score"`
	RiskLevel         string           `json:"risk_level"`
	DebtToIncomeRatio float64          `json:"debt_to_income_ratio"`
	Recommendation    string           `json:"recommendation"`
	Explanation       string           `json:"explanation"`
	Flags             []reasoning.Flag `json:"flags"`
	SuggestedActions  []string         `json:"suggested_actions"`

	Policy *policy.Compliance `json:"policy_compliance"`
}

// recommendation severity ordering, APPROVE mildest.
var recommendationRank = map[string]int{
	reasoning.RecommendationApprove:      0,
	reasoning.RecommendationManualReview: 1,
	reasoning.RecommendationReject:       2,
}

// Assemble produces the final assessment. It never fails: when the
// reasoning service was unavailable or returned a malformed verdict
// (verdictErr non-nil), the application falls back to a conservative
// REJECT. Otherwise the verdict is taken and floored by the policy
// results: one violated rule forces at least MANUAL_REVIEW, two or more
// force REJECT. A REJECT is never labelled LOW risk.
func Assemble(compliance *policy.Compliance, verdict *reasoning.Verdict, verdictErr error) *RiskAssessment {
	if verdictErr != nil || verdict == nil {
		return unavailableFallback(compliance, verdictErr)
	}

	a := &RiskAssessment{
		RiskScore:         verdict.RiskScore,
		RiskLevel:         verdict.RiskLevel,
		DebtToIncomeRatio: compliance.DTI,
		Recommendation:    verdict.Recommendation,
		Explanation:       verdict.Explanation,
		Flags:             append([]reasoning.Flag(nil), verdict.Flags...),
		SuggestedActions:  append([]string(nil), verdict.SuggestedActions...),
		Policy:            compliance,
	}

	floor := policyFloor(compliance.NonCompliantCount())
	if recommendationRank[floor] > recommendationRank[a.Recommendation] {
		a.Recommendation = floor
		a.Flags = append(a.Flags, reasoning.Flag{
			FlagType: "POLICY_OVERRIDE",
			Message: fmt.Sprintf("AI recommended %s but %d policy rule(s) failed, recommendation raised to %s",
				verdict.Recommendation, compliance.NonCompliantCount(), a.Recommendation),
			Severity: reasoning.SeverityHigh,
		})
	}

	// A rejected application cannot carry the lowest risk label.
	if a.Recommendation == reasoning.RecommendationReject && a.RiskLevel == reasoning.RiskLevelLow {
		a.RiskLevel = reasoning.RiskLevelMedium
	}

	if a.RiskScore < 0 {
		a.RiskScore = 0
	} else if a.RiskScore > 100 {
		a.RiskScore = 100
	}

	return a
}

func policyFloor(violations int) string {
	switch {
	case violations >= 2:
		return reasoning.RecommendationReject
	case violations == 1:
		return reasoning.RecommendationManualReview
	default:
		return reasoning.RecommendationApprove
	}
}

func unavailableFallback(compliance *policy.Compliance, verdictErr error) *RiskAssessment {
	detail := "no verdict produced"
	if verdictErr != nil {
		detail = verdictErr.Error()
	}

	a := &RiskAssessment{
		RiskScore:         100,
		RiskLevel:         reasoning.RiskLevelHigh,
		Recommendation:    reasoning.RecommendationReject,
		Explanation:       "Risk assessment service unavailable, application rejected pending manual processing.",
		SuggestedActions:  []string{"resubmit the application once the assessment service is available"},
		Flags: []reasoning.Flag{{
			FlagType: "SERVICE_UNAVAILABLE",
			Message:  detail,
			Severity: reasoning.SeverityHigh,
		}},
	}
	if compliance != nil {
		a.DebtToIncomeRatio = compliance.DTI
		a.Policy = compliance
	}
	return a
}
