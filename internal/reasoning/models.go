// Package reasoning calls the AI risk-assessment service and enforces the
// strict verdict contract on its output.
package reasoning

import (
	"fmt"
	"strings"
)

// Recommendation values a verdict may carry.
const (
	RecommendationApprove      = "APPROVE"
	RecommendationManualReview = "MANUAL_REVIEW"
	RecommendationReject       = "REJECT"
)

// Risk levels a verdict may carry.
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// Flag severities.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Flag is one concern the risk assessment raised.
type Flag struct {
	FlagType string `json:"flag_type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Verdict is the risk assessment returned by the reasoning service.
// Unknown extra fields in the raw response are tolerated; the fields below
// must be present and well-formed or the whole verdict is rejected.
type Verdict struct {
	RiskScore         int      `json:"risk_score"`
	RiskLevel         string   `json:"risk_level"`
	DebtToIncomeRatio float64  `json:"debt_to_income_ratio"`
	Recommendation    string   `json:"recommendation"`
	Explanation       string   `json:"explanation"`
	Flags             []Flag   `json:"flags"`
	SuggestedActions  []string `json:"suggested_actions"`
}

// Validate checks the verdict against the contract: score in range, known
// enum values, non-empty explanation. It returns every violation joined,
// empty string when valid.
func (v *Verdict) Validate() string {
	var issues []string

	if v.RiskScore < 0 || v.RiskScore > 100 {
		issues = append(issues, fmt.Sprintf("risk_score %d out of range [0,100]", v.RiskScore))
	}
	switch v.RiskLevel {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
	default:
		issues = append(issues, fmt.Sprintf("risk_level %q not one of LOW/MEDIUM/HIGH", v.RiskLevel))
	}
	switch v.Recommendation {
	case RecommendationApprove, RecommendationManualReview, RecommendationReject:
	default:
		issues = append(issues, fmt.Sprintf("recommendation %q not one of APPROVE/MANUAL_REVIEW/REJECT", v.Recommendation))
	}
	if strings.TrimSpace(v.Explanation) == "" {
		issues = append(issues, "explanation is empty")
	}
	for i, f := range v.Flags {
		switch f.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh:
		default:
			issues = append(issues, fmt.Sprintf("flags[%d].severity %q not one of LOW/MEDIUM/HIGH", i, f.Severity))
		}
	}

	return strings.Join(issues, "; ")
}
