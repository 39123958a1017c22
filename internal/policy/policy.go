// Package policy evaluates an applicant profile against the bank's
// deterministic lending rules.
package policy

import (
	"fmt"

	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/profile"
)

// Thresholds are the bank's hard lending limits.
type Thresholds struct {
	MaxDTI                float64 `json:"max_dti"`
	MinEmploymentMonths   int     `json:"min_employment_months"`
	MinMonthlyGrossIncome float64 `json:"min_monthly_gross_income"`
}

// DefaultThresholds returns the bank's standard policy limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDTI:                0.40,
		MinEmploymentMonths:   6,
		MinMonthlyGrossIncome: 2000,
	}
}

// PaymentEstimator estimates the monthly payment for a requested
// principal.
type PaymentEstimator func(loanAmount float64) float64

// DefaultPaymentEstimator assumes straight-line repayment over 50 months,
// i.e. 2% of the principal per month.
func DefaultPaymentEstimator(loanAmount float64) float64 {
	return loanAmount * 0.02
}

// RuleResult is the outcome of one policy rule. A rule on the boundary of
// its threshold is compliant.
type RuleResult struct {
	Rule      string  `json:"rule"`
	Compliant bool    `json:"compliant"`
	Actual    float64 `json:"actual"`
	Limit     float64 `json:"limit"`
	Detail    string  `json:"detail,omitempty"`
}

// Compliance is the full deterministic evaluation of one application.
type Compliance struct {
	MaxDTI              RuleResult `json:"max_dti"`
	MinEmploymentMonths RuleResult `json:"min_employment_months"`
	MinIncome           RuleResult `json:"min_income"`

	DTI                     float64 `json:"dti"`
	EstimatedMonthlyPayment float64 `json:"estimated_monthly_payment"`
	TotalMonthlyDebt        float64 `json:"total_monthly_debt"`
}

// Rules returns the individual rule results in a stable order.
func (c *Compliance) Rules() []RuleResult {
	return []RuleResult{c.MaxDTI, c.MinEmploymentMonths, c.MinIncome}
}

// NonCompliantCount returns how many rules the application violates.
func (c *Compliance) NonCompliantCount() int {
	n := 0
	for _, r := range c.Rules() {
		if !r.Compliant {
			n++
		}
	}
	return n
}

// Evaluator applies the lending rules. Evaluation is pure: the same
// profile, amount and thresholds always produce the same result.
type Evaluator struct {
	Estimate PaymentEstimator
}

func NewEvaluator() *Evaluator {
	return &Evaluator{Estimate: DefaultPaymentEstimator}
}

// Evaluate checks the profile against every threshold. A zero or unknown
// gross income makes the DTI denominator undefined, which surfaces as an
// UNDEFINED_RATIO error rather than a failed rule.
func (e *Evaluator) Evaluate(p *profile.ApplicantProfile, loanAmount float64, t Thresholds) (*Compliance, error) {
	if p.MonthlyGrossIncome <= 0 {
		return nil, apperrors.NewUndefinedRatioError(
			fmt.Sprintf("monthly gross income is %.2f, debt-to-income ratio undefined", p.MonthlyGrossIncome))
	}

	estimate := e.Estimate
	if estimate == nil {
		estimate = DefaultPaymentEstimator
	}

	payment := estimate(loanAmount)
	totalDebt := payment + p.MonthlyDebt()
	dti := totalDebt / p.MonthlyGrossIncome

	c := &Compliance{
		DTI:                     dti,
		EstimatedMonthlyPayment: payment,
		TotalMonthlyDebt:        totalDebt,
	}

	c.MaxDTI = RuleResult{
		Rule:      "max_debt_to_income",
		Compliant: dti <= t.MaxDTI,
		Actual:    dti,
		Limit:     t.MaxDTI,
		Detail:    fmt.Sprintf("total monthly debt %.2f against gross income %.2f", totalDebt, p.MonthlyGrossIncome),
	}
	c.MinEmploymentMonths = RuleResult{
		Rule:      "min_employment_months",
		Compliant: p.EmploymentDurationMonths >= t.MinEmploymentMonths,
		Actual:    float64(p.EmploymentDurationMonths),
		Limit:     float64(t.MinEmploymentMonths),
	}
	c.MinIncome = RuleResult{
		Rule:      "min_monthly_gross_income",
		Compliant: p.MonthlyGrossIncome >= t.MinMonthlyGrossIncome,
		Actual:    p.MonthlyGrossIncome,
		Limit:     t.MinMonthlyGrossIncome,
	}

	return c, nil
}
