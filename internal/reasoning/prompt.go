// internal/reasoning/prompt.go
package reasoning

import (
	"fmt"
	"strings"

	"loan-processor/internal/policy"
	"loan-processor/internal/profile"
)

const systemPrompt = "You are a loan risk assessment expert for a retail bank. " +
	"Analyze the application data and respond only with the requested JSON object, no other text."

// buildPrompt renders the applicant profile, the requested loan and the
// deterministic policy results into the assessment prompt. The response
// shape is spelled out so the model returns parseable JSON.
func buildPrompt(p *profile.ApplicantProfile, loanAmount float64, c *policy.Compliance, t policy.Thresholds) string {
	var b strings.Builder

	b.WriteString("Assess the credit risk of the following loan application.\n\n")

	b.WriteString("BANK POLICY RULES:\n")
	fmt.Fprintf(&b, "- Maximum debt-to-income ratio: %.2f\n", t.MaxDTI)
	fmt.Fprintf(&b, "- Minimum employment duration: %d months\n", t.MinEmploymentMonths)
	fmt.Fprintf(&b, "- Minimum monthly gross income: %.2f EUR\n\n", t.MinMonthlyGrossIncome)

	b.WriteString("APPLICANT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "- Employer: %s\n", p.EmployerName)
	if p.JobTitle != "" {
		fmt.Fprintf(&b, "- Job title: %s\n", p.JobTitle)
	}
	if p.ContractType != "" {
		fmt.Fprintf(&b, "- Contract type: %s\n", p.ContractType)
	}
	fmt.Fprintf(&b, "- Monthly gross income: %.2f EUR\n", p.MonthlyGrossIncome)
	fmt.Fprintf(&b, "- Employment duration: %d months\n", p.EmploymentDurationMonths)
	if p.HasBankStatement {
		if p.AverageBalance != nil {
			fmt.Fprintf(&b, "- Average account balance: %.2f EUR\n", *p.AverageBalance)
		}
		if p.RecurringLoanPayments != nil {
			fmt.Fprintf(&b, "- Existing monthly loan payments: %.2f EUR\n", *p.RecurringLoanPayments)
		}
		if p.OverdraftOccurrences != nil {
			fmt.Fprintf(&b, "- Overdraft occurrences: %d\n", *p.OverdraftOccurrences)
		}
	}
	b.WriteString("\n")

	b.WriteString("REQUESTED LOAN:\n")
	fmt.Fprintf(&b, "- Amount: %.2f EUR\n", loanAmount)
	fmt.Fprintf(&b, "- Estimated monthly payment: %.2f EUR\n\n", c.EstimatedMonthlyPayment)

	b.WriteString("CALCULATED METRICS:\n")
	fmt.Fprintf(&b, "- Total monthly debt: %.2f EUR\n", c.TotalMonthlyDebt)
	fmt.Fprintf(&b, "- Debt-to-income ratio: %.4f\n", c.DTI)
	for _, r := range c.Rules() {
		status := "COMPLIANT"
		if !r.Compliant {
			status = "NON-COMPLIANT"
		}
		fmt.Fprintf(&b, "- Policy check %s: %s (actual %.2f, limit %.2f)\n", r.Rule, status, r.Actual, r.Limit)
	}
	b.WriteString("\n")

	b.WriteString("Respond with a JSON object with exactly these fields:\n")
	b.WriteString(`{
  "risk_score": <integer 0-100, higher is riskier>,
  "risk_level": "LOW" | "MEDIUM" | "HIGH",
  "debt_to_income_ratio": <number>,
  "recommendation": "APPROVE" | "MANUAL_REVIEW" | "REJECT",
  "explanation": "<2-3 sentence justification>",
  "flags": [{"flag_type": "<snake_case_type>", "message": "<detail>", "severity": "LOW" | "MEDIUM" | "HIGH"}],
  "suggested_actions": ["<action>"]
}`)

	return b.String()
}
