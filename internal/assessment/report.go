// internal/assessment/report.go
package assessment

import (
	"time"

	"loan-processor/internal/profile"
)

// Report is the externally visible processing result for one application.
type Report struct {
	ApplicationID  string                    `json:"application_id"`
	GeneratedAt    time.Time                 `json:"generated_at"`
	LoanAmount     float64                   `json:"loan_amount"`
	Applicant      *profile.ApplicantProfile `json:"applicant"`
	RiskAssessment *RiskAssessment           `json:"risk_assessment"`
}

// NewReport stamps the assembled assessment into a report.
func NewReport(applicationID string, loanAmount float64, applicant *profile.ApplicantProfile, ra *RiskAssessment) *Report {
	return &Report{
		ApplicationID:  applicationID,
		GeneratedAt:    time.Now().UTC(),
		LoanAmount:     loanAmount,
		Applicant:      applicant,
		RiskAssessment: ra,
	}
}
