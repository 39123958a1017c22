// Package profile combines per-document extractions into a single
// applicant profile for policy evaluation.
package profile

// ApplicantProfile is the merged view of one applicant across identity,
// income and bank statement documents. Numeric fields that may be absent
// are pointers; EmploymentDurationMonths is derived, never extracted.
type ApplicantProfile struct {
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	DocumentNumber string `json:"document_number"`
	Nationality    string `json:"nationality,omitempty"`
	Address        string `json:"address,omitempty"`

	EmployerName             string   `json:"employer_name"`
	JobTitle                 string   `json:"job_title,omitempty"`
	MonthlyGrossIncome       float64  `json:"monthly_gross_income"`
	MonthlyNetIncome         *float64 `json:"monthly_net_income,omitempty"`
	EmploymentStartDate      string   `json:"employment_start_date"`
	EmploymentDurationMonths int      `json:"employment_duration_months"`
	ContractType             string   `json:"contract_type,omitempty"`

	HasBankStatement      bool     `json:"has_bank_statement"`
	AverageBalance        *float64 `json:"average_balance,omitempty"`
	TotalIncome           *float64 `json:"total_income,omitempty"`
	TotalExpenses         *float64 `json:"total_expenses,omitempty"`
	RecurringLoanPayments *float64 `json:"recurring_loan_payments,omitempty"`
	OverdraftOccurrences  *int     `json:"overdraft_occurrences,omitempty"`
}

// MonthlyDebt returns the applicant's known recurring loan payments, zero
// when no bank statement carried them.
func (p *ApplicantProfile) MonthlyDebt() float64 {
	if p.RecurringLoanPayments == nil {
		return 0
	}
	return *p.RecurringLoanPayments
}
