// internal/docai/models.go
package docai

// DocumentType tags an uploaded document and its extraction schema.
type DocumentType string

const (
	DocumentTypeIdentity      DocumentType = "identity"
	DocumentTypeIncome        DocumentType = "income"
	DocumentTypeBankStatement DocumentType = "bank_statement"
)

// Valid reports whether dt is one of the supported document types.
func (dt DocumentType) Valid() bool {
	switch dt {
	case DocumentTypeIdentity, DocumentTypeIncome, DocumentTypeBankStatement:
		return true
	}
	return false
}

// IdentityFields holds the extraction result of a proof-of-identity
// document. Optional string fields stay empty when the document does not
// carry them.
type IdentityFields struct {
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	DocumentNumber string `json:"document_number"`
	DocumentKind   string `json:"document_type,omitempty"` // passport | id_card | drivers_license
	Address        string `json:"address,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	IssueDate      string `json:"issue_date,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
}

// IncomeFields holds the extraction result of a proof-of-income document.
// Numeric fields are pointers so "not extracted" stays distinguishable
// from a genuine zero.
type IncomeFields struct {
	ApplicantName       string   `json:"applicant_name"`
	EmployerName        string   `json:"employer_name"`
	JobTitle            string   `json:"job_title"`
	MonthlyGrossIncome  *float64 `json:"monthly_gross_income"`
	MonthlyNetIncome    *float64 `json:"monthly_net_income,omitempty"`
	EmploymentStartDate string   `json:"employment_start_date"`
	ContractType        string   `json:"contract_type,omitempty"` // permanent | fixed_term | temporary
	PaymentDate         string   `json:"payment_date,omitempty"`
}

// BankFields holds the extraction result of a bank statement.
type BankFields struct {
	AccountHolderName     string   `json:"account_holder_name"`
	StatementPeriodStart  string   `json:"statement_period_start"`
	StatementPeriodEnd    string   `json:"statement_period_end"`
	AverageBalance        *float64 `json:"average_balance,omitempty"`
	TotalIncome           *float64 `json:"total_income,omitempty"`
	TotalExpenses         *float64 `json:"total_expenses,omitempty"`
	RecurringLoanPayments *float64 `json:"recurring_loan_payments,omitempty"`
	OverdraftOccurrences  *int     `json:"overdraft_occurrences,omitempty"`
}

// Extraction is the tagged result of extracting one document. Exactly one
// of the field variants matching DocumentType is set. Immutable after
// creation.
type Extraction struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   *float64     `json:"source_confidence,omitempty"`

	Identity *IdentityFields `json:"identity,omitempty"`
	Income   *IncomeFields   `json:"income,omitempty"`
	Bank     *BankFields     `json:"bank,omitempty"`
}
