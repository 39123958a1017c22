// internal/docai/schema.go
package docai

import "fmt"

// Per-document-type JSON schemas sent to the document-understanding
// service as the annotation format, and used again to validate what it
// returns. Field sets and required lists follow the bank's document
// requirements.

const identitySchema = `{
  "title": "IdentityDocument",
  "type": "object",
  "properties": {
    "full_name": {"type": "string", "description": "Full name of the person"},
    "date_of_birth": {"type": "string", "description": "Date of birth in YYYY-MM-DD format"},
    "document_number": {"type": "string", "description": "Document identification number"},
    "document_type": {"type": "string", "enum": ["passport", "id_card", "drivers_license"], "description": "Type of identity document"},
    "address": {"type": "string", "description": "Residential address"},
    "nationality": {"type": "string", "description": "Nationality"},
    "issue_date": {"type": "string", "description": "Document issue date"},
    "expiry_date": {"type": "string", "description": "Document expiry date"}
  },
  "required": ["full_name", "date_of_birth", "document_number"],
  "additionalProperties": false
}`

const incomeSchema = `{
  "title": "IncomeDocument",
  "type": "object",
  "properties": {
    "applicant_name": {"type": "string", "description": "Name of the employee/applicant"},
    "employer_name": {"type": "string", "description": "Name of the employer company"},
    "job_title": {"type": "string", "description": "Job title or position"},
    "monthly_gross_income": {"type": "number", "description": "Monthly gross salary/income in euros"},
    "monthly_net_income": {"type": "number", "description": "Monthly net salary/income in euros"},
    "employment_start_date": {"type": "string", "description": "Employment start date in YYYY-MM-DD format"},
    "contract_type": {"type": "string", "enum": ["permanent", "fixed_term", "temporary"], "description": "Type of employment contract"},
    "payment_date": {"type": "string", "description": "Latest payment date"}
  },
  "required": ["applicant_name", "employer_name", "job_title", "monthly_gross_income", "employment_start_date"],
  "additionalProperties": false
}`

const bankStatementSchema = `{
  "title": "BankStatement",
  "type": "object",
  "properties": {
    "account_holder_name": {"type": "string", "description": "Name of the account holder"},
    "statement_period_start": {"type": "string", "description": "Statement period start date"},
    "statement_period_end": {"type": "string", "description": "Statement period end date"},
    "average_balance": {"type": "number", "description": "Average account balance in euros"},
    "total_income": {"type": "number", "description": "Total income/deposits during period"},
    "total_expenses": {"type": "number", "description": "Total expenses/withdrawals during period"},
    "recurring_loan_payments": {"type": "number", "description": "Monthly recurring loan payments"},
    "overdraft_occurrences": {"type": "integer", "description": "Number of overdraft occurrences"}
  },
  "required": ["account_holder_name", "statement_period_start", "statement_period_end"],
  "additionalProperties": false
}`

// SchemaFor returns the extraction JSON schema for a document type.
func SchemaFor(dt DocumentType) (string, error) {
	switch dt {
	case DocumentTypeIdentity:
		return identitySchema, nil
	case DocumentTypeIncome:
		return incomeSchema, nil
	case DocumentTypeBankStatement:
		return bankStatementSchema, nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", dt)
	}
}
