// internal/profile/combine.go
package profile

import (
	"fmt"
	"time"

	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/docai"
)

const dateLayout = "2006-01-02"

// Combine merges the three document extractions into one applicant
// profile. The identity document is authoritative for the applicant name;
// the income document's applicant_name is used only when the identity name
// is absent. It validates the document-type tags, checks that every
// required field survived extraction (reporting all misses at once) and
// derives the employment duration from the start date relative to now.
func Combine(identity, income, bank *docai.Extraction, now time.Time) (*ApplicantProfile, error) {
	if err := checkTag(identity, docai.DocumentTypeIdentity); err != nil {
		return nil, err
	}
	if err := checkTag(income, docai.DocumentTypeIncome); err != nil {
		return nil, err
	}
	if bank != nil {
		if err := checkTag(bank, docai.DocumentTypeBankStatement); err != nil {
			return nil, err
		}
	}

	p := &ApplicantProfile{}
	var missing []string

	if identity == nil || identity.Identity == nil {
		missing = append(missing, "full_name", "date_of_birth")
	} else {
		id := identity.Identity
		p.FullName = id.FullName
		p.DateOfBirth = id.DateOfBirth
		p.DocumentNumber = id.DocumentNumber
		p.Nationality = id.Nationality
		p.Address = id.Address
		if id.FullName == "" {
			missing = append(missing, "full_name")
		}
		if id.DateOfBirth == "" {
			missing = append(missing, "date_of_birth")
		}
	}

	if income == nil || income.Income == nil {
		missing = append(missing, "employer_name", "monthly_gross_income", "employment_start_date")
	} else {
		inc := income.Income
		if p.FullName == "" {
			p.FullName = inc.ApplicantName
			if p.FullName != "" {
				// Drop the identity miss now that the income document
				// supplied the name.
				missing = removeField(missing, "full_name")
			}
		}
		p.EmployerName = inc.EmployerName
		p.JobTitle = inc.JobTitle
		p.MonthlyNetIncome = inc.MonthlyNetIncome
		p.EmploymentStartDate = inc.EmploymentStartDate
		p.ContractType = inc.ContractType
		if inc.EmployerName == "" {
			missing = append(missing, "employer_name")
		}
		if inc.MonthlyGrossIncome == nil {
			missing = append(missing, "monthly_gross_income")
		} else {
			p.MonthlyGrossIncome = *inc.MonthlyGrossIncome
		}
		if inc.EmploymentStartDate == "" {
			missing = append(missing, "employment_start_date")
		}
	}

	if bank != nil && bank.Bank != nil {
		b := bank.Bank
		p.HasBankStatement = true
		p.AverageBalance = b.AverageBalance
		p.TotalIncome = b.TotalIncome
		p.TotalExpenses = b.TotalExpenses
		p.RecurringLoanPayments = b.RecurringLoanPayments
		p.OverdraftOccurrences = b.OverdraftOccurrences
	}

	if len(missing) > 0 {
		return nil, apperrors.NewProfileIncompleteError(missing)
	}

	months, err := monthsSince(p.EmploymentStartDate, now)
	if err != nil {
		return nil, err
	}
	p.EmploymentDurationMonths = months

	return p, nil
}

func checkTag(e *docai.Extraction, want docai.DocumentType) error {
	if e == nil {
		return nil
	}
	if e.DocumentType != want {
		return apperrors.NewSchemaMismatchError(string(want), string(e.DocumentType))
	}
	return nil
}

// monthsSince returns the number of whole months elapsed between the
// YYYY-MM-DD start date and now. A start date in the future or one that
// does not parse is an INVALID_DATE error.
func monthsSince(startDate string, now time.Time) (int, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0, apperrors.NewInvalidDateError(fmt.Sprintf("employment_start_date %q: %v", startDate, err))
	}
	if start.After(now) {
		return 0, apperrors.NewInvalidDateError(fmt.Sprintf("employment_start_date %q is in the future", startDate))
	}

	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	if now.Day() < start.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months, nil
}

func removeField(fields []string, field string) []string {
	out := fields[:0]
	for _, f := range fields {
		if f != field {
			out = append(out, f)
		}
	}
	return out
}
