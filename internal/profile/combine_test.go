// internal/profile/combine_test.go
package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/docai"
)

func floatPtr(v float64) *float64 { return &v }

var testNow = time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)

func identityExtraction() *docai.Extraction {
	return &docai.Extraction{
		DocumentType: docai.DocumentTypeIdentity,
		Identity: &docai.IdentityFields{
			FullName:       "Maria Schmidt",
			DateOfBirth:    "1990-04-12",
			DocumentNumber: "X1234567",
			Nationality:    "German",
		},
	}
}

func incomeExtraction() *docai.Extraction {
	return &docai.Extraction{
		DocumentType: docai.DocumentTypeIncome,
		Income: &docai.IncomeFields{
			ApplicantName:       "M. Schmidt",
			EmployerName:        "Acme GmbH",
			JobTitle:            "Engineer",
			MonthlyGrossIncome:  floatPtr(4200),
			EmploymentStartDate: "2022-01-15",
			ContractType:        "permanent",
		},
	}
}

func bankExtraction() *docai.Extraction {
	return &docai.Extraction{
		DocumentType: docai.DocumentTypeBankStatement,
		Bank: &docai.BankFields{
			AccountHolderName:     "Maria Schmidt",
			StatementPeriodStart:  "2026-01-01",
			StatementPeriodEnd:    "2026-03-31",
			AverageBalance:        floatPtr(1500),
			RecurringLoanPayments: floatPtr(350),
		},
	}
}

func TestCombineMergesAllDocuments(t *testing.T) {
	p, err := Combine(identityExtraction(), incomeExtraction(), bankExtraction(), testNow)
	require.NoError(t, err)

	assert.Equal(t, "Maria Schmidt", p.FullName)
	assert.Equal(t, "1990-04-12", p.DateOfBirth)
	assert.Equal(t, "Acme GmbH", p.EmployerName)
	assert.InDelta(t, 4200.0, p.MonthlyGrossIncome, 0.001)
	assert.Equal(t, 55, p.EmploymentDurationMonths)
	assert.True(t, p.HasBankStatement)
	assert.InDelta(t, 350.0, p.MonthlyDebt(), 0.001)
}

func TestCombineIdentityNameWinsOverIncomeName(t *testing.T) {
	p, err := Combine(identityExtraction(), incomeExtraction(), nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Maria Schmidt", p.FullName)
	assert.False(t, p.HasBankStatement)
	assert.Zero(t, p.MonthlyDebt())
}

func TestCombineFallsBackToIncomeName(t *testing.T) {
	identity := identityExtraction()
	identity.Identity.FullName = ""

	p, err := Combine(identity, incomeExtraction(), nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "M. Schmidt", p.FullName)
}

func TestCombineReportsAllMissingFields(t *testing.T) {
	identity := identityExtraction()
	identity.Identity.DateOfBirth = ""
	income := incomeExtraction()
	income.Income.MonthlyGrossIncome = nil
	income.Income.EmployerName = ""

	_, err := Combine(identity, income, nil, testNow)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProfileIncomplete, apperrors.CodeOf(err))
	assert.ElementsMatch(t,
		[]string{"date_of_birth", "employer_name", "monthly_gross_income"},
		apperrors.MissingFields(err))
}

func TestCombineWrongDocumentTag(t *testing.T) {
	mislabelled := incomeExtraction()

	_, err := Combine(mislabelled, incomeExtraction(), nil, testNow)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSchemaMismatch, apperrors.CodeOf(err))
}

func TestCombineFutureStartDate(t *testing.T) {
	income := incomeExtraction()
	income.Income.EmploymentStartDate = "2027-01-01"

	_, err := Combine(identityExtraction(), income, nil, testNow)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidDate, apperrors.CodeOf(err))
}

func TestCombineMalformedStartDate(t *testing.T) {
	income := incomeExtraction()
	income.Income.EmploymentStartDate = "January 2022"

	_, err := Combine(identityExtraction(), income, nil, testNow)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidDate, apperrors.CodeOf(err))
}

func TestMonthsSinceDayCorrection(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  int
	}{
		{"same day of month", "2026-02-23", 6},
		{"day not yet reached", "2026-02-28", 5},
		{"day already passed", "2026-02-01", 6},
		{"under one month", "2026-08-10", 0},
		{"start today", "2026-08-23", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := monthsSince(tt.start, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
