// Package store persists processing reports in PostgreSQL and caches them
// in Redis.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"loan-processor/internal/assessment"
	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
)

// ApplicationStore writes and reads reports from the loan_applications
// table. The full report is stored as JSONB next to a few indexed columns.
type ApplicationStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewApplicationStore(db *sql.DB, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "application-store"}),
	}
}

// SaveReport inserts the report. The application ID must be a UUID; an
// existing row for the same application is replaced.
func (s *ApplicationStore) SaveReport(ctx context.Context, report *assessment.Report) error {
	if _, err := uuid.Parse(report.ApplicationID); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("application id %q is not a UUID", report.ApplicationID))
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.NewStorageFailedError(fmt.Errorf("marshal report: %w", err))
	}

	query := `
		INSERT INTO loan_applications (
			application_id, applicant_name, loan_amount, recommendation,
			risk_level, report, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (application_id) DO UPDATE SET
			applicant_name = EXCLUDED.applicant_name,
			loan_amount = EXCLUDED.loan_amount,
			recommendation = EXCLUDED.recommendation,
			risk_level = EXCLUDED.risk_level,
			report = EXCLUDED.report,
			created_at = EXCLUDED.created_at`

	_, err = s.db.ExecContext(ctx, query,
		report.ApplicationID,
		report.Applicant.FullName,
		report.LoanAmount,
		report.RiskAssessment.Recommendation,
		report.RiskAssessment.RiskLevel,
		payload,
		report.GeneratedAt,
	)
	if err != nil {
		s.logger.Error("failed to save report", map[string]interface{}{
			"applicationId": report.ApplicationID,
			"error":         err.Error(),
		})
		return apperrors.NewStorageFailedError(err)
	}

	s.logger.Info("report saved", map[string]interface{}{
		"applicationId":  report.ApplicationID,
		"recommendation": report.RiskAssessment.Recommendation,
	})
	return nil
}

// GetReport loads the stored report for an application.
func (s *ApplicationStore) GetReport(ctx context.Context, applicationID string) (*assessment.Report, error) {
	var payload []byte
	query := `SELECT report FROM loan_applications WHERE application_id = $1`

	err := s.db.QueryRowContext(ctx, query, applicationID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewReportNotFoundError(applicationID)
	}
	if err != nil {
		return nil, apperrors.NewStorageFailedError(err)
	}

	var report assessment.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, apperrors.NewStorageFailedError(fmt.Errorf("unmarshal report: %w", err))
	}
	return &report, nil
}
