// Package pipeline orchestrates the end-to-end processing of a loan
// application: concurrent document extraction, profile combination,
// policy evaluation, AI risk assessment and result assembly.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"loan-processor/internal/assessment"
	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
	"loan-processor/internal/common/metrics"
	"loan-processor/internal/common/observability"
	"loan-processor/internal/docai"
	"loan-processor/internal/policy"
	"loan-processor/internal/profile"
	"loan-processor/internal/reasoning"
)

// Extractor turns raw document bytes into a typed extraction.
type Extractor interface {
	Extract(ctx context.Context, document []byte, docType docai.DocumentType) (*docai.Extraction, error)
}

// Assessor produces an AI risk verdict for an evaluated profile.
type Assessor interface {
	Assess(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64, compliance *policy.Compliance, thresholds policy.Thresholds) (*reasoning.Verdict, error)
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *assessment.Report) error
	GetReport(ctx context.Context, applicationID string) (*assessment.Report, error)
}

// ReportCache keeps reports for fast repeated lookups.
type ReportCache interface {
	SetReport(ctx context.Context, report *assessment.Report) error
	GetReport(ctx context.Context, applicationID string) (*assessment.Report, error)
}

// Submission is one loan application: the uploaded documents and the
// requested amount. The bank statement is optional.
type Submission struct {
	IdentityDocument []byte
	IncomeDocument   []byte
	BankStatement    []byte
	LoanAmount       float64
}

// Validate checks that the submission can enter the pipeline at all.
func (s *Submission) Validate() error {
	switch {
	case s.LoanAmount <= 0:
		return apperrors.NewValidationError("loan amount must be positive")
	case len(s.IdentityDocument) == 0:
		return apperrors.NewValidationError("identity document is required")
	case len(s.IncomeDocument) == 0:
		return apperrors.NewValidationError("income document is required")
	}
	return nil
}

// Processor runs submissions through the full pipeline. Store and cache
// are optional: persistence failures are logged, never fail a processed
// application.
type Processor struct {
	extractor  Extractor
	evaluator  *policy.Evaluator
	assessor   Assessor
	thresholds policy.Thresholds
	store      ReportStore
	cache      ReportCache
	obs        *observability.Observability
	logger     logger.Logger
}

type Option func(*Processor)

func WithStore(store ReportStore) Option {
	return func(p *Processor) { p.store = store }
}

func WithCache(cache ReportCache) Option {
	return func(p *Processor) { p.cache = cache }
}

func WithObservability(obs *observability.Observability) Option {
	return func(p *Processor) { p.obs = obs }
}

func NewProcessor(extractor Extractor, assessor Assessor, log logger.Logger, opts ...Option) *Processor {
	p := &Processor{
		extractor:  extractor,
		evaluator:  policy.NewEvaluator(),
		assessor:   assessor,
		thresholds: policy.DefaultThresholds(),
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one submission end to end and returns its report. Any
// extraction, combination or policy failure aborts processing; reasoning
// failures do not, they degrade into a conservative rejection.
func (p *Processor) Process(ctx context.Context, sub Submission) (*assessment.Report, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	applicationID := uuid.NewString()
	log := p.logger.WithFields(map[string]interface{}{"applicationId": applicationID})
	started := time.Now()

	log.Info("processing application", map[string]interface{}{
		"loanAmount": sub.LoanAmount,
	})

	identity, income, bank, err := p.extractAll(ctx, sub)
	if err != nil {
		return nil, err
	}

	combineStart := time.Now()
	applicant, err := profile.Combine(identity, income, bank, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("combine").Observe(time.Since(combineStart).Seconds())

	compliance, err := p.evaluator.Evaluate(applicant, sub.LoanAmount, p.thresholds)
	if err != nil {
		return nil, err
	}

	assessStart := time.Now()
	verdict, verdictErr := p.assessor.Assess(ctx, applicant, sub.LoanAmount, compliance, p.thresholds)
	metrics.PipelineStageDuration.WithLabelValues("assess").Observe(time.Since(assessStart).Seconds())
	if verdictErr != nil {
		log.Warn("risk assessment unavailable, falling back to rejection", map[string]interface{}{
			"error": verdictErr.Error(),
		})
	}

	result := assessment.Assemble(compliance, verdict, verdictErr)
	report := assessment.NewReport(applicationID, sub.LoanAmount, applicant, result)

	p.persist(ctx, report)

	metrics.ApplicationsProcessed.WithLabelValues(result.Recommendation).Inc()
	if p.obs != nil {
		p.obs.RecordApplicationProcessed(ctx, result.Recommendation)
		p.obs.RecordProcessingDuration(ctx, time.Since(started), result.Recommendation)
	}

	log.Info("application processed", map[string]interface{}{
		"recommendation": result.Recommendation,
		"riskLevel":      result.RiskLevel,
		"durationMs":     time.Since(started).Milliseconds(),
	})

	return report, nil
}

// extractAll fans the three documents out to the extraction service and
// joins on all of them before combination. The first failure cancels the
// sibling extractions.
func (p *Processor) extractAll(ctx context.Context, sub Submission) (identity, income, bank *docai.Extraction, err error) {
	extractStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		identity, err = p.extractor.Extract(gctx, sub.IdentityDocument, docai.DocumentTypeIdentity)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = p.extractor.Extract(gctx, sub.IncomeDocument, docai.DocumentTypeIncome)
		return err
	})
	if len(sub.BankStatement) > 0 {
		g.Go(func() error {
			var err error
			bank, err = p.extractor.Extract(gctx, sub.BankStatement, docai.DocumentTypeBankStatement)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	metrics.PipelineStageDuration.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())
	return identity, income, bank, nil
}

// persist writes the report to the store and cache on a best-effort basis.
func (p *Processor) persist(ctx context.Context, report *assessment.Report) {
	if p.store != nil {
		if err := p.store.SaveReport(ctx, report); err != nil {
			p.logger.Error("failed to persist report", map[string]interface{}{
				"applicationId": report.ApplicationID,
				"error":         err.Error(),
			})
		}
	}
	if p.cache != nil {
		if err := p.cache.SetReport(ctx, report); err != nil {
			p.logger.Warn("failed to cache report", map[string]interface{}{
				"applicationId": report.ApplicationID,
				"error":         err.Error(),
			})
		}
	}
}

// GetReport looks a finished report up, trying the cache before the
// store.
func (p *Processor) GetReport(ctx context.Context, applicationID string) (*assessment.Report, error) {
	if p.cache != nil {
		if report, err := p.cache.GetReport(ctx, applicationID); err == nil {
			return report, nil
		}
	}
	if p.store == nil {
		return nil, apperrors.NewReportNotFoundError(applicationID)
	}

	report, err := p.store.GetReport(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if cacheErr := p.cache.SetReport(ctx, report); cacheErr != nil {
			p.logger.Warn("failed to backfill report cache", map[string]interface{}{
				"applicationId": applicationID,
				"error":         cacheErr.Error(),
			})
		}
	}
	return report, nil
}
