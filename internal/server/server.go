// Package server exposes the processing pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loan-processor/internal/assessment"
	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
	"loan-processor/internal/pipeline"
)

// Processor is the part of the pipeline the server depends on.
type Processor interface {
	Process(ctx context.Context, sub pipeline.Submission) (*assessment.Report, error)
	GetReport(ctx context.Context, applicationID string) (*assessment.Report, error)
}

// Server routes loan application requests to the processor.
type Server struct {
	processor      Processor
	maxUploadBytes int64
	logger         logger.Logger
}

func New(processor Processor, maxUploadBytes int64, log logger.Logger) *Server {
	return &Server{
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
		logger:         log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/applications", s.handleSubmit)
		r.Get("/applications/{applicationID}", s.handleGetReport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmit accepts a multipart form with the three documents and the
// requested loan amount and runs the application through the pipeline.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, apperrors.NewValidationError("request is not a valid multipart form"))
		return
	}

	loanAmount, err := strconv.ParseFloat(r.FormValue("loan_amount"), 64)
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("loan_amount must be a number"))
		return
	}

	sub := pipeline.Submission{LoanAmount: loanAmount}
	for _, doc := range []struct {
		field    string
		target   *[]byte
		optional bool
	}{
		{"identity_document", &sub.IdentityDocument, false},
		{"income_document", &sub.IncomeDocument, false},
		{"bank_statement", &sub.BankStatement, true},
	} {
		data, err := readFormFile(r, doc.field)
		if err != nil {
			if doc.optional && errors.Is(err, http.ErrMissingFile) {
				continue
			}
			s.writeError(w, apperrors.NewValidationError("missing or unreadable file field: "+doc.field))
			return
		}
		*doc.target = data
	}

	report, err := s.processor.Process(r.Context(), sub)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")

	report, err := s.processor.GetReport(r.Context(), applicationID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

type errorResponse struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
}

// writeError maps the internal error taxonomy onto HTTP statuses. Unknown
// errors stay opaque 500s.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		s.logger.Error("unhandled error", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL",
			Message: "internal server error",
		})
		return
	}

	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"code":  stdErr.Code,
			"error": stdErr.Details,
		})
	}

	writeJSON(w, status, errorResponse{
		Code:    stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeReportNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeProfileIncomplete,
		apperrors.ErrCodeInvalidDate,
		apperrors.ErrCodeSchemaMismatch,
		apperrors.ErrCodeExtractionFailed,
		apperrors.ErrCodeUndefinedRatio:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
