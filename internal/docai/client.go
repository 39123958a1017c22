// internal/docai/client.go
package docai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"loan-processor/internal/common/config"
	apperrors "loan-processor/internal/common/errors"
	commonhttp "loan-processor/internal/common/http"
	"loan-processor/internal/common/logger"
	"loan-processor/internal/common/metrics"
)

const serviceName = "document-ai"

// Client calls the external document-understanding service and turns its
// annotations into typed extraction records.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetries int
	http       *commonhttp.Client
	logger     logger.Logger
}

func NewClient(cfg config.DocAIConfig, log logger.Logger) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    config.GetDuration(cfg.Timeout),
		maxRetries: cfg.MaxRetries,
		// Timeouts are per attempt through the request context, not on
		// the transport.
		http:   commonhttp.NewClient(),
		logger: log.WithFields(map[string]interface{}{"service": serviceName}),
	}
}

type annotationFormat struct {
	Type       string     `json:"type"`
	JSONSchema schemaSpec `json:"json_schema"`
}

type schemaSpec struct {
	Schema json.RawMessage `json:"schema"`
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
}

type extractRequest struct {
	Model              string           `json:"model"`
	Document           documentPayload  `json:"document"`
	BBoxAnnotation     annotationFormat `json:"bbox_annotation_format"`
	IncludeImageBase64 bool             `json:"include_image_base64"`
}

type documentPayload struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type extractResponse struct {
	Pages []struct {
		Markdown string `json:"markdown"`
		Images   []struct {
			ImageAnnotation json.RawMessage `json:"image_annotation"`
		} `json:"images"`
	} `json:"pages"`
}

// Extract sends document bytes plus the schema for docType and returns the
// typed field mapping. The call is bounded by the configured timeout and
// retried at most maxRetries times before surfacing SERVICE_UNAVAILABLE.
func (c *Client) Extract(ctx context.Context, document []byte, docType DocumentType) (*Extraction, error) {
	if !docType.Valid() {
		return nil, apperrors.NewExtractionFailedError(string(docType), fmt.Sprintf("unsupported document type: %s", docType))
	}
	if len(document) == 0 {
		return nil, apperrors.NewExtractionFailedError(string(docType), "empty document")
	}

	schema, err := SchemaFor(docType)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(string(docType), err.Error())
	}

	reqBody := extractRequest{
		Model: c.model,
		Document: documentPayload{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document),
		},
		BBoxAnnotation: annotationFormat{
			Type: "json_schema",
			JSONSchema: schemaSpec{
				Schema: json.RawMessage(schema),
				Name:   string(docType) + "_extraction",
				Strict: true,
			},
		},
		IncludeImageBase64: false,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.post(ctx, reqBody)
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues(string(docType), string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	extraction, err := c.decode(body, docType, schema)
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues(string(docType), string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	metrics.DocumentsExtracted.WithLabelValues(string(docType)).Inc()
	c.logger.Info("document extracted", map[string]interface{}{
		"documentType": docType,
		"bytes":        len(document),
	})

	return extraction, nil
}

// post issues the extraction request with bounded retries and exponential
// backoff between attempts.
func (c *Client) post(ctx context.Context, reqBody extractRequest) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewServiceUnavailableError(serviceName, ctx.Err())
			}
			c.logger.Warn("retrying extraction request", map[string]interface{}{
				"attempt": attempt,
			})
		}

		resp, err := c.http.PostJSON(ctx, c.endpoint, c.apiKey, reqBody)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperrors.NewServiceUnavailableError(serviceName, ctx.Err())
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK && readErr == nil {
			return body, nil
		}
		if readErr != nil {
			lastErr = readErr
		} else {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	return nil, apperrors.NewServiceUnavailableError(serviceName, lastErr)
}

// decode locates the annotation payload, validates it against the declared
// schema and unmarshals it into the typed variant for docType.
func (c *Client) decode(body []byte, docType DocumentType, schema string) (*Extraction, error) {
	var resp extractResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewExtractionFailedError(string(docType), fmt.Sprintf("decode response: %v", err))
	}

	annotation := firstAnnotation(&resp)
	if annotation == nil {
		return nil, apperrors.NewExtractionFailedError(string(docType), "no annotation data in extraction response")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(annotation),
	)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(string(docType), fmt.Sprintf("schema validation: %v", err))
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, apperrors.NewExtractionFailedError(string(docType), strings.Join(issues, "; "))
	}

	extraction := &Extraction{DocumentType: docType}
	switch docType {
	case DocumentTypeIdentity:
		extraction.Identity = &IdentityFields{}
		err = json.Unmarshal(annotation, extraction.Identity)
	case DocumentTypeIncome:
		extraction.Income = &IncomeFields{}
		err = json.Unmarshal(annotation, extraction.Income)
	case DocumentTypeBankStatement:
		extraction.Bank = &BankFields{}
		err = json.Unmarshal(annotation, extraction.Bank)
	}
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(string(docType), fmt.Sprintf("decode annotation: %v", err))
	}

	return extraction, nil
}

// firstAnnotation walks pages and images for the first annotation payload.
// Some service versions wrap the JSON object in a string.
func firstAnnotation(resp *extractResponse) json.RawMessage {
	for _, page := range resp.Pages {
		for _, image := range page.Images {
			raw := image.ImageAnnotation
			if len(raw) == 0 || string(raw) == "null" {
				continue
			}
			if raw[0] == '"' {
				var unquoted string
				if err := json.Unmarshal(raw, &unquoted); err != nil {
					continue
				}
				return json.RawMessage(unquoted)
			}
			return raw
		}
	}
	return nil
}
