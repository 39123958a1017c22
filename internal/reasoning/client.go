// internal/reasoning/client.go
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loan-processor/internal/common/config"
	apperrors "loan-processor/internal/common/errors"
	commonhttp "loan-processor/internal/common/http"
	"loan-processor/internal/common/logger"
	"loan-processor/internal/common/metrics"
	"loan-processor/internal/policy"
	"loan-processor/internal/profile"
)

const serviceName = "risk-reasoning"

// Client talks to the chat-completions reasoning service. Output that does
// not match the verdict contract is rejected, never repaired.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	timeout     time.Duration
	maxRetries  int
	temperature float64
	maxTokens   int
	http        *commonhttp.Client
	logger      logger.Logger
}

func NewClient(cfg config.ReasoningConfig, log logger.Logger) *Client {
	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		timeout:     config.GetDuration(cfg.Timeout),
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		http:        commonhttp.NewClient(),
		logger:      log.WithFields(map[string]interface{}{"service": serviceName}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Assess requests a risk verdict for the profile and the deterministic
// policy results. The call is bounded by the configured timeout with at
// most maxRetries retries; a response that parses but violates the verdict
// contract is a MALFORMED_VERDICT error and is not retried.
func (c *Client) Assess(ctx context.Context, p *profile.ApplicantProfile, loanAmount float64, compliance *policy.Compliance, thresholds policy.Thresholds) (*Verdict, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(p, loanAmount, compliance, thresholds)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.post(ctx, reqBody)
	if err != nil {
		metrics.ReasoningRequests.WithLabelValues("unavailable").Inc()
		return nil, err
	}

	verdict, err := parseVerdict(body)
	if err != nil {
		metrics.ReasoningRequests.WithLabelValues("malformed").Inc()
		c.logger.Error("reasoning verdict rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.ReasoningRequests.WithLabelValues("ok").Inc()
	c.logger.Info("risk verdict received", map[string]interface{}{
		"riskScore":      verdict.RiskScore,
		"riskLevel":      verdict.RiskLevel,
		"recommendation": verdict.Recommendation,
	})

	return verdict, nil
}

func (c *Client) post(ctx context.Context, reqBody chatRequest) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewServiceUnavailableError(serviceName, ctx.Err())
			}
			c.logger.Warn("retrying reasoning request", map[string]interface{}{
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

// parseVerdict extracts the model message, strips optional markdown fences
// and enforces the verdict contract.
func parseVerdict(body []byte) (*Verdict, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewMalformedVerdictError(fmt.Sprintf("decode response envelope: %v", err))
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewMalformedVerdictError("response carries no choices")
	}

	content := extractJSON(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, apperrors.NewMalformedVerdictError("model message is empty")
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, apperrors.NewMalformedVerdictError(fmt.Sprintf("decode verdict: %v", err))
	}
	if issues := verdict.Validate(); issues != "" {
		return nil, apperrors.NewMalformedVerdictError(issues)
	}

	return &verdict, nil
}

// extractJSON strips markdown code fences some models wrap their JSON in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	return content
}
