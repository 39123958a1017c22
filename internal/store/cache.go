// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-processor/internal/assessment"
	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
)

const reportKeyPrefix = "loan:report:"

// ReportCache keeps recent reports in Redis so repeated lookups skip the
// database.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewReportCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "report-cache"}),
	}
}

// SetReport stores the report under its application ID with the cache TTL.
func (c *ReportCache) SetReport(ctx context.Context, report *assessment.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.NewStorageFailedError(fmt.Errorf("marshal report: %w", err))
	}

	if err := c.client.Set(ctx, reportKeyPrefix+report.ApplicationID, payload, c.ttl).Err(); err != nil {
		return apperrors.NewStorageFailedError(err)
	}
	return nil
}

// GetReport returns the cached report, or REPORT_NOT_FOUND on a cache
// miss so callers fall through to the database.
func (c *ReportCache) GetReport(ctx context.Context, applicationID string) (*assessment.Report, error) {
	payload, err := c.client.Get(ctx, reportKeyPrefix+applicationID).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewReportNotFoundError(applicationID)
	}
	if err != nil {
		return nil, apperrors.NewStorageFailedError(err)
	}

	var report assessment.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, apperrors.NewStorageFailedError(fmt.Errorf("unmarshal cached report: %w", err))
	}
	return &report, nil
}
