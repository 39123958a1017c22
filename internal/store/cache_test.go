// internal/store/cache_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "loan-processor/internal/common/errors"
	"loan-processor/internal/common/logger"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReportCache(client, time.Hour, logger.NewNoOpLogger()), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	report := testReport(t)

	require.NoError(t, cache.SetReport(context.Background(), report))

	got, err := cache.GetReport(context.Background(), report.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, report.ApplicationID, got.ApplicationID)
	assert.Equal(t, report.RiskAssessment.Recommendation, got.RiskAssessment.Recommendation)
}

func TestCacheMissIsNotFound(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.GetReport(context.Background(), "unknown-id")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeReportNotFound, apperrors.CodeOf(err))
}

func TestCacheEntryExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	report := testReport(t)

	require.NoError(t, cache.SetReport(context.Background(), report))
	mr.FastForward(2 * time.Hour)

	_, err := cache.GetReport(context.Background(), report.ApplicationID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeReportNotFound, apperrors.CodeOf(err))
}
