package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotCountsConflictRejections(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/lessons", http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/schedule/move", http.StatusConflict, 12*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/schedule/swap", http.StatusConflict, 8*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.ConflictRejections)
	assert.Greater(t, snap.AverageRequestDurationMs, 0.0)
}

func TestSnapshotCacheHitRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 1e-9)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/lessons", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveDBQuery("ping", time.Millisecond)

	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
	assert.NotNil(t, m.Handler())
}
