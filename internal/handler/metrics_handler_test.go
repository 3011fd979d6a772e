package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/service"
)

type pingerMock struct{ err error }

func (p pingerMock) PingContext(context.Context) error { return p.err }

func (p pingerMock) Ping(context.Context) error { return p.err }

func TestReadyAllHealthy(t *testing.T) {
	handler := NewMetricsHandler(nil, pingerMock{}, pingerMock{})

	c, w := newTestContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"database":"ok","cache":"ok"}}`, w.Body.String())
}

func TestReadyDatabaseDown(t *testing.T) {
	handler := NewMetricsHandler(nil, pingerMock{err: errors.New("connection refused")}, nil)

	c, w := newTestContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), "cache")
}

func TestPrometheusEndpoint(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveRule("electives", 0)
	handler := NewMetricsHandler(metrics, nil, nil)

	c, w := newTestContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "plan_rule_duration_seconds")
}

func TestPrometheusDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil, nil)

	c, w := newTestContext(http.MethodGet, "/metrics", nil)
	handler.Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, c.IsAborted())
	assert.Empty(t, w.Body.String())
}
