package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/service"
)

func TestMetricsHandlerHealth(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/health", nil, nil)

	handler.Health(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsHandlerReadyReportsFailingCheck(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})

	c, w := newTestContext(t, http.MethodGet, "/ready", nil, nil)

	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
	})

	c, w := newTestContext(t, http.MethodGet, "/ready", nil, nil)

	handler.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordLifecycle("grade_created")
	handler := NewMetricsHandler(metrics, nil)

	c, w := newTestContext(t, http.MethodGet, "/metrics", nil, nil)

	handler.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifecycle_events_total")
}

func TestMetricsHandlerPrometheusDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/metrics", nil, nil)

	handler.Prometheus(c)
	c.Writer.WriteHeaderNow() // gin's engine flushes the pending status after handlers; do the same here
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
