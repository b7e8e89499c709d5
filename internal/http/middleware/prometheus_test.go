package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrometheus(t *testing.T) (*PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test to avoid duplicate registration.
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)
	return m, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	promMiddleware, _ := newTestPrometheus(t)

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/test", "200")))

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("DELETE", "/test", "200")))

	app.Test(httptest.NewRequest("GET", "/error", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/error", "400")))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	promMiddleware, reg := newTestPrometheus(t)

	app := fiber.New()
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	promMiddleware, _ := newTestPrometheus(t)

	app := fiber.New()
	app.Use(promMiddleware.Handler())
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/documents/123", nil))

	// /documents/:id, not /documents/123
	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/documents/:id", "200"))
	assert.Equal(t, float64(1), count)
	assert.NotZero(t, testutil.CollectAndCount(promMiddleware.requestDuration))
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}

func TestMetricsHandler(t *testing.T) {
	promMiddleware, reg := newTestPrometheus(t)

	app := fiber.New()
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", MetricsHandler(reg))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	app.Test(httptest.NewRequest("GET", "/ping", nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `http_requests_total{method="GET",path="/ping",status="200"} 1`), string(body))
	assert.Contains(t, string(body), "http_request_duration_seconds_bucket")
}
