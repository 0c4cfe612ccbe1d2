package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	router := chi.NewRouter()
	router.Use(metrics.Middleware)
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	}

	got := testutil.ToFloat64(metrics.requests.WithLabelValues("/items/{id}", http.MethodGet, "404"))
	assert.Equal(t, float64(3), got)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestMetricsCollapsesUnmatchedPaths(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	router := chi.NewRouter()
	router.Use(metrics.Middleware)
	router.Get("/items", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/"+strconv.Itoa(i), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.requests))
	got := testutil.ToFloat64(metrics.requests.WithLabelValues(unmatchedRoute, http.MethodGet, "404"))
	assert.Equal(t, float64(50), got)
}
