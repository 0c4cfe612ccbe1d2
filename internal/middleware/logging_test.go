package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddlewareLogsCompletion(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	router := chi.NewRouter()
	router.Use(LoggingMiddleware(zap.New(core)))
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	completed := logs.FilterMessage("Request completed").All()
	require.Len(t, completed, 1)

	fields := completed[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/items/{id}", fields["route"])
	assert.Equal(t, "/items/42", fields["path"])
	assert.Equal(t, zapcore.InfoLevel, completed[0].Level)
}

func TestLoggingMiddlewareWarnsOnServerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items", nil))

	completed := logs.FilterMessage("Request completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, zapcore.WarnLevel, completed[0].Level)
}
