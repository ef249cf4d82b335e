package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(logBuffer, nil))

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("accepted"))
	})

	req := httptest.NewRequest(http.MethodPost, "/loans/1/payments", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	req.Header.Set("User-Agent", "TestAgent/1.0")
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-123"))
	rr := httptest.NewRecorder()

	StructuredLogger(logger)(nextHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &logEntry))
	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "Served request", logEntry["msg"])
	assert.Equal(t, "POST", logEntry["method"])
	assert.Equal(t, "/loans/1/payments", logEntry["path"])
	assert.Equal(t, float64(http.StatusAccepted), logEntry["status"])
	assert.Equal(t, "req-123", logEntry["request_id"])
	assert.GreaterOrEqual(t, logEntry["latency_ms"].(float64), 5.0)
}

func TestStructuredLogger_ServerErrorsLogAtErrorLevel(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	logger := slog.New(slog.NewJSONHandler(logBuffer, nil))

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	StructuredLogger(logger)(nextHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
}
