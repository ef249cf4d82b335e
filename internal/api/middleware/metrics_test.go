package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/loans/{loanID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	for _, path := range []string{"/loans/1", "/loans/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	expectedTotal := `
		# HELP lending_engine_http_requests_total Total number of HTTP requests.
		# TYPE lending_engine_http_requests_total counter
		lending_engine_http_requests_total{method="GET",path="/loans/{loanID}",status_code="200"} 2
	`
	err := testutil.CollectAndCompare(httpRequestsTotal, strings.NewReader(expectedTotal))
	assert.NoError(t, err)
}
