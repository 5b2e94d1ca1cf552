package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisOutcomes(t *testing.T) {
	before := analysisOutcomes()

	done := AnalysisStarted()
	done("schema_violation")
	AnalysisStarted()("")

	after := analysisOutcomes()
	assert.Equal(t, before["schema_violation"]+1, after["schema_violation"])
	assert.Equal(t, before["ok"]+1, after["ok"])
}

func TestMetricsMiddlewareAndHandler(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest("GET", "/metrics", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.GreaterOrEqual(t, body["requests_failed"], float64(1))
	assert.Contains(t, body, "analyses_by_outcome")
	assert.Contains(t, body, "uptime_seconds")
}
