package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	up := CheckerFunc(func(context.Context) error { return nil })
	down := CheckerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all configured stores up", func(t *testing.T) {
		r := Probe(context.Background(), []Dependency{{Name: "history", Checker: up}, {Name: "archive", Checker: up}})
		assert.Equal(t, "ok", r.Status)
		assert.Equal(t, depUp, r.Dependencies["history"].Status)
	})

	t.Run("disabled stores are reported, not checked", func(t *testing.T) {
		r := Probe(context.Background(), []Dependency{{Name: "history"}, {Name: "archive"}})
		assert.Equal(t, "ok", r.Status)
		assert.Equal(t, DependencyStatus{Status: depDisabled}, r.Dependencies["history"])
		assert.Equal(t, DependencyStatus{Status: depDisabled}, r.Dependencies["archive"])
	})

	t.Run("a down store degrades", func(t *testing.T) {
		r := Probe(context.Background(), []Dependency{{Name: "history", Checker: up}, {Name: "archive", Checker: down}})
		assert.Equal(t, "degraded", r.Status)
		assert.Equal(t, "connection refused", r.Dependencies["archive"].Error)
	})

	t.Run("each check has its own timeout", func(t *testing.T) {
		slow := CheckerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		start := time.Now()
		r := Probe(context.Background(), []Dependency{
			{Name: "history", Checker: slow, Timeout: 20 * time.Millisecond},
			{Name: "archive", Checker: up},
		})
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, depDown, r.Dependencies["history"].Status)
		assert.Contains(t, r.Dependencies["history"].Error, "deadline exceeded")
		assert.Equal(t, depUp, r.Dependencies["archive"].Status)
	})
}

func TestHealthHandler(t *testing.T) {
	down := CheckerFunc(func(context.Context) error { return errors.New("bucket missing") })
	rec := httptest.NewRecorder()
	HealthHandler([]Dependency{{Name: "archive", Checker: down}, {Name: "history"}})(rec, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var r HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "degraded", r.Status)
	assert.Equal(t, depDisabled, r.Dependencies["history"].Status)
}

func TestReadinessHandler(t *testing.T) {
	up := CheckerFunc(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ReadinessHandler([]Dependency{{Name: "history", Checker: up}, {Name: "archive"}})(rec, httptest.NewRequest("GET", "/readyz", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, []any{"history"}, body["enabled"])
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
