package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// PingChecker pings the history database
type PingChecker struct {
	DB *sql.DB
}

func (p PingChecker) Check(ctx context.Context) error { return p.DB.PingContext(ctx) }

// Dependency is an optional store the service can run without.
// A nil Checker means the store is not configured.
type Dependency struct {
	Name    string
	Checker HealthChecker
	Timeout time.Duration // per check, default 2s
}

const (
	depUp       = "up"
	depDown     = "down"
	depDisabled = "disabled"
)

// DependencyStatus is the outcome of one dependency check
type DependencyStatus struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// HealthReport is the /healthz body. Status is "degraded" when any configured
// store is down; analysis still works without them, so the code stays 200.
type HealthReport struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// Probe runs every dependency check concurrently, each under its own timeout
func Probe(ctx context.Context, deps []Dependency) HealthReport {
	report := HealthReport{
		Status:       "ok",
		Timestamp:    time.Now().UTC(),
		Dependencies: make(map[string]DependencyStatus, len(deps)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, d := range deps {
		if d.Checker == nil {
			mu.Lock()
			report.Dependencies[d.Name] = DependencyStatus{Status: depDisabled}
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(d Dependency) {
			defer wg.Done()
			st := check(ctx, d)
			mu.Lock()
			report.Dependencies[d.Name] = st
			mu.Unlock()
		}(d)
	}
	wg.Wait()

	for _, st := range report.Dependencies {
		if st.Status == depDown {
			report.Status = "degraded"
		}
	}
	return report
}

func check(ctx context.Context, d Dependency) DependencyStatus {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := d.Checker.Check(cctx)
	st := DependencyStatus{Status: depUp, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		st.Status = depDown
		st.Error = err.Error()
	}
	return st
}

// HealthHandler serves the dependency report
func HealthHandler(deps []Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := Probe(r.Context(), deps)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// ReadinessHandler lists the configured dependency names; readiness does not
// wait on optional stores
func ReadinessHandler(deps []Dependency) http.HandlerFunc {
	enabled := []string{}
	for _, d := range deps {
		if d.Checker != nil {
			enabled = append(enabled, d.Name)
		}
	}
	sort.Strings(enabled)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ready",
			"enabled": enabled,
		})
	}
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
