package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Check probes a single dependency, Redis for example. A nil error means the
// dependency is usable.
type Check struct {
	Name  string
	Probe func() error
}

// HealthChecker provides liveness and readiness handlers. Readiness requires
// SetReady(true) and every registered dependency check to pass.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
	checks    []Check
}

// New creates a health checker with the given dependency checks.
func New(checks ...Check) *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		checks:    checks,
	}
}

// SetReady marks the service as ready to serve queries.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse is the body of the health and readiness endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Health returns the liveness handler. It reports 200 whenever the process
// is up, regardless of dependency state.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// Ready returns the readiness handler: 200 when the service is marked ready
// and every dependency check passes, 503 otherwise.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "service is starting",
			})
			return
		}

		checks := make(map[string]string, len(h.checks))
		failed := false
		for _, check := range h.checks {
			if err := check.Probe(); err != nil {
				checks[check.Name] = err.Error()
				failed = true
				continue
			}
			checks[check.Name] = "ok"
		}

		if failed {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "degraded",
				Uptime: time.Since(h.startTime).String(),
				Checks: checks,
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
			Checks: checks,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
