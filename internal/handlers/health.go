package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency. Critical checks gate readiness.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// HealthHandlers serves the health, liveness and readiness probes
type HealthHandlers struct {
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandlers creates probes over checks
func NewHealthHandlers(checks ...HealthCheck) *HealthHandlers {
	return &HealthHandlers{checks: checks, timeout: 3 * time.Second}
}

// Register mounts /api/health, /healthz and /readyz
func (h *HealthHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/healthz", h.Liveness) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", h.Readiness) // Kubernetes readiness probe
}

func (h *HealthHandlers) run(ctx context.Context, criticalOnly bool) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	healthy := true
	results := make(map[string]interface{})
	for _, c := range h.checks {
		if criticalOnly && !c.Critical {
			continue
		}
		if err := c.Check(ctx); err != nil {
			healthy = false
			results[c.Name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			continue
		}
		results[c.Name] = map[string]interface{}{"status": "healthy"}
	}
	return results, healthy
}

// Health reports every dependency
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.run(r.Context(), false)

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Liveness returns 200 while the process is running (doesn't check dependencies)
func (h *HealthHandlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness returns 200 once every critical dependency answers
func (h *HealthHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.run(r.Context(), true)
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
