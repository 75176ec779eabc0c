package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// dependency is a checked component. A failing critical dependency makes the
// service unhealthy; any other failure only degrades it.
type dependency struct {
	name     string
	checker  HealthChecker
	critical bool
}

// HealthHandler reports the state of the Solana RPC node and the price cache
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(rpc, cache HealthChecker) *HealthHandler {
	deps := []dependency{{name: "solana_rpc", checker: rpc, critical: true}}
	if cache != nil {
		deps = append(deps, dependency{name: "cache", checker: cache})
	}
	return &HealthHandler{deps: deps}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	errs := h.check(ctx)

	response := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, len(h.deps)),
	}

	for i, dep := range h.deps {
		if errs[i] == nil {
			response.Services[dep.name] = statusHealthy
			continue
		}
		response.Services[dep.name] = statusUnhealthy + ": " + errs[i].Error()
		if dep.critical {
			response.Status = statusUnhealthy
		} else if response.Status == statusHealthy {
			response.Status = statusDegraded
		}
	}

	status := http.StatusOK
	if response.Status == statusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready. Only critical dependencies gate readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, dep := range h.deps {
		if !dep.critical {
			continue
		}
		if err := dep.checker.HealthCheck(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

// check runs all dependency checks concurrently
func (h *HealthHandler) check(ctx context.Context) []error {
	errs := make([]error, len(h.deps))

	var wg sync.WaitGroup
	for i, dep := range h.deps {
		i, dep := i, dep
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = dep.checker.HealthCheck(ctx)
		}()
	}
	wg.Wait()

	return errs
}
