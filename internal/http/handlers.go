package http

import (
	"context"
	"net/http"
	"time"

	"finboard/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the data source
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"cache": map[string]any{"entries": s.listCache.Size()},
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
			"limited":        s.rateLimiter.GetMetrics().TotalHits,
		},
		"security": map[string]any{
			"suspicious_requests": s.detector.GetMetrics().SuspiciousRequests,
		},
	}

	if err := s.store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	summary, err := s.dashboard.Summary(ctx)
	if err != nil {
		errorResponse(r.Context(), log.OpRead, err).Write(w)
		return
	}
	NewResponse().JSON(summary).Write(w)
}
