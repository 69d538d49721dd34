package httpapi

import "net/http"

// handleHealth backs GET /health (spec.md §6): SELECT 1 against the durable
// store and a PING against the ephemeral store, unauthenticated so a load
// balancer can probe it directly.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := s.app.Store.Healthy(r.Context()); err != nil {
		checks["store"] = err.Error()
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if err := s.app.Ephemeral.Healthy(r.Context()); err != nil {
		checks["ephemeral"] = err.Error()
		healthy = false
	} else {
		checks["ephemeral"] = "ok"
	}

	status := http.StatusOK
	body := map[string]any{"status": "ok", "checks": checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}
