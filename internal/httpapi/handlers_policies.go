package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
)

func (s *Server) handlePolicyActive(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	p, err := s.app.Policy.GetActive(r.Context(), id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePolicyHistory(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	history, err := s.app.Policy.ListHistory(r.Context(), id.ProjectID, parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"policies": history})
}

func (s *Server) handlePolicyGet(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	p, err := s.app.Policy.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.ProjectID != id.ProjectID {
		writeError(w, r, apperr.NotFoundf("policy not found"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type policyCreateRequest struct {
	Bundle       json.RawMessage `json:"bundle"`
	BasePolicyID string          `json:"base_policy_id"`
}

func (s *Server) handlePolicyCreate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	var req policyCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Bundle) == 0 {
		writeError(w, r, apperr.ValidationError("bundle is required"))
		return
	}
	result, err := s.app.Policy.Create(r.Context(), id.ProjectID, req.Bundle, req.BasePolicyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"policy": result.Policy, "created": result.Created})
}

func (s *Server) handlePolicyActivate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	if err := s.app.Policy.Activate(r.Context(), id.ProjectID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active_policy_id": chi.URLParam(r, "id")})
}

func (s *Server) handlePolicyReset(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	p, err := s.app.Policy.ResetToDefaults(r.Context(), id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
