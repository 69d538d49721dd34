package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/escalation"
)

type escalationCreateRequest struct {
	Subject   string   `json:"subject"`
	Situation string   `json:"situation"`
	Options   []string `json:"options"`
	TTLSecs   int      `json:"ttl_seconds"`
}

func (s *Server) handleEscalationCreate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req escalationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var ttl time.Duration
	if req.TTLSecs > 0 {
		ttl = time.Duration(req.TTLSecs) * time.Second
	}
	e, err := s.app.Escalation.Create(r.Context(), escalation.CreateRequest{
		ProjectID:   id.ProjectID,
		WorkspaceID: wsID,
		Subject:     req.Subject,
		Situation:   req.Situation,
		Options:     req.Options,
		TTL:         ttl,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleEscalationList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	list, err := s.app.Escalation.List(r.Context(), id.ProjectID, r.URL.Query().Get("status"), parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"escalations": list})
}

func (s *Server) handleEscalationGet(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	e, err := s.app.Escalation.Get(r.Context(), id.ProjectID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type escalationRespondRequest struct {
	Response string `json:"response"`
	Note     string `json:"note"`
}

func (s *Server) handleEscalationRespond(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	var req escalationRespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Response == "" {
		writeError(w, r, apperr.ValidationError("response is required"))
		return
	}
	e, err := s.app.Escalation.Respond(r.Context(), id.ProjectID, chi.URLParam(r, "id"), req.Response, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
