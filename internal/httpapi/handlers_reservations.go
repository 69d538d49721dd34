package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/reservation"
)

type reservationAcquireRequest struct {
	Repo   string `json:"repo"`
	Path   string `json:"path"`
	Alias  string `json:"alias"`
	Reason string `json:"reason"`
	Renew  bool   `json:"renew"`
}

func (s *Server) handleReservationAcquire(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reservationAcquireRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Path == "" {
		writeError(w, r, apperr.ValidationError("path is required"))
		return
	}

	if req.Renew {
		ok, rerr := s.app.Reservation.Renew(r.Context(), id.ProjectID, req.Repo, req.Path, wsID)
		if rerr != nil {
			writeError(w, r, rerr)
			return
		}
		if !ok {
			writeError(w, r, apperr.Conflictf("%q is not held by this workspace", req.Path))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"path": req.Path, "renewed": true})
		return
	}

	ok, holder, err := s.app.Reservation.Acquire(r.Context(), reservation.AcquireRequest{
		ProjectID:   id.ProjectID,
		Repo:        req.Repo,
		Path:        req.Path,
		WorkspaceID: wsID,
		Alias:       req.Alias,
		Reason:      req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.Conflictf("%q is already reserved by %s", req.Path, holder).WithFields(map[string]any{"holder": holder}))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"path": req.Path, "workspace_id": wsID})
}

func (s *Server) handleReservationRelease(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	path := chi.URLParam(r, "*")
	repo := r.URL.Query().Get("repo")
	ok, err := s.app.Reservation.Release(r.Context(), id.ProjectID, repo, path, wsID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFoundf("%q is not reserved by this workspace", path))
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReservationList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	held, err := s.app.Reservation.List(r.Context(), id.ProjectID, r.URL.Query().Get("repo"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": held})
}
