package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/store"
)

type workspacePatchRequest struct {
	HumanName   *string `json:"human_name"`
	Role        *string `json:"role"`
	Branch      *string `json:"branch"`
	Focus       *string `json:"focus"`
	Host        *string `json:"host"`
	Path        *string `json:"path"`
	Timezone    *string `json:"timezone"`
	MemberEmail *string `json:"member_email"`
}

func (s *Server) handleWorkspaceRegister(w http.ResponseWriter, r *http.Request) {
	// Registration of additional workspaces against an already-bootstrapped
	// project reuses the same Init path as /v1/init; the distinction is
	// purely which route the client is authenticated against.
	s.handleInit(w, r)
}

func (s *Server) handleWorkspaceList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	list, err := s.app.Workspace.List(r.Context(), id.ProjectID, includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	redact, err := s.publicReader(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if redact {
		for i := range list {
			list[i] = redactWorkspace(list[i])
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": list})
}

func (s *Server) handleWorkspaceGet(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	ws, err := s.app.Workspace.Get(r.Context(), id.ProjectID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	redact, err := s.publicReader(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if redact {
		redacted := redactWorkspace(*ws)
		ws = &redacted
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleWorkspaceUpdate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	var req workspacePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ws, err := s.app.Workspace.Update(r.Context(), id.ProjectID, chi.URLParam(r, "id"), store.WorkspacePatch{
		HumanName:   req.HumanName,
		Role:        req.Role,
		Branch:      req.Branch,
		Focus:       req.Focus,
		Host:        req.Host,
		Path:        req.Path,
		Timezone:    req.Timezone,
		MemberEmail: req.MemberEmail,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleWorkspaceDelete(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	if err := s.app.Workspace.SoftDelete(r.Context(), id.ProjectID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleWorkspaceRestore(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	ws, err := s.app.Workspace.Restore(r.Context(), id.ProjectID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}
