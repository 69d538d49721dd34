package httpapi

import (
	"net/http"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/workspace"
)

type initRequest struct {
	TenantID          string `json:"tenant_id"`
	ProjectSlug       string `json:"project_slug"`
	ProjectVisibility string `json:"project_visibility"`
	CanonicalOrigin   string `json:"canonical_origin"`
	Class             string `json:"class"`
	Alias             string `json:"alias"`
	HumanName         string `json:"human_name"`
	Role              string `json:"role"`
}

type initResponse struct {
	ProjectID   string `json:"project_id"`
	RepoID      string `json:"repo_id,omitempty"`
	WorkspaceID string `json:"workspace_id"`
	Alias       string `json:"alias"`
	ApiKey      string `json:"api_key"`
}

// handleInit bootstraps a project/repo/workspace/api-key in one call
// (spec.md §4.C4). It is mounted outside the authenticated route group: a
// caller has no credentials until init hands one out.
func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProjectSlug == "" || req.Role == "" {
		writeError(w, r, apperr.ValidationError("project_slug and role are required"))
		return
	}

	visibility := domain.VisibilityPrivate
	if req.ProjectVisibility == string(domain.VisibilityPublic) {
		visibility = domain.VisibilityPublic
	}
	class := domain.WorkspaceClassAgent
	if req.Class == string(domain.WorkspaceClassDashboard) {
		class = domain.WorkspaceClassDashboard
	}

	result, err := s.app.Workspace.Init(r.Context(), workspace.InitRequest{
		TenantID:          req.TenantID,
		ProjectSlug:       req.ProjectSlug,
		ProjectVisibility: visibility,
		CanonicalOrigin:   req.CanonicalOrigin,
		Class:             class,
		RequestedAlias:    req.Alias,
		HumanName:         req.HumanName,
		Role:              req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := initResponse{
		ProjectID:   result.Project.ID,
		WorkspaceID: result.Workspace.ID,
		Alias:       result.Workspace.Alias,
		ApiKey:      result.PlaintextKey,
	}
	if result.Repo != nil {
		resp.RepoID = result.Repo.ID
	}
	writeJSON(w, http.StatusCreated, resp)
}
