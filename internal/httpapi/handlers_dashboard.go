package httpapi

import (
	"net/http"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/workspace"
)

// handleDashboardConfig returns the project, its active policy (if any),
// and the repos a dashboard client should offer in its UI.
func (s *Server) handleDashboardConfig(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	ctx := r.Context()

	project, err := s.app.Store.GetProjectByID(ctx, id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	repos, err := s.app.Store.ListRepos(ctx, id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"project": project, "repos": repos}
	if project.ActivePolicyID != nil {
		policy, perr := s.app.Policy.GetActive(ctx, id.ProjectID)
		if perr == nil {
			resp["active_policy"] = policy
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type dashboardIdentityRequest struct {
	TenantID          string `json:"tenant_id"`
	ProjectSlug       string `json:"project_slug"`
	ProjectVisibility string `json:"project_visibility"`
	Alias             string `json:"alias"`
	HumanName         string `json:"human_name"`
	Role              string `json:"role"`
}

// handleDashboardIdentity mints a dashboard-class workspace — a human
// operator's identity, never bound to a repo — through the same bootstrap
// path /v1/init uses for agents (SPEC_FULL.md "Dashboard identity
// bootstrap").
func (s *Server) handleDashboardIdentity(w http.ResponseWriter, r *http.Request) {
	var req dashboardIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	visibility := domain.VisibilityPrivate
	if req.ProjectVisibility == string(domain.VisibilityPublic) {
		visibility = domain.VisibilityPublic
	}
	result, err := s.app.Workspace.Init(r.Context(), workspace.InitRequest{
		TenantID:          req.TenantID,
		ProjectSlug:       req.ProjectSlug,
		ProjectVisibility: visibility,
		Class:             domain.WorkspaceClassDashboard,
		RequestedAlias:    req.Alias,
		HumanName:         req.HumanName,
		Role:              req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"project_id":   result.Project.ID,
		"workspace_id": result.Workspace.ID,
		"alias":        result.Workspace.Alias,
		"api_key":      result.PlaintextKey,
	})
}
