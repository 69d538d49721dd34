package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
)

type repoCreateRequest struct {
	CanonicalOrigin string `json:"canonical_origin"`
}

func (s *Server) handleRepoList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	repos, err := s.app.Store.ListRepos(r.Context(), id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

func (s *Server) handleRepoCreate(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	var req repoCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CanonicalOrigin == "" {
		writeError(w, r, apperr.ValidationError("canonical_origin is required"))
		return
	}

	tx, err := s.app.Store.BeginTx(r.Context())
	if err != nil {
		writeError(w, r, apperr.Internalf(err, "begin repo create tx"))
		return
	}
	defer tx.Rollback(r.Context())

	repo, err := s.app.Store.EnsureRepo(r.Context(), tx, id.ProjectID, req.CanonicalOrigin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		writeError(w, r, apperr.Internalf(err, "commit repo create tx"))
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}

// handleRepoDelete refuses to remove a repo still bound to an active
// workspace (SPEC_FULL.md "Repo management surface"): a repo binding is
// otherwise permanent, so deletion is only safe once nothing references it.
func (s *Server) handleRepoDelete(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	repoID := chi.URLParam(r, "id")

	repo, err := s.app.Store.GetRepo(r.Context(), repoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if repo.ProjectID != id.ProjectID {
		writeError(w, r, apperr.NotFoundf("repo not found"))
		return
	}
	n, err := s.app.Store.CountActiveWorkspacesForRepo(r.Context(), repoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n > 0 {
		writeError(w, r, apperr.Conflictf("repo still has %d active workspace(s)", n))
		return
	}
	if err := s.app.Store.SoftDeleteRepo(r.Context(), repoID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
