package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/store"
	"github.com/beadhub/beadhub/internal/sync"
)

func (s *Server) handleBeadsList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	q := r.URL.Query()
	opts := store.ListBeadsOpts{
		Status:      q.Get("status"),
		Search:      q.Get("q"),
		Limit:       parseLimit(r),
		AfterBeadID: q.Get("after"),
	}
	beads, err := s.app.Store.ListBeads(r.Context(), id.ProjectID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": beads})
}

func (s *Server) handleBeadGet(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	bead, err := s.app.Store.GetBead(r.Context(), id.ProjectID, chi.URLParam(r, "bead_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bead)
}

// handleBeadsReady reports, per bead, whether every transitive blocker is
// resolved (spec.md §9's ready query, cycle-safe per SPEC_FULL.md).
func (s *Server) handleBeadsReady(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	ready, err := sync.Ready(r.Context(), s.app.Store, id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ids := make([]string, 0, len(ready))
	for beadID, isReady := range ready {
		if isReady {
			ids = append(ids, beadID)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": ids})
}
