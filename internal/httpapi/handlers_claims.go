package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/claim"
)

type claimRequest struct {
	BeadID    string `json:"bead_id"`
	Alias     string `json:"alias"`
	HumanName string `json:"human_name"`
	Apex      string `json:"apex"`
	JumpIn    bool   `json:"jump_in"`
}

func (s *Server) handleClaimsList(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	claims, err := s.app.Store.ListClaims(r.Context(), id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": claims})
}

// handleClaimAcquire is the single-bead counterpart to a sync's
// claims_snapshot reconciliation — spec.md §8's worked example exercises it
// directly as "POST /v1/claims" (spec.md §4.C5 claim()).
func (s *Server) handleClaimAcquire(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.BeadID == "" {
		writeError(w, r, apperr.ValidationError("bead_id is required"))
		return
	}

	c, err := s.app.Claim.Claim(r.Context(), claim.ClaimRequest{
		ProjectID:   id.ProjectID,
		BeadID:      req.BeadID,
		WorkspaceID: wsID,
		Alias:       req.Alias,
		HumanName:   req.HumanName,
		Apex:        req.Apex,
		JumpIn:      req.JumpIn,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleClaimRelease(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.app.Claim.Release(r.Context(), id.ProjectID, chi.URLParam(r, "bead_id"), wsID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type claimCheckItem struct {
	BeadID string `json:"bead_id"`
	Repo   string `json:"repo,omitempty"`
	Path   string `json:"path,omitempty"`
}

type claimCheckRequest struct {
	Command string           `json:"command,omitempty"`
	Beads   []claimCheckItem `json:"beads"`
}

type claimCheckResult struct {
	Status string `json:"status"`
	Holder string `json:"holder,omitempty"`
}

// handleClaimCheck is spec.md §4.C5's combined check(command, beads[])
// preflight: allow | warn | reject per bead, based on claim ownership
// (reject on conflicting claimant) and reservation overlap on the bead's
// edit path (warn when another workspace currently holds it).
func (s *Server) handleClaimCheck(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req claimCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	results := make(map[string]claimCheckResult, len(req.Beads))
	for _, item := range req.Beads {
		conflict, err := s.app.Claim.Check(r.Context(), id.ProjectID, item.BeadID, wsID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if conflict != nil {
			results[item.BeadID] = claimCheckResult{Status: "reject"}
			continue
		}

		status := "allow"
		holder := ""
		if item.Repo != "" && item.Path != "" {
			owner, err := s.app.Reservation.Check(r.Context(), id.ProjectID, item.Repo, item.Path)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if owner != "" && owner != wsID {
				status = "warn"
				holder = owner
			}
		}
		results[item.BeadID] = claimCheckResult{Status: status, Holder: holder}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
