package httpapi

import (
	"net/http"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/sync"
)

type beadRefWire struct {
	Repo   string `json:"repo,omitempty"`
	Branch string `json:"branch,omitempty"`
	BeadID string `json:"bead_id"`
}

func (b beadRefWire) toDomain() domain.BeadRef {
	return domain.BeadRef{Repo: b.Repo, Branch: b.Branch, BeadID: b.BeadID}
}

type issueWire struct {
	BeadID    string        `json:"bead_id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Status    string        `json:"status"`
	Priority  int           `json:"priority"`
	Assignee  string        `json:"assignee"`
	Creator   string        `json:"creator"`
	Labels    []string      `json:"labels"`
	Parent    *beadRefWire  `json:"parent,omitempty"`
	BlockedBy []beadRefWire `json:"blocked_by,omitempty"`
}

type claimSnapshotWire struct {
	BeadID    string `json:"bead_id"`
	Alias     string `json:"alias"`
	HumanName string `json:"human_name"`
	Apex      string `json:"apex"`
}

type syncRequest struct {
	Repo           string              `json:"repo"`
	Issues         []issueWire         `json:"issues"`
	DeletedIDs     []string            `json:"deleted_ids"`
	ClaimsSnapshot []claimSnapshotWire `json:"claims_snapshot"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	wsID, err := callerWorkspaceID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	issues := make([]sync.IssueRecord, 0, len(req.Issues))
	for _, iw := range req.Issues {
		rec := sync.IssueRecord{
			BeadID:   iw.BeadID,
			Title:    iw.Title,
			Body:     iw.Body,
			Status:   iw.Status,
			Priority: iw.Priority,
			Assignee: iw.Assignee,
			Creator:  iw.Creator,
			Labels:   iw.Labels,
		}
		if iw.Parent != nil {
			ref := iw.Parent.toDomain()
			rec.Parent = &ref
		}
		for _, b := range iw.BlockedBy {
			rec.BlockedBy = append(rec.BlockedBy, b.toDomain())
		}
		issues = append(issues, rec)
	}

	claims := make([]sync.ClaimSnapshotEntry, 0, len(req.ClaimsSnapshot))
	for _, c := range req.ClaimsSnapshot {
		claims = append(claims, sync.ClaimSnapshotEntry{
			BeadID: c.BeadID, Alias: c.Alias, HumanName: c.HumanName, Apex: c.Apex,
		})
	}

	result, err := s.app.Sync.Run(r.Context(), sync.Request{
		ProjectID:      id.ProjectID,
		WorkspaceID:    wsID,
		Repo:           req.Repo,
		Issues:         issues,
		DeletedIDs:     req.DeletedIDs,
		ClaimsSnapshot: claims,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSyncCheck lets a client validate a sync payload without applying
// it — it reruns the same per-issue field validation as a real sync
// (spec.md §4.C7).
func (s *Server) handleSyncCheck(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	for _, iw := range req.Issues {
		if len(iw.BeadID) == 0 || len(iw.BeadID) > 64 {
			writeError(w, r, apperr.ValidationError("bead_id must be 1-64 characters"))
			return
		}
		for _, b := range iw.BlockedBy {
			if b.BeadID == "" {
				writeError(w, r, apperr.ValidationError("blocked_by entry missing bead_id"))
				return
			}
		}
		if iw.Parent != nil && iw.Parent.BeadID == "" {
			writeError(w, r, apperr.ValidationError("parent reference missing bead_id"))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "issue_count": len(req.Issues)})
}
