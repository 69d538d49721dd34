// Package sync implements the client-push issue reconciliation of
// spec.md §4.C7: upsert issue records, apply hard deletes, reconcile a
// workspace's claims snapshot, and fan out status-change notifications
// through the outbox — all inside one transaction per sync call.
package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/store"
)

type Engine struct {
	store     *store.Store
	ephemeral *ephemeral.Store
}

func New(st *store.Store, eph *ephemeral.Store) *Engine {
	return &Engine{store: st, ephemeral: eph}
}

// IssueRecord is one client-pushed issue, pre-validation.
type IssueRecord struct {
	BeadID    string
	Title     string
	Body      string
	Status    string
	Priority  int
	Assignee  string
	Creator   string
	Labels    []string
	Parent    *domain.BeadRef
	BlockedBy []domain.BeadRef
}

type Request struct {
	ProjectID      string
	WorkspaceID    string
	Repo           string
	Issues         []IssueRecord
	DeletedIDs     []string
	ClaimsSnapshot []ClaimSnapshotEntry
}

type ClaimSnapshotEntry struct {
	BeadID    string
	Alias     string
	HumanName string
	Apex      string
}

type Result struct {
	Upserts             int
	Deletes             int
	StatusChanges       int
	NotificationsQueued int
}

// Run executes one sync: upsert → deletes → claims reconcile → status-change
// fanout, all in a single transaction, then publishes sync.completed after
// the commit.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin sync tx")
	}
	defer tx.Rollback(ctx)

	result := &Result{}
	type statusChange struct {
		beadID, oldStatus, newStatus string
	}
	var changes []statusChange

	for _, rec := range req.Issues {
		normalizeIssue(&rec)
		prevStatus, existed, err := e.store.GetBeadStatus(ctx, tx, req.ProjectID, rec.BeadID)
		if err != nil {
			return nil, err
		}
		bead := &domain.Bead{
			ProjectID: req.ProjectID,
			BeadID:    rec.BeadID,
			Title:     rec.Title,
			Body:      rec.Body,
			Status:    rec.Status,
			Priority:  rec.Priority,
			Assignee:  rec.Assignee,
			Creator:   rec.Creator,
			Labels:    rec.Labels,
			Parent:    rec.Parent,
			BlockedBy: rec.BlockedBy,
		}
		if err := e.store.UpsertBead(ctx, tx, bead); err != nil {
			return nil, err
		}
		result.Upserts++
		if existed && prevStatus != rec.Status {
			changes = append(changes, statusChange{rec.BeadID, prevStatus, rec.Status})
		}
	}

	deleted, err := e.store.DeleteBeads(ctx, tx, req.ProjectID, req.DeletedIDs)
	if err != nil {
		return nil, err
	}
	result.Deletes = deleted

	keep := make([]string, 0, len(req.ClaimsSnapshot))
	for _, c := range req.ClaimsSnapshot {
		keep = append(keep, c.BeadID)
	}
	if err := e.store.DeleteClaimsForWorkspaceExcept(ctx, tx, req.ProjectID, req.WorkspaceID, keep); err != nil {
		return nil, err
	}
	for _, c := range req.ClaimsSnapshot {
		claim := &domain.Claim{
			ProjectID:   req.ProjectID,
			BeadID:      c.BeadID,
			WorkspaceID: req.WorkspaceID,
			Alias:       c.Alias,
			HumanName:   c.HumanName,
			Apex:        c.Apex,
		}
		if _, err := e.store.InsertClaim(ctx, tx, claim); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	for _, ch := range changes {
		result.StatusChanges++
		subs, err := e.store.SubscribersFor(ctx, tx, req.ProjectID, ch.beadID, req.Repo, domain.EventStatusChange)
		if err != nil {
			return nil, err
		}
		fp := fingerprint(ch.beadID, ch.oldStatus, ch.newStatus, now)
		for _, sub := range subs {
			entry := &domain.OutboxEntry{
				ProjectID:     req.ProjectID,
				RecipientWSID: sub.WorkspaceID,
				EventType:     string(domain.EventBeadStatusChanged),
				Fingerprint:   fp,
				Payload:       statusChangePayload(ch.beadID, ch.oldStatus, ch.newStatus),
			}
			if err := e.store.InsertOutboxEntry(ctx, tx, entry); err != nil {
				return nil, err
			}
			result.NotificationsQueued++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internalf(err, "commit sync tx")
	}

	_ = e.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventSyncCompleted,
		Project:   req.ProjectID,
		Workspace: req.WorkspaceID,
		Repo:      req.Repo,
		Timestamp: now,
		Fields: map[string]any{
			"upserts": result.Upserts, "deletes": result.Deletes,
			"status_changes": result.StatusChanges, "notifications_queued": result.NotificationsQueued,
		},
	})

	return result, nil
}

func validate(req Request) error {
	if req.ProjectID == "" || req.WorkspaceID == "" {
		return apperr.ValidationError("project_id and workspace_id are required")
	}
	for _, rec := range req.Issues {
		if len(rec.BeadID) == 0 || len(rec.BeadID) > 64 {
			return apperr.ValidationError("bead_id must be 1-64 characters")
		}
		for _, b := range rec.BlockedBy {
			if b.BeadID == "" {
				return apperr.ValidationError("blocked_by entry missing bead_id")
			}
		}
		if rec.Parent != nil && rec.Parent.BeadID == "" {
			return apperr.ValidationError("parent reference missing bead_id")
		}
	}
	return nil
}

// normalizeIssue NFC-normalises and trims string fields, matching
// spec.md §4.C7's numeric/string normalisation rule.
func normalizeIssue(rec *IssueRecord) {
	rec.Title = nfcTrim(rec.Title)
	rec.Body = nfcTrim(rec.Body)
	rec.Assignee = nfcTrim(rec.Assignee)
	rec.Creator = nfcTrim(rec.Creator)
	for i, l := range rec.Labels {
		rec.Labels[i] = nfcTrim(l)
	}
}

func nfcTrim(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func fingerprint(beadID, oldStatus, newStatus string, ts time.Time) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", beadID, oldStatus, newStatus, ts.UnixMicro())))
	return hex.EncodeToString(h[:])
}

func statusChangePayload(beadID, oldStatus, newStatus string) []byte {
	return []byte(fmt.Sprintf(`{"bead_id":%q,"old_status":%q,"new_status":%q}`, beadID, oldStatus, newStatus))
}
