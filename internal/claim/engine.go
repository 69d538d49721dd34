// Package claim implements bead claim/release/check (spec.md §4.C5): a
// default single-claimant policy with an explicit jump-in escape hatch,
// and a structured conflict payload naming the existing claimants.
package claim

import (
	"context"
	"time"

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

type ClaimRequest struct {
	ProjectID   string
	BeadID      string
	WorkspaceID string
	Alias       string
	HumanName   string
	Apex        string
	JumpIn      bool
}

// ConflictError carries the existing claimants so the caller can surface
// "blocked by X" (spec.md §4.C5).
type ConflictError struct {
	Claimants []domain.Claim
}

func (e *ConflictError) Error() string { return "bead already claimed" }

// Claim succeeds when no other workspace currently claims the bead, or
// when JumpIn is set (existing claimants retained, a second row inserted).
func (e *Engine) Claim(ctx context.Context, req ClaimRequest) (*domain.Claim, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin claim tx")
	}
	defer tx.Rollback(ctx)

	existing, err := e.store.ListClaimants(ctx, tx, req.ProjectID, req.BeadID)
	if err != nil {
		return nil, err
	}
	othersHoldIt := false
	for _, c := range existing {
		if c.WorkspaceID != req.WorkspaceID {
			othersHoldIt = true
			break
		}
	}
	if othersHoldIt && !req.JumpIn {
		return nil, apperr.Conflictf("bead %q already claimed", req.BeadID).WithFields(map[string]any{
			"claimants": claimantSummaries(existing),
		})
	}

	c := &domain.Claim{
		ProjectID:   req.ProjectID,
		BeadID:      req.BeadID,
		WorkspaceID: req.WorkspaceID,
		Alias:       req.Alias,
		HumanName:   req.HumanName,
		Apex:        req.Apex,
	}
	if _, err := e.store.InsertClaim(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := e.store.InsertAudit(ctx, tx, req.ProjectID, req.WorkspaceID, "bead.claimed", nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internalf(err, "commit claim tx")
	}

	_ = e.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventBeadClaimed,
		Project:   req.ProjectID,
		Workspace: req.WorkspaceID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"bead_id": req.BeadID, "alias": req.Alias},
	})

	return c, nil
}

func (e *Engine) Release(ctx context.Context, projectID, beadID, workspaceID string) error {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return apperr.Internalf(err, "begin release tx")
	}
	defer tx.Rollback(ctx)

	if err := e.store.DeleteClaim(ctx, tx, projectID, beadID, workspaceID); err != nil {
		return err
	}
	if err := e.store.InsertAudit(ctx, tx, projectID, workspaceID, "bead.unclaimed", nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internalf(err, "commit release tx")
	}

	_ = e.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventBeadUnclaimed,
		Project:   projectID,
		Workspace: workspaceID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"bead_id": beadID},
	})
	return nil
}

// Check is the preflight: report whether acquiring the bead would conflict,
// without mutating anything.
func (e *Engine) Check(ctx context.Context, projectID, beadID, workspaceID string) (*ConflictError, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin check tx")
	}
	defer tx.Rollback(ctx)

	existing, err := e.store.ListClaimants(ctx, tx, projectID, beadID)
	if err != nil {
		return nil, err
	}
	var conflicting []domain.Claim
	for _, c := range existing {
		if c.WorkspaceID != workspaceID {
			conflicting = append(conflicting, c)
		}
	}
	if len(conflicting) == 0 {
		return nil, nil
	}
	return &ConflictError{Claimants: conflicting}, nil
}

func claimantSummaries(claims []domain.Claim) []map[string]string {
	out := make([]map[string]string, 0, len(claims))
	for _, c := range claims {
		out = append(out, map[string]string{"workspace_id": c.WorkspaceID, "alias": c.Alias, "human_name": c.HumanName})
	}
	return out
}
