// Package reservation implements advisory file locking (spec.md §4.C6):
// acquire, renew, release, check, and list, all backed by the ephemeral
// store's TTL keys — reservations are never durably persisted, so a Redis
// flush simply releases everything outstanding.
package reservation

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
)

type Engine struct {
	ephemeral *ephemeral.Store
	ttl       time.Duration
}

func New(eph *ephemeral.Store, ttl time.Duration) *Engine {
	return &Engine{ephemeral: eph, ttl: ttl}
}

type AcquireRequest struct {
	ProjectID   string
	Repo        string
	Path        string
	WorkspaceID string
	Alias       string
	Reason      string
}

// Acquire sets the path lock if free. On conflict it reports the current
// holder so the caller can decide whether to wait or pick another path.
func (e *Engine) Acquire(ctx context.Context, req AcquireRequest) (bool, string, error) {
	ok, owner, err := e.ephemeral.AcquireReservation(ctx, req.ProjectID, req.Repo, req.Path, req.WorkspaceID, e.ttl)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, owner, nil
	}
	_ = e.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventReservationAcquired,
		Project:   req.ProjectID,
		Workspace: req.WorkspaceID,
		Repo:      req.Repo,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"path": req.Path, "alias": req.Alias, "reason": req.Reason},
	})
	return true, req.WorkspaceID, nil
}

// Renew extends an existing reservation's TTL, only when workspaceID is
// still the holder (spec.md §4.C6: "renewed by subsequent edits").
func (e *Engine) Renew(ctx context.Context, projectID, repo, path, workspaceID string) (bool, error) {
	ok, err := e.ephemeral.RenewReservation(ctx, projectID, repo, path, workspaceID, e.ttl)
	if err != nil {
		return false, err
	}
	if ok {
		_ = e.ephemeral.Publish(ctx, domain.Event{
			Type:      domain.EventReservationRenewed,
			Project:   projectID,
			Workspace: workspaceID,
			Repo:      repo,
			Timestamp: time.Now().UTC(),
			Fields:    map[string]any{"path": path},
		})
	}
	return ok, nil
}

func (e *Engine) Release(ctx context.Context, projectID, repo, path, workspaceID string) (bool, error) {
	ok, err := e.ephemeral.ReleaseReservation(ctx, projectID, repo, path, workspaceID)
	if err != nil {
		return false, err
	}
	if ok {
		_ = e.ephemeral.Publish(ctx, domain.Event{
			Type:      domain.EventReservationReleased,
			Project:   projectID,
			Workspace: workspaceID,
			Repo:      repo,
			Timestamp: time.Now().UTC(),
			Fields:    map[string]any{"path": path},
		})
	}
	return ok, nil
}

// Check reports the current holder of a path, or "" if free.
func (e *Engine) Check(ctx context.Context, projectID, repo, path string) (string, error) {
	return e.ephemeral.ReservationOwner(ctx, projectID, repo, path)
}

func (e *Engine) List(ctx context.Context, projectID, repo string) (map[string]string, error) {
	return e.ephemeral.ListReservations(ctx, projectID, repo)
}
