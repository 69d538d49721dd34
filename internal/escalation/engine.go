// Package escalation implements the human escalation lifecycle of
// spec.md §4.C12: pending → responded or pending → expired, with an
// idempotent respond operation.
package escalation

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
	"github.com/beadhub/beadhub/internal/store"
)

type Engine struct {
	store         *store.Store
	ephemeral     *ephemeral.Store
	defaultExpiry time.Duration
}

func New(st *store.Store, eph *ephemeral.Store, defaultExpiry time.Duration) *Engine {
	return &Engine{store: st, ephemeral: eph, defaultExpiry: defaultExpiry}
}

type CreateRequest struct {
	ProjectID   string
	WorkspaceID string
	Subject     string
	Situation   string
	Options     []string
	TTL         time.Duration
}

func (e *Engine) Create(ctx context.Context, req CreateRequest) (*domain.Escalation, error) {
	if req.Subject == "" || req.Situation == "" {
		return nil, apperr.ValidationError("subject and situation are required")
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = e.defaultExpiry
	}
	created, err := e.store.CreateEscalation(ctx, &domain.Escalation{
		ProjectID:   req.ProjectID,
		WorkspaceID: req.WorkspaceID,
		Subject:     req.Subject,
		Situation:   req.Situation,
		Options:     req.Options,
	}, ttl)
	if err != nil {
		return nil, err
	}
	_ = e.ephemeral.Publish(ctx, domain.Event{
		Type:      domain.EventEscalationCreated,
		Project:   req.ProjectID,
		Workspace: req.WorkspaceID,
		Timestamp: time.Now().UTC(),
		Fields:    map[string]any{"escalation_id": created.ID, "subject": created.Subject},
	})
	return created, nil
}

func (e *Engine) Get(ctx context.Context, projectID, id string) (*domain.Escalation, error) {
	return e.store.GetEscalation(ctx, projectID, id)
}

func (e *Engine) List(ctx context.Context, projectID, status string, limit int) ([]domain.Escalation, error) {
	if err := e.store.ExpirePastDue(ctx, projectID); err != nil {
		return nil, err
	}
	return e.store.ListEscalations(ctx, projectID, status, limit)
}

// Respond is idempotent at the API boundary: a second call against an
// already-responded escalation simply returns its existing response
// rather than erroring (spec.md §4.C12).
func (e *Engine) Respond(ctx context.Context, projectID, id, response, note string) (*domain.Escalation, error) {
	updated, err := e.store.RespondEscalation(ctx, projectID, id, response, note)
	if err != nil {
		return nil, err
	}
	if updated.Status == domain.EscalationResponded {
		_ = e.ephemeral.Publish(ctx, domain.Event{
			Type:      domain.EventEscalationResponded,
			Project:   projectID,
			Workspace: updated.WorkspaceID,
			Timestamp: time.Now().UTC(),
			Fields:    map[string]any{"escalation_id": id, "response": updated.Response},
		})
	}
	return updated, nil
}
