// Package policy implements the versioned per-project policy bundle of
// spec.md §4.C11: optimistic-concurrency creation, activation, history,
// and reset-to-defaults from the embedded default bundle.
package policy

import (
	"context"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/store"
)

type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

func (e *Engine) GetActive(ctx context.Context, projectID string) (*domain.Policy, error) {
	project, err := e.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ActivePolicyID == nil {
		return nil, apperr.NotFoundf("project %q has no active policy", projectID)
	}
	return e.store.GetPolicyByID(ctx, *project.ActivePolicyID)
}

func (e *Engine) GetByID(ctx context.Context, policyID string) (*domain.Policy, error) {
	return e.store.GetPolicyByID(ctx, policyID)
}

func (e *Engine) ListHistory(ctx context.Context, projectID string, limit int) ([]domain.Policy, error) {
	return e.store.ListPolicyHistory(ctx, projectID, limit)
}

type CreateResult struct {
	Policy  *domain.Policy
	Created bool
}

// Create allocates the next version under a project-row lock, failing
// with conflict if basePolicyID is stale, and returning created=false with
// the existing latest version when the new bundle is byte-identical
// (spec.md §4.C11's idempotent-create rule).
func (e *Engine) Create(ctx context.Context, projectID string, bundle []byte, basePolicyID string) (*CreateResult, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin policy create tx")
	}
	defer tx.Rollback(ctx)

	project, err := e.store.LockProjectForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if basePolicyID != "" {
		if project.ActivePolicyID == nil || *project.ActivePolicyID != basePolicyID {
			return nil, apperr.Conflictf("base_policy_id %q does not match the project's active policy", basePolicyID)
		}
	}

	latest, err := e.store.GetLatestPolicy(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if latest != nil && store.BundlesEqual(latest.Bundle, bundle) {
		if err := tx.Commit(ctx); err != nil {
			return nil, apperr.Internalf(err, "commit policy no-op create")
		}
		return &CreateResult{Policy: latest, Created: false}, nil
	}

	created, err := e.store.InsertPolicy(ctx, tx, projectID, bundle)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internalf(err, "commit policy create tx")
	}
	return &CreateResult{Policy: created, Created: true}, nil
}

// Activate points the project's active-policy pointer at policyID, which
// must belong to the same project.
func (e *Engine) Activate(ctx context.Context, projectID, policyID string) error {
	p, err := e.store.GetPolicyByID(ctx, policyID)
	if err != nil {
		return err
	}
	if p.ProjectID != projectID {
		return apperr.ValidationError("policy %q does not belong to project %q", policyID, projectID)
	}
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return apperr.Internalf(err, "begin activate tx")
	}
	defer tx.Rollback(ctx)
	if err := e.store.SetActivePolicy(ctx, tx, projectID, policyID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internalf(err, "commit activate tx")
	}
	return nil
}

// ResetToDefaults deep-copies the embedded default bundle through the
// normal create path, then activates the resulting version.
func (e *Engine) ResetToDefaults(ctx context.Context, projectID string) (*domain.Policy, error) {
	bundle := make([]byte, len(DefaultBundle()))
	copy(bundle, DefaultBundle())

	result, err := e.Create(ctx, projectID, bundle, "")
	if err != nil {
		return nil, err
	}
	if err := e.Activate(ctx, projectID, result.Policy.ID); err != nil {
		return nil, err
	}
	return result.Policy, nil
}
