// Package workspace implements the workspace registry component of
// spec.md §4.C4: the /v1/init bootstrap, updates to the mutable field
// subset, soft-delete/restore, and deterministic alias suggestion.
package workspace

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/store"
)

var aliasPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,39}$`)

type Registry struct {
	store *store.Store
}

func New(st *store.Store) *Registry {
	return &Registry{store: st}
}

type InitRequest struct {
	TenantID          string
	ProjectSlug       string
	ProjectVisibility domain.Visibility
	CanonicalOrigin   string // empty for dashboard class
	Class             domain.WorkspaceClass
	RequestedAlias    string
	HumanName         string
	Role              string
}

type InitResult struct {
	Project      *domain.Project
	Repo         *domain.Repo
	Workspace    *domain.Workspace
	PlaintextKey string
}

// Init performs the atomic bootstrap described in spec.md §4.C4: ensure
// project, ensure repo (agent class only), create the agent identity and
// one plaintext API key, and create the workspace row — all in one
// transaction, retrying the alias deterministically on collision.
func (r *Registry) Init(ctx context.Context, req InitRequest) (*InitResult, error) {
	if req.Class == domain.WorkspaceClassAgent && req.CanonicalOrigin == "" {
		return nil, apperr.ValidationError("agent class workspaces require a repo origin")
	}
	if req.RequestedAlias != "" && !aliasPattern.MatchString(req.RequestedAlias) {
		return nil, apperr.ValidationError("alias %q does not match ^[a-z][a-z0-9-]{0,39}$", req.RequestedAlias)
	}

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin init tx")
	}
	defer tx.Rollback(ctx)

	project, err := r.store.EnsureProject(ctx, tx, req.TenantID, req.ProjectSlug, req.ProjectVisibility)
	if err != nil {
		return nil, err
	}

	var repo *domain.Repo
	var repoID *string
	if req.Class == domain.WorkspaceClassAgent {
		repo, err = r.store.EnsureRepo(ctx, tx, project.ID, req.CanonicalOrigin)
		if err != nil {
			return nil, err
		}
		repoID = &repo.ID
	}

	agentID := uuid.NewString()
	if err := r.store.CreateAgent(ctx, tx, agentID, project.ID); err != nil {
		return nil, err
	}

	plaintextKey, err := generateKeySecret()
	if err != nil {
		return nil, apperr.Internalf(err, "generate api key secret")
	}
	if _, err := r.store.CreateApiKey(ctx, tx, project.ID, &agentID, auth.HashSecret(plaintextKey)); err != nil {
		return nil, err
	}

	alias, err := r.resolveAlias(ctx, tx, project.ID, req.RequestedAlias)
	if err != nil {
		return nil, err
	}

	ws := &domain.Workspace{
		ID:        agentID,
		ProjectID: project.ID,
		RepoID:    repoID,
		Class:     req.Class,
		Alias:     alias,
		HumanName: req.HumanName,
		Role:      req.Role,
	}
	created, err := r.store.CreateWorkspace(ctx, tx, ws)
	if err != nil {
		return nil, err
	}

	if err := r.store.InsertAudit(ctx, tx, project.ID, created.ID, "workspace.registered", nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internalf(err, "commit init tx")
	}

	return &InitResult{Project: project, Repo: repo, Workspace: created, PlaintextKey: plaintextKey}, nil
}

// resolveAlias tries the requested alias, then deterministic suffixed
// retries (alias-2, alias-3, ...) until one is free, per spec.md §4.C4.
func (r *Registry) resolveAlias(ctx context.Context, tx pgx.Tx, projectID, requested string) (string, error) {
	base := requested
	if base == "" {
		base = "agent"
	}
	candidate := base
	for n := 2; n <= 1000; n++ {
		taken, err := r.store.AliasTaken(ctx, tx, projectID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", apperr.Conflictf("no free alias found starting from %q", base)
}

func generateKeySecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "aw_sk_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

func (r *Registry) Get(ctx context.Context, projectID, workspaceID string) (*domain.Workspace, error) {
	return r.store.GetWorkspace(ctx, projectID, workspaceID)
}

func (r *Registry) List(ctx context.Context, projectID string, includeDeleted bool) ([]domain.Workspace, error) {
	return r.store.ListWorkspaces(ctx, projectID, includeDeleted)
}

// Update patches the mutable field subset; alias/project/repo/class are
// immutable and never accepted here (spec.md §4.C4).
func (r *Registry) Update(ctx context.Context, projectID, workspaceID string, patch store.WorkspacePatch) (*domain.Workspace, error) {
	return r.store.UpdateWorkspace(ctx, projectID, workspaceID, patch)
}

func (r *Registry) SoftDelete(ctx context.Context, projectID, workspaceID string) error {
	return r.store.SoftDeleteWorkspace(ctx, projectID, workspaceID)
}

// Restore clears deleted_at, preserving the original bindings untouched.
func (r *Registry) Restore(ctx context.Context, projectID, workspaceID string) (*domain.Workspace, error) {
	return r.store.RestoreWorkspace(ctx, projectID, workspaceID)
}
