package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const projectCols = `id, tenant_id, slug, visibility, active_policy_id, created_at, updated_at, deleted_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var activePolicyID *string
	if err := row.Scan(&p.ID, &p.TenantID, &p.Slug, &p.Visibility, &activePolicyID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	p.ActivePolicyID = activePolicyID
	return &p, nil
}

func (s *Store) GetProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+projectCols+` FROM domain_projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("project not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get project")
	}
	return p, nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, tenantID, slug string) (*domain.Project, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+projectCols+` FROM domain_projects
		WHERE COALESCE(tenant_id, '') = $1 AND slug = $2 AND deleted_at IS NULL`, tenantID, slug)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("project %q not found", slug)
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get project by slug")
	}
	return p, nil
}

// EnsureProject creates a project by slug if it does not already exist,
// as part of /v1/init's atomic bootstrap (spec.md §4.C4).
func (s *Store) EnsureProject(ctx context.Context, tx pgx.Tx, tenantID, slug string, visibility domain.Visibility) (*domain.Project, error) {
	row := tx.QueryRow(ctx, `SELECT `+projectCols+` FROM domain_projects
		WHERE COALESCE(tenant_id, '') = $1 AND slug = $2 AND deleted_at IS NULL`, tenantID, slug)
	p, err := scanProject(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Internalf(err, "lookup project")
	}

	var tenantArg any
	if tenantID != "" {
		tenantArg = tenantID
	}
	row = tx.QueryRow(ctx, `INSERT INTO domain_projects (tenant_id, slug, visibility)
		VALUES ($1, $2, $3) RETURNING `+projectCols, tenantArg, slug, visibility)
	p, err = scanProject(row)
	if err != nil {
		return nil, apperr.Internalf(err, "create project")
	}
	return p, nil
}

func (s *Store) SetActivePolicy(ctx context.Context, tx pgx.Tx, projectID, policyID string) error {
	_, err := tx.Exec(ctx, `UPDATE domain_projects SET active_policy_id = $1, updated_at = now() WHERE id = $2`, policyID, projectID)
	if err != nil {
		return apperr.Internalf(err, "activate policy")
	}
	return nil
}

// LockProjectForUpdate takes the project row lock that serialises policy
// version allocation (spec.md §4.C11).
func (s *Store) LockProjectForUpdate(ctx context.Context, tx pgx.Tx, projectID string) (*domain.Project, error) {
	row := tx.QueryRow(ctx, `SELECT `+projectCols+` FROM domain_projects WHERE id = $1 FOR UPDATE`, projectID)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("project not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "lock project")
	}
	return p, nil
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.Pool.Begin(ctx)
}
