package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const repoCols = `id, project_id, canonical_origin, created_at, deleted_at`

func scanRepo(row pgx.Row) (*domain.Repo, error) {
	var r domain.Repo
	if err := row.Scan(&r.ID, &r.ProjectID, &r.CanonicalOrigin, &r.CreatedAt, &r.DeletedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// EnsureRepo binds canonical_origin to exactly one project forever; once
// created a repo is never re-bound (spec.md §3).
func (s *Store) EnsureRepo(ctx context.Context, tx pgx.Tx, projectID, canonicalOrigin string) (*domain.Repo, error) {
	row := tx.QueryRow(ctx, `SELECT `+repoCols+` FROM domain_repos WHERE canonical_origin = $1`, canonicalOrigin)
	r, err := scanRepo(row)
	if err == nil {
		if r.ProjectID != projectID {
			return nil, apperr.Conflictf("repo %q is already bound to a different project", canonicalOrigin)
		}
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Internalf(err, "lookup repo")
	}
	row = tx.QueryRow(ctx, `INSERT INTO domain_repos (project_id, canonical_origin)
		VALUES ($1, $2) RETURNING `+repoCols, projectID, canonicalOrigin)
	r, err = scanRepo(row)
	if err != nil {
		return nil, apperr.Internalf(err, "create repo")
	}
	return r, nil
}

func (s *Store) GetRepo(ctx context.Context, id string) (*domain.Repo, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+repoCols+` FROM domain_repos WHERE id = $1`, id)
	r, err := scanRepo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("repo not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get repo")
	}
	return r, nil
}

func (s *Store) ListRepos(ctx context.Context, projectID string) ([]domain.Repo, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+repoCols+` FROM domain_repos WHERE project_id = $1 AND deleted_at IS NULL ORDER BY created_at`, projectID)
	if err != nil {
		return nil, apperr.Internalf(err, "list repos")
	}
	defer rows.Close()
	var out []domain.Repo
	for rows.Next() {
		r, err := scanRepo(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan repo")
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CountActiveWorkspacesForRepo backs the DELETE /v1/repos/{id} guard: a
// repo cannot be removed while any non-deleted workspace still binds to it
// (SPEC_FULL.md "Repo management surface").
func (s *Store) CountActiveWorkspacesForRepo(ctx context.Context, repoID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM domain_workspaces WHERE repo_id = $1 AND deleted_at IS NULL`, repoID).Scan(&n)
	if err != nil {
		return 0, apperr.Internalf(err, "count workspaces for repo")
	}
	return n, nil
}

func (s *Store) SoftDeleteRepo(ctx context.Context, repoID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE domain_repos SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, repoID)
	if err != nil {
		return apperr.Internalf(err, "delete repo")
	}
	return nil
}
