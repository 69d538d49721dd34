package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const workspaceCols = `id, project_id, repo_id, class, alias, human_name, member_email, role, branch,
	focus, host, path, timezone, created_at, updated_at, last_seen_at, deleted_at`

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	if err := row.Scan(&w.ID, &w.ProjectID, &w.RepoID, &w.Class, &w.Alias, &w.HumanName, &w.MemberEmail,
		&w.Role, &w.Branch, &w.Focus, &w.Host, &w.Path, &w.Timezone, &w.CreatedAt, &w.UpdatedAt,
		&w.LastSeenAt, &w.DeletedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateWorkspace(ctx context.Context, tx pgx.Tx, w *domain.Workspace) (*domain.Workspace, error) {
	row := tx.QueryRow(ctx, `INSERT INTO domain_workspaces
		(id, project_id, repo_id, class, alias, human_name, member_email, role, branch, focus, host, path, timezone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+workspaceCols,
		w.ID, w.ProjectID, w.RepoID, w.Class, w.Alias, w.HumanName, w.MemberEmail, w.Role, w.Branch, w.Focus, w.Host, w.Path, w.Timezone)
	out, err := scanWorkspace(row)
	if err != nil {
		return nil, apperr.Internalf(err, "create workspace")
	}
	return out, nil
}

// AliasTaken reports whether alias is in use by an active workspace in the
// project, used for deterministic alias-suggestion retries (spec.md §4.C4).
func (s *Store) AliasTaken(ctx context.Context, tx pgx.Tx, projectID, alias string) (bool, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT count(*) FROM domain_workspaces WHERE project_id = $1 AND alias = $2 AND deleted_at IS NULL`, projectID, alias).Scan(&n)
	if err != nil {
		return false, apperr.Internalf(err, "check alias")
	}
	return n > 0, nil
}

func (s *Store) GetWorkspace(ctx context.Context, projectID, id string) (*domain.Workspace, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+workspaceCols+` FROM domain_workspaces WHERE project_id = $1 AND id = $2`, projectID, id)
	w, err := scanWorkspace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("workspace not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get workspace")
	}
	return w, nil
}

func (s *Store) ListWorkspaces(ctx context.Context, projectID string, includeDeleted bool) ([]domain.Workspace, error) {
	q := `SELECT ` + workspaceCols + ` FROM domain_workspaces WHERE project_id = $1`
	if !includeDeleted {
		q += ` AND deleted_at IS NULL`
	}
	q += ` ORDER BY created_at`
	rows, err := s.Pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, apperr.Internalf(err, "list workspaces")
	}
	defer rows.Close()
	var out []domain.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan workspace")
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// WorkspacePatch is the mutable subset of a workspace that UpdateWorkspace
// may change (spec.md §4.C4): human name, role, branch, focus, host, path,
// timezone and member email; nil fields are left as they are. last_seen_at
// is set separately by TouchLastSeen. Alias/project/repo/class are never
// touched here.
type WorkspacePatch struct {
	HumanName   *string
	Role        *string
	Branch      *string
	Focus       *string
	Host        *string
	Path        *string
	Timezone    *string
	MemberEmail *string
}

func (s *Store) UpdateWorkspace(ctx context.Context, projectID, id string, patch WorkspacePatch) (*domain.Workspace, error) {
	row := s.Pool.QueryRow(ctx, `UPDATE domain_workspaces SET
		human_name   = COALESCE($3, human_name),
		role         = COALESCE($4, role),
		branch       = COALESCE($5, branch),
		focus        = COALESCE($6, focus),
		host         = COALESCE($7, host),
		path         = COALESCE($8, path),
		timezone     = COALESCE($9, timezone),
		member_email = COALESCE($10, member_email),
		updated_at   = now()
		WHERE project_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+workspaceCols,
		projectID, id, patch.HumanName, patch.Role, patch.Branch, patch.Focus, patch.Host, patch.Path, patch.Timezone, patch.MemberEmail)
	w, err := scanWorkspace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("workspace not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "update workspace")
	}
	return w, nil
}

var systemWorkspaceNamespace = uuid.MustParse("6f0a6b4e-6e3e-4a6d-9f4b-2a6f5f4b8a11")

// EnsureSystemWorkspace returns the id of a project's singleton "system"
// dashboard workspace, creating it on first use. The dispatcher sends
// rendered notifications from this identity rather than from any agent, so
// notification mail always has a sender workspace that is not one of the
// recipients' peers.
func (s *Store) EnsureSystemWorkspace(ctx context.Context, projectID string) (string, error) {
	id := uuid.NewSHA1(systemWorkspaceNamespace, []byte(projectID)).String()
	_, err := s.Pool.Exec(ctx, `INSERT INTO domain_workspaces (id, project_id, class, alias, human_name)
		VALUES ($1, $2, 'dashboard', 'system', 'BeadHub')
		ON CONFLICT (id) DO NOTHING`, id, projectID)
	if err != nil {
		return "", apperr.Internalf(err, "ensure system workspace")
	}
	return id, nil
}

func (s *Store) TouchLastSeen(ctx context.Context, projectID, id string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE domain_workspaces SET last_seen_at = now() WHERE project_id = $1 AND id = $2 AND deleted_at IS NULL`, projectID, id)
	if err != nil {
		return apperr.Internalf(err, "touch last seen")
	}
	return nil
}

func (s *Store) SoftDeleteWorkspace(ctx context.Context, projectID, id string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE domain_workspaces SET deleted_at = now() WHERE project_id = $1 AND id = $2 AND deleted_at IS NULL`, projectID, id)
	if err != nil {
		return apperr.Internalf(err, "delete workspace")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("workspace not found")
	}
	return nil
}

// RestoreWorkspace clears deleted_at, preserving the original immutable
// bindings (project, repo, alias, class never change per spec.md §4.C4).
func (s *Store) RestoreWorkspace(ctx context.Context, projectID, id string) (*domain.Workspace, error) {
	row := s.Pool.QueryRow(ctx, `UPDATE domain_workspaces SET deleted_at = NULL, updated_at = now()
		WHERE project_id = $1 AND id = $2 AND deleted_at IS NOT NULL
		RETURNING `+workspaceCols, projectID, id)
	w, err := scanWorkspace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("soft-deleted workspace not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "restore workspace")
	}
	return w, nil
}
