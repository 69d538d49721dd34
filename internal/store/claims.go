package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const claimCols = `project_id, bead_id, workspace_id, alias, human_name, apex, claimed_at`

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	if err := row.Scan(&c.ProjectID, &c.BeadID, &c.WorkspaceID, &c.Alias, &c.HumanName, &c.Apex, &c.ClaimedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListClaimants(ctx context.Context, tx pgx.Tx, projectID, beadID string) ([]domain.Claim, error) {
	rows, err := tx.Query(ctx, `SELECT `+claimCols+` FROM domain_claims WHERE project_id = $1 AND bead_id = $2 ORDER BY claimed_at`, projectID, beadID)
	if err != nil {
		return nil, apperr.Internalf(err, "list claimants")
	}
	defer rows.Close()
	var out []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan claim")
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// InsertClaim uses INSERT ... ON CONFLICT DO NOTHING and reads the outcome
// from the affected-row count, per spec.md §5's locking discipline for claim
// acquire. Returns false if the
// (project,bead,workspace) row already existed (idempotent reacquire).
func (s *Store) InsertClaim(ctx context.Context, tx pgx.Tx, c *domain.Claim) (bool, error) {
	tag, err := tx.Exec(ctx, `INSERT INTO domain_claims (project_id, bead_id, workspace_id, alias, human_name, apex)
		VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (project_id, bead_id, workspace_id) DO NOTHING`,
		c.ProjectID, c.BeadID, c.WorkspaceID, c.Alias, c.HumanName, c.Apex)
	if err != nil {
		return false, apperr.Internalf(err, "insert claim")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteClaim(ctx context.Context, tx pgx.Tx, projectID, beadID, workspaceID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM domain_claims WHERE project_id = $1 AND bead_id = $2 AND workspace_id = $3`, projectID, beadID, workspaceID)
	if err != nil {
		return apperr.Internalf(err, "delete claim")
	}
	return nil
}

// DeleteClaimsForWorkspaceExcept reconciles a sync's claims_snapshot: removes
// every claim the workspace holds that is not in keepBeadIDs (spec.md §4.C7
// step 4).
func (s *Store) DeleteClaimsForWorkspaceExcept(ctx context.Context, tx pgx.Tx, projectID, workspaceID string, keepBeadIDs []string) error {
	if keepBeadIDs == nil {
		keepBeadIDs = []string{}
	}
	_, err := tx.Exec(ctx, `DELETE FROM domain_claims WHERE project_id = $1 AND workspace_id = $2 AND NOT (bead_id = ANY($3))`,
		projectID, workspaceID, keepBeadIDs)
	if err != nil {
		return apperr.Internalf(err, "reconcile claims")
	}
	return nil
}

func (s *Store) ListClaims(ctx context.Context, projectID string) ([]domain.Claim, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+claimCols+` FROM domain_claims WHERE project_id = $1 ORDER BY bead_id, claimed_at`, projectID)
	if err != nil {
		return nil, apperr.Internalf(err, "list claims")
	}
	defer rows.Close()
	var out []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan claim")
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ConflictedBeads returns bead ids with two or more active claimants
// (spec.md §4.C5 "Conflict").
func (s *Store) ConflictedBeads(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT bead_id FROM domain_claims WHERE project_id = $1 GROUP BY bead_id HAVING count(*) > 1`, projectID)
	if err != nil {
		return nil, apperr.Internalf(err, "list conflicted beads")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internalf(err, "scan conflicted bead")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
