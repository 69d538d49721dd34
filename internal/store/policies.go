package store

import (
	"bytes"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const policyCols = `id, project_id, version, bundle, created_at`

func scanPolicy(row pgx.Row) (*domain.Policy, error) {
	var p domain.Policy
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Version, &p.Bundle, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPolicyByID(ctx context.Context, id string) (*domain.Policy, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+policyCols+` FROM domain_policies WHERE id = $1`, id)
	p, err := scanPolicy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("policy not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get policy")
	}
	return p, nil
}

func (s *Store) GetLatestPolicy(ctx context.Context, tx pgx.Tx, projectID string) (*domain.Policy, error) {
	row := tx.QueryRow(ctx, `SELECT `+policyCols+` FROM domain_policies WHERE project_id = $1 ORDER BY version DESC LIMIT 1`, projectID)
	p, err := scanPolicy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get latest policy")
	}
	return p, nil
}

func (s *Store) ListPolicyHistory(ctx context.Context, projectID string, limit int) ([]domain.Policy, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+policyCols+` FROM domain_policies WHERE project_id = $1 ORDER BY version DESC LIMIT $2`,
		projectID, limitOrDefault(limit))
	if err != nil {
		return nil, apperr.Internalf(err, "list policy history")
	}
	defer rows.Close()
	var out []domain.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan policy")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// InsertPolicy allocates the next version for projectID as
// max(version)+1, to be called while the project row is locked FOR UPDATE
// (spec.md §4.C11).
func (s *Store) InsertPolicy(ctx context.Context, tx pgx.Tx, projectID string, bundle []byte) (*domain.Policy, error) {
	var nextVersion int
	err := tx.QueryRow(ctx, `SELECT COALESCE(max(version), 0) + 1 FROM domain_policies WHERE project_id = $1`, projectID).Scan(&nextVersion)
	if err != nil {
		return nil, apperr.Internalf(err, "allocate policy version")
	}
	row := tx.QueryRow(ctx, `INSERT INTO domain_policies (project_id, version, bundle) VALUES ($1,$2,$3) RETURNING `+policyCols,
		projectID, nextVersion, bundle)
	p, err := scanPolicy(row)
	if err != nil {
		return nil, apperr.Internalf(err, "insert policy")
	}
	return p, nil
}

// BundlesEqual compares two JSON bundles byte-for-byte after trimming,
// backing the idempotent-create rule of spec.md §4.C11.
func BundlesEqual(a, b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b))
}
