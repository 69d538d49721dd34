package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const escalationCols = `id, project_id, workspace_id, subject, situation, options, status,
	response, response_note, created_at, expires_at, responded_at`

func scanEscalation(row pgx.Row) (*domain.Escalation, error) {
	var e domain.Escalation
	if err := row.Scan(&e.ID, &e.ProjectID, &e.WorkspaceID, &e.Subject, &e.Situation, &e.Options, &e.Status,
		&e.Response, &e.ResponseNote, &e.CreatedAt, &e.ExpiresAt, &e.RespondedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEscalation opens a pending escalation that expires ttl from now
// (spec.md §4.C12). ttl is used as given; the escalation engine substitutes
// its configured default expiry before calling here when none is requested.
func (s *Store) CreateEscalation(ctx context.Context, e *domain.Escalation, ttl time.Duration) (*domain.Escalation, error) {
	row := s.Pool.QueryRow(ctx, `INSERT INTO domain_escalations
		(project_id, workspace_id, subject, situation, options, expires_at)
		VALUES ($1,$2,$3,$4,$5, now() + $6::interval) RETURNING `+escalationCols,
		e.ProjectID, e.WorkspaceID, e.Subject, e.Situation, e.Options, ttl.String())
	out, err := scanEscalation(row)
	if err != nil {
		return nil, apperr.Internalf(err, "create escalation")
	}
	return out, nil
}

func (s *Store) GetEscalation(ctx context.Context, projectID, id string) (*domain.Escalation, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+escalationCols+` FROM domain_escalations WHERE project_id = $1 AND id = $2`, projectID, id)
	e, err := scanEscalation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("escalation not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get escalation")
	}
	return e, nil
}

func (s *Store) ListEscalations(ctx context.Context, projectID, status string, limit int) ([]domain.Escalation, error) {
	q := `SELECT ` + escalationCols + ` FROM domain_escalations WHERE project_id = $1`
	args := []any{projectID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limitOrDefault(limit))
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internalf(err, "list escalations")
	}
	defer rows.Close()
	var out []domain.Escalation
	for rows.Next() {
		e, err := scanEscalation(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan escalation")
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// RespondEscalation is idempotent: once status is no longer 'pending' the
// update matches zero rows and the escalation is re-read with GetEscalation
// and returned unchanged as the answer, per spec.md §4.C12 edge case.
func (s *Store) RespondEscalation(ctx context.Context, projectID, id, response, note string) (*domain.Escalation, error) {
	row := s.Pool.QueryRow(ctx, `UPDATE domain_escalations
		SET status = 'responded', response = $3, response_note = $4, responded_at = now()
		WHERE project_id = $1 AND id = $2 AND status = 'pending'
		RETURNING `+escalationCols, projectID, id, response, note)
	e, err := scanEscalation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.GetEscalation(ctx, projectID, id)
	}
	if err != nil {
		return nil, apperr.Internalf(err, "respond escalation")
	}
	return e, nil
}

// ExpirePastDue flips any still-pending escalation whose expires_at has
// passed to 'expired'; called opportunistically by the escalation engine.
func (s *Store) ExpirePastDue(ctx context.Context, projectID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE domain_escalations SET status = 'expired'
		WHERE project_id = $1 AND status = 'pending' AND expires_at <= now()`, projectID)
	if err != nil {
		return apperr.Internalf(err, "expire past-due escalations")
	}
	return nil
}
