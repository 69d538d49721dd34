package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const subCols = `id, project_id, workspace_id, bead_id, repo, event_types, created_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	var eventTypes []string
	if err := row.Scan(&sub.ID, &sub.ProjectID, &sub.WorkspaceID, &sub.BeadID, &sub.Repo, &eventTypes, &sub.CreatedAt); err != nil {
		return nil, err
	}
	for _, t := range eventTypes {
		sub.EventTypes = append(sub.EventTypes, domain.SubscriptionEventType(t))
	}
	return &sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	types := make([]string, 0, len(sub.EventTypes))
	for _, t := range sub.EventTypes {
		types = append(types, string(t))
	}
	if len(types) == 0 {
		types = []string{string(domain.EventStatusChange)}
	}
	row := s.Pool.QueryRow(ctx, `INSERT INTO domain_subscriptions (project_id, workspace_id, bead_id, repo, event_types)
		VALUES ($1,$2,$3,$4,$5) RETURNING `+subCols,
		sub.ProjectID, sub.WorkspaceID, sub.BeadID, sub.Repo, types)
	out, err := scanSubscription(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflictf("subscription already exists for this bead")
		}
		return nil, apperr.Internalf(err, "create subscription")
	}
	return out, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, projectID, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM domain_subscriptions WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return apperr.Internalf(err, "delete subscription")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("subscription not found")
	}
	return nil
}

func (s *Store) ListSubscriptions(ctx context.Context, projectID, workspaceID string) ([]domain.Subscription, error) {
	q := `SELECT ` + subCols + ` FROM domain_subscriptions WHERE project_id = $1`
	args := []any{projectID}
	if workspaceID != "" {
		q += ` AND workspace_id = $2`
		args = append(args, workspaceID)
	}
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internalf(err, "list subscriptions")
	}
	defer rows.Close()
	var out []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan subscription")
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

// SubscribersFor returns every subscription matching (project, bead_id) that
// requested eventType, where both repo-specific and repo-agnostic
// subscriptions match (spec.md §4.C7 step 5).
func (s *Store) SubscribersFor(ctx context.Context, tx pgx.Tx, projectID, beadID, repo string, eventType domain.SubscriptionEventType) ([]domain.Subscription, error) {
	rows, err := tx.Query(ctx, `SELECT `+subCols+` FROM domain_subscriptions
		WHERE project_id = $1 AND bead_id = $2 AND (repo = '' OR repo = $3) AND $4 = ANY(event_types)`,
		projectID, beadID, repo, string(eventType))
	if err != nil {
		return nil, apperr.Internalf(err, "lookup subscribers")
	}
	defer rows.Close()
	var out []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan subscriber")
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}
