package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const outboxCols = `id, project_id, recipient_ws_id, recipient_alias, event_type, payload, fingerprint,
	attempts, last_error, status, delivered_msg_id, created_at, updated_at, next_attempt_at`

func scanOutbox(row pgx.Row) (*domain.OutboxEntry, error) {
	var e domain.OutboxEntry
	if err := row.Scan(&e.ID, &e.ProjectID, &e.RecipientWSID, &e.RecipientAlias, &e.EventType, &e.Payload,
		&e.Fingerprint, &e.Attempts, &e.LastError, &e.Status, &e.DeliveredMsgID, &e.CreatedAt, &e.UpdatedAt, &e.NextAttemptAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertOutboxEntry must be called inside the same transaction as the event
// it notifies about (spec.md §3 "at-least-once delivery" invariant). A
// duplicate (recipient, fingerprint) is silently ignored — the
// idempotent-by-fingerprint dedup the sync engine relies on.
func (s *Store) InsertOutboxEntry(ctx context.Context, tx pgx.Tx, e *domain.OutboxEntry) error {
	_, err := tx.Exec(ctx, `INSERT INTO domain_outbox
		(project_id, recipient_ws_id, recipient_alias, event_type, payload, fingerprint)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (recipient_ws_id, fingerprint) DO NOTHING`,
		e.ProjectID, e.RecipientWSID, e.RecipientAlias, e.EventType, e.Payload, e.Fingerprint)
	if err != nil {
		return apperr.Internalf(err, "insert outbox entry")
	}
	return nil
}

// ClaimOutboxBatch selects up to n pending/retriable entries with
// FOR UPDATE SKIP LOCKED and flips them to processing, per spec.md §5's
// locking discipline for the dispatcher.
func (s *Store) ClaimOutboxBatch(ctx context.Context, n, maxAttempts int) ([]domain.OutboxEntry, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internalf(err, "begin outbox claim tx")
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT `+outboxCols+` FROM domain_outbox
		WHERE status IN ('pending','failed') AND attempts < $1 AND next_attempt_at <= now()
		ORDER BY project_id, created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, maxAttempts, n)
	if err != nil {
		return nil, apperr.Internalf(err, "claim outbox batch")
	}
	var entries []domain.OutboxEntry
	var ids []string
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			rows.Close()
			return nil, apperr.Internalf(err, "scan outbox entry")
		}
		entries = append(entries, *e)
		ids = append(ids, e.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Internalf(err, "iterate outbox batch")
	}
	if len(ids) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE domain_outbox SET status = 'processing', updated_at = now() WHERE id = ANY($1)`, ids); err != nil {
			return nil, apperr.Internalf(err, "mark outbox processing")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internalf(err, "commit outbox claim")
	}
	for i := range entries {
		entries[i].Status = domain.OutboxProcessing
	}
	return entries, nil
}

func (s *Store) MarkOutboxCompleted(ctx context.Context, id, deliveredMsgID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE domain_outbox SET status = 'completed', delivered_msg_id = $2, updated_at = now() WHERE id = $1`, id, deliveredMsgID)
	if err != nil {
		return apperr.Internalf(err, "mark outbox completed")
	}
	return nil
}

// MarkOutboxRetry increments attempts and schedules the next try with
// exponential backoff, per spec.md §4.C10: min(base*2^attempts, cap).
// Once attempts reaches maxAttempts the entry is marked permanently failed.
func (s *Store) MarkOutboxRetry(ctx context.Context, id string, attempts int, lastErr string, maxAttempts int, base, cap time.Duration) error {
	if attempts >= maxAttempts {
		_, err := s.Pool.Exec(ctx, `UPDATE domain_outbox SET status = 'failed', attempts = $2, last_error = $3, updated_at = now() WHERE id = $1`,
			id, attempts, lastErr)
		if err != nil {
			return apperr.Internalf(err, "mark outbox failed")
		}
		return nil
	}
	backoff := base << attempts
	if backoff > cap || backoff <= 0 {
		backoff = cap
	}
	_, err := s.Pool.Exec(ctx, `UPDATE domain_outbox SET status = 'pending', attempts = $2, last_error = $3,
		next_attempt_at = now() + $4::interval, updated_at = now() WHERE id = $1`,
		id, attempts, lastErr, backoff.String())
	if err != nil {
		return apperr.Internalf(err, "schedule outbox retry")
	}
	return nil
}
