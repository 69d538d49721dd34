package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const mailCols = `id, project_id, from_ws_id, from_alias, to_ws_id, subject, body, priority, thread_id, read, read_at, created_at`

func scanMail(row pgx.Row) (*domain.Mail, error) {
	var m domain.Mail
	if err := row.Scan(&m.ID, &m.ProjectID, &m.FromWSID, &m.FromAlias, &m.ToWSID, &m.Subject, &m.Body,
		&m.Priority, &m.ThreadID, &m.Read, &m.ReadAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) SendMail(ctx context.Context, m *domain.Mail) (*domain.Mail, error) {
	row := s.Pool.QueryRow(ctx, `INSERT INTO auth_messages
		(project_id, from_ws_id, from_alias, to_ws_id, subject, body, priority, thread_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+mailCols,
		m.ProjectID, m.FromWSID, m.FromAlias, m.ToWSID, m.Subject, m.Body, m.Priority, m.ThreadID)
	out, err := scanMail(row)
	if err != nil {
		return nil, apperr.Internalf(err, "send mail")
	}
	return out, nil
}

type ListInboxOpts struct {
	UnreadOnly   bool
	Limit        int
	AfterID      string
	AfterCreated *string // opaque cursor tiebreak, RFC3339
}

func (s *Store) ListInbox(ctx context.Context, projectID, workspaceID string, opts ListInboxOpts) ([]domain.Mail, error) {
	q := `SELECT ` + mailCols + ` FROM auth_messages WHERE project_id = $1 AND to_ws_id = $2`
	args := []any{projectID, workspaceID}
	if opts.UnreadOnly {
		q += ` AND read = false`
	}
	if opts.AfterCreated != nil && opts.AfterID != "" {
		q += ` AND (created_at, id) < ($3, $4)`
		args = append(args, *opts.AfterCreated, opts.AfterID)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ` + strconv.Itoa(limitOrDefault(opts.Limit))
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internalf(err, "list inbox")
	}
	defer rows.Close()
	var out []domain.Mail
	for rows.Next() {
		m, err := scanMail(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan mail")
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// AcknowledgeMail sets read=true idempotently: a second ack on an
// already-read message is a no-op and read_at stays the first ack's time
// (spec.md §8 round-trip property).
func (s *Store) AcknowledgeMail(ctx context.Context, projectID, messageID, workspaceID string) (*domain.Mail, error) {
	row := s.Pool.QueryRow(ctx, `UPDATE auth_messages SET read = true, read_at = COALESCE(read_at, now())
		WHERE project_id = $1 AND id = $2 AND to_ws_id = $3
		RETURNING `+mailCols, projectID, messageID, workspaceID)
	m, err := scanMail(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("message not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "acknowledge mail")
	}
	return m, nil
}
