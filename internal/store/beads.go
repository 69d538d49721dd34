package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const beadCols = `project_id, bead_id, title, body, status, priority, assignee, creator, labels, parent, blocked_by, created_at, updated_at`

func scanBead(row pgx.Row) (*domain.Bead, error) {
	var b domain.Bead
	var parentJSON, blockedJSON []byte
	if err := row.Scan(&b.ProjectID, &b.BeadID, &b.Title, &b.Body, &b.Status, &b.Priority, &b.Assignee,
		&b.Creator, &b.Labels, &parentJSON, &blockedJSON, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(parentJSON) > 0 {
		var p domain.BeadRef
		if err := json.Unmarshal(parentJSON, &p); err == nil {
			b.Parent = &p
		}
	}
	if len(blockedJSON) > 0 {
		_ = json.Unmarshal(blockedJSON, &b.BlockedBy)
	}
	return &b, nil
}

// GetBeadStatus returns only the status column, used by the sync engine to
// compute the "previous status" before an upsert overwrites it (spec.md §4.C7).
func (s *Store) GetBeadStatus(ctx context.Context, tx pgx.Tx, projectID, beadID string) (string, bool, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM issues_beads WHERE project_id = $1 AND bead_id = $2`, projectID, beadID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Internalf(err, "get bead status")
	}
	return status, true, nil
}

func (s *Store) UpsertBead(ctx context.Context, tx pgx.Tx, b *domain.Bead) error {
	var parentJSON, blockedJSON []byte
	if b.Parent != nil {
		parentJSON, _ = json.Marshal(b.Parent)
	}
	blockedJSON, _ = json.Marshal(b.BlockedBy)
	if b.Labels == nil {
		b.Labels = []string{}
	}
	_, err := tx.Exec(ctx, `INSERT INTO issues_beads
		(project_id, bead_id, title, body, status, priority, assignee, creator, labels, parent, blocked_by, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
		ON CONFLICT (project_id, bead_id) DO UPDATE SET
			title = EXCLUDED.title, body = EXCLUDED.body, status = EXCLUDED.status,
			priority = EXCLUDED.priority, assignee = EXCLUDED.assignee, creator = EXCLUDED.creator,
			labels = EXCLUDED.labels, parent = EXCLUDED.parent, blocked_by = EXCLUDED.blocked_by,
			updated_at = now()`,
		b.ProjectID, b.BeadID, b.Title, b.Body, b.Status, b.Priority, b.Assignee, b.Creator, b.Labels, parentJSON, blockedJSON)
	if err != nil {
		return apperr.Internalf(err, "upsert bead")
	}
	return nil
}

func (s *Store) DeleteBeads(ctx context.Context, tx pgx.Tx, projectID string, beadIDs []string) (int, error) {
	if len(beadIDs) == 0 {
		return 0, nil
	}
	tag, err := tx.Exec(ctx, `DELETE FROM issues_beads WHERE project_id = $1 AND bead_id = ANY($2)`, projectID, beadIDs)
	if err != nil {
		return 0, apperr.Internalf(err, "delete beads")
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) GetBead(ctx context.Context, projectID, beadID string) (*domain.Bead, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+beadCols+` FROM issues_beads WHERE project_id = $1 AND bead_id = $2`, projectID, beadID)
	b, err := scanBead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("bead %q not found", beadID)
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get bead")
	}
	return b, nil
}

// ListBeadsOpts supports the cursor-paginated issue listing and the
// search-by-trigram lookup over title/body (spec.md §6 issues namespace).
type ListBeadsOpts struct {
	Status       string
	Search       string
	Limit        int
	AfterBeadID  string
}

func (s *Store) ListBeads(ctx context.Context, projectID string, opts ListBeadsOpts) ([]domain.Bead, error) {
	q := `SELECT ` + beadCols + ` FROM issues_beads WHERE project_id = $1`
	args := []any{projectID}
	n := 1
	if opts.Status != "" {
		n++
		q += ` AND status = $` + strconv.Itoa(n)
		args = append(args, opts.Status)
	}
	if opts.Search != "" {
		n++
		q += ` AND (title % $` + strconv.Itoa(n) + ` OR body % $` + strconv.Itoa(n) + `)`
		args = append(args, opts.Search)
	}
	if opts.AfterBeadID != "" {
		n++
		q += ` AND bead_id > $` + strconv.Itoa(n)
		args = append(args, opts.AfterBeadID)
	}
	q += ` ORDER BY bead_id LIMIT ` + strconv.Itoa(limitOrDefault(opts.Limit))

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internalf(err, "list beads")
	}
	defer rows.Close()
	var out []domain.Bead
	for rows.Next() {
		b, err := scanBead(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan bead")
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// AllBeadsIndex loads every bead id's status and blocked_by for the
// ready-query cycle detector (spec.md §9 + SPEC_FULL.md supplement).
func (s *Store) AllBeadsIndex(ctx context.Context, projectID string) (map[string]domain.Bead, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+beadCols+` FROM issues_beads WHERE project_id = $1`, projectID)
	if err != nil {
		return nil, apperr.Internalf(err, "list beads for ready query")
	}
	defer rows.Close()
	out := map[string]domain.Bead{}
	for rows.Next() {
		b, err := scanBead(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan bead")
		}
		out[b.BeadID] = *b
	}
	return out, rows.Err()
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return 50
	}
	if n > 500 {
		return 500
	}
	return n
}
