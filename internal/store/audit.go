package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
)

// InsertAudit appends one append-only audit record in the caller's
// transaction (SPEC_FULL.md "Audit trail completeness").
func (s *Store) InsertAudit(ctx context.Context, tx pgx.Tx, projectID, actor, action string, detail []byte) error {
	_, err := tx.Exec(ctx, `INSERT INTO domain_audit_log (project_id, actor, action, detail) VALUES ($1,$2,$3,$4)`,
		projectID, actor, action, detail)
	if err != nil {
		return apperr.Internalf(err, "insert audit entry")
	}
	return nil
}
