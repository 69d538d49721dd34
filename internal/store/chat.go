package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const chatSessionCols = `id, project_id, participants, created_at`
const chatMessageCols = `id, session_id, project_id, from_ws_id, from_alias, body, leaving, observer, created_at`

func scanChatSession(row pgx.Row) (*domain.ChatSession, error) {
	var cs domain.ChatSession
	if err := row.Scan(&cs.ID, &cs.ProjectID, &cs.Participants, &cs.CreatedAt); err != nil {
		return nil, err
	}
	return &cs, nil
}

func scanChatMessage(row pgx.Row) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.SessionID, &m.ProjectID, &m.FromWSID, &m.FromAlias, &m.Body, &m.Leaving, &m.Observer, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateChatSession opens a session with the given initial participants.
// Further participants (e.g. an admin joining later) are appended with
// AddChatParticipant, never removed — chat sessions accumulate observers
// rather than shrink (spec.md §4.C9 admin-join semantics).
func (s *Store) CreateChatSession(ctx context.Context, projectID string, participants []string) (*domain.ChatSession, error) {
	row := s.Pool.QueryRow(ctx, `INSERT INTO auth_chat_sessions (project_id, participants) VALUES ($1,$2) RETURNING `+chatSessionCols,
		projectID, participants)
	cs, err := scanChatSession(row)
	if err != nil {
		return nil, apperr.Internalf(err, "create chat session")
	}
	return cs, nil
}

func (s *Store) GetChatSession(ctx context.Context, projectID, id string) (*domain.ChatSession, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+chatSessionCols+` FROM auth_chat_sessions WHERE project_id = $1 AND id = $2`, projectID, id)
	cs, err := scanChatSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("chat session not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "get chat session")
	}
	return cs, nil
}

func (s *Store) AddChatParticipant(ctx context.Context, projectID, sessionID, workspaceID string) (*domain.ChatSession, error) {
	row := s.Pool.QueryRow(ctx, `UPDATE auth_chat_sessions
		SET participants = (SELECT array_agg(DISTINCT p) FROM unnest(participants || $3::uuid) AS p)
		WHERE project_id = $1 AND id = $2 RETURNING `+chatSessionCols,
		projectID, sessionID, workspaceID)
	cs, err := scanChatSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("chat session not found")
	}
	if err != nil {
		return nil, apperr.Internalf(err, "add chat participant")
	}
	return cs, nil
}

// ListChatSessions supports the admin listing surface (open sessions across
// a project, newest first).
func (s *Store) ListChatSessions(ctx context.Context, projectID string, limit int) ([]domain.ChatSession, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+chatSessionCols+` FROM auth_chat_sessions WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`,
		projectID, limitOrDefault(limit))
	if err != nil {
		return nil, apperr.Internalf(err, "list chat sessions")
	}
	defer rows.Close()
	var out []domain.ChatSession
	for rows.Next() {
		cs, err := scanChatSession(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan chat session")
		}
		out = append(out, *cs)
	}
	return out, rows.Err()
}

func (s *Store) AppendChatMessage(ctx context.Context, m *domain.ChatMessage) (*domain.ChatMessage, error) {
	row := s.Pool.QueryRow(ctx, `INSERT INTO auth_chat_messages
		(session_id, project_id, from_ws_id, from_alias, body, leaving, observer)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING `+chatMessageCols,
		m.SessionID, m.ProjectID, m.FromWSID, m.FromAlias, m.Body, m.Leaving, m.Observer)
	out, err := scanChatMessage(row)
	if err != nil {
		return nil, apperr.Internalf(err, "append chat message")
	}
	return out, nil
}

func (s *Store) ChatHistory(ctx context.Context, projectID, sessionID string, since string) ([]domain.ChatMessage, error) {
	q := `SELECT ` + chatMessageCols + ` FROM auth_chat_messages WHERE project_id = $1 AND session_id = $2`
	args := []any{projectID, sessionID}
	if since != "" {
		q += ` AND id > $3`
		args = append(args, since)
	}
	q += ` ORDER BY created_at ASC`
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internalf(err, "chat history")
	}
	defer rows.Close()
	var out []domain.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, apperr.Internalf(err, "scan chat message")
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
