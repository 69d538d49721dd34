package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

func (s *Store) CreateAgent(ctx context.Context, tx pgx.Tx, agentID, projectID string) error {
	_, err := tx.Exec(ctx, `INSERT INTO auth_agents (id, project_id) VALUES ($1, $2)`, agentID, projectID)
	if err != nil {
		return apperr.Internalf(err, "create agent")
	}
	return nil
}

// CreateApiKey stores the hash only; the plaintext is returned to the
// caller exactly once by the workspace registry (spec.md §4.C4).
func (s *Store) CreateApiKey(ctx context.Context, tx pgx.Tx, projectID string, agentID *string, secretHash string) (*domain.ApiKey, error) {
	row := tx.QueryRow(ctx, `INSERT INTO auth_api_keys (project_id, agent_id, secret_hash)
		VALUES ($1, $2, $3) RETURNING id, project_id, agent_id, secret_hash, created_at`,
		projectID, agentID, secretHash)
	var k domain.ApiKey
	var agent *string
	if err := row.Scan(&k.ID, &k.ProjectID, &agent, &k.SecretHash, &k.CreatedAt); err != nil {
		return nil, apperr.Internalf(err, "create api key")
	}
	if agent != nil {
		k.AgentID = *agent
	}
	return &k, nil
}

// LookupApiKeyByHash recovers (project_id, agent_id, api_key_id) for bearer
// auth (spec.md §4.C3). AgentID is empty for project-scoped keys.
func (s *Store) LookupApiKeyByHash(ctx context.Context, hash string) (*domain.ApiKey, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, project_id, agent_id, secret_hash, created_at FROM auth_api_keys WHERE secret_hash = $1`, hash)
	var k domain.ApiKey
	var agent *string
	if err := row.Scan(&k.ID, &k.ProjectID, &agent, &k.SecretHash, &k.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Unauthenticatedf("invalid api key")
		}
		return nil, apperr.Internalf(err, "lookup api key")
	}
	if agent != nil {
		k.AgentID = *agent
	}
	return &k, nil
}
