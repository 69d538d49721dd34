package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceMarshalsSnakeCaseKeys(t *testing.T) {
	repoID := "repo-1"
	ws := Workspace{
		ID:        "ws-1",
		ProjectID: "proj-1",
		RepoID:    &repoID,
		Class:     WorkspaceClassAgent,
		Alias:     "alice",
		CreatedAt: time.Unix(0, 0).UTC(),
	}

	raw, err := json.Marshal(ws)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))

	assert.Contains(t, asMap, "id")
	assert.Contains(t, asMap, "project_id")
	assert.Contains(t, asMap, "repo_id")
	assert.Contains(t, asMap, "created_at")
	assert.NotContains(t, asMap, "ProjectID")
	assert.NotContains(t, asMap, "RepoID")
}

func TestWorkspaceOmitsEmptyOptionalFields(t *testing.T) {
	ws := Workspace{ID: "ws-1", ProjectID: "proj-1", Class: WorkspaceClassDashboard, Alias: "dash"}

	raw, err := json.Marshal(ws)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))

	assert.NotContains(t, asMap, "repo_id")
	assert.NotContains(t, asMap, "human_name")
	assert.NotContains(t, asMap, "deleted_at")
}

func TestApiKeyNeverSerializesSecretHash(t *testing.T) {
	k := ApiKey{ID: "key-1", ProjectID: "proj-1", SecretHash: "super-secret-hash"}

	raw, err := json.Marshal(k)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-hash")
}

func TestProjectActiveReflectsDeletedAt(t *testing.T) {
	p := Project{}
	assert.True(t, p.Active())

	now := time.Now()
	p.DeletedAt = &now
	assert.False(t, p.Active())
}
