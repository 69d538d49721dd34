package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
	"github.com/beadhub/beadhub/internal/domain"
)

type fakeKeyLookup struct {
	byHash map[string]*domain.ApiKey
}

func (f *fakeKeyLookup) LookupApiKeyByHash(_ context.Context, hash string) (*domain.ApiKey, error) {
	k, ok := f.byHash[hash]
	if !ok {
		return nil, apperr.Unauthenticatedf("unknown api key")
	}
	return k, nil
}

func TestVerifyBearerResolvesIdentity(t *testing.T) {
	secret := "aw_sk_" + "a1234567890123456789012345678901"
	keys := &fakeKeyLookup{byHash: map[string]*domain.ApiKey{
		auth.HashSecret(secret): {ID: "key-1", ProjectID: "proj-1", AgentID: "ws-1"},
	}}

	id, err := auth.VerifyBearer(context.Background(), "Bearer "+secret, keys)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", id.ProjectID)
	assert.Equal(t, auth.PrincipalAPIKey, id.PrincipalType)
	assert.Equal(t, "key-1", id.PrincipalID)
	assert.Equal(t, "ws-1", id.AgentID)
	assert.Equal(t, "ws-1", id.ActorID)
	assert.False(t, id.Public)
}

func TestVerifyBearerRejectsMissingPrefix(t *testing.T) {
	_, err := auth.VerifyBearer(context.Background(), "Token abc", &fakeKeyLookup{})
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestVerifyBearerRejectsMalformedToken(t *testing.T) {
	_, err := auth.VerifyBearer(context.Background(), "Bearer aw_sk_short", &fakeKeyLookup{})
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestVerifyBearerUnknownSecretIsUnauthenticated(t *testing.T) {
	keys := &fakeKeyLookup{byHash: map[string]*domain.ApiKey{}}
	_, err := auth.VerifyBearer(context.Background(), "Bearer aw_sk_"+"b1234567890123456789012345678901", keys)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestCheckActorBindingAllowsUnboundProjectKey(t *testing.T) {
	id := auth.Identity{PrincipalType: auth.PrincipalAPIKey, AgentID: ""}
	assert.NoError(t, auth.CheckActorBinding(id, "ws-1"))
}

func TestCheckActorBindingAllowsMatchingAgent(t *testing.T) {
	id := auth.Identity{PrincipalType: auth.PrincipalAPIKey, AgentID: "ws-1"}
	assert.NoError(t, auth.CheckActorBinding(id, "ws-1"))
}

func TestCheckActorBindingRejectsMismatchedAgent(t *testing.T) {
	id := auth.Identity{PrincipalType: auth.PrincipalAPIKey, AgentID: "ws-1"}
	err := auth.CheckActorBinding(id, "ws-2")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.CodeOf(err))
}

func TestCheckActorBindingExemptsProxyIdentities(t *testing.T) {
	id := auth.Identity{PrincipalType: auth.PrincipalUser, AgentID: "ws-1"}
	assert.NoError(t, auth.CheckActorBinding(id, "ws-2"))
}
