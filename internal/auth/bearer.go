package auth

import (
	"context"
	"strings"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

const bearerPrefix = "Bearer "

// KeyLookup resolves a hashed bearer secret to the api-key row; satisfied
// by *store.Store in production and a fake in tests.
type KeyLookup interface {
	LookupApiKeyByHash(ctx context.Context, hash string) (*domain.ApiKey, error)
}

// VerifyBearer resolves an "Authorization: Bearer aw_sk_..." header to an
// Identity, hashing the opaque secret and looking it up (spec.md §4.C3).
func VerifyBearer(ctx context.Context, header string, keys KeyLookup) (Identity, error) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{}, apperr.Unauthenticatedf("missing bearer token")
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if !strings.HasPrefix(token, "aw_sk_") || len(token) < len("aw_sk_")+32 {
		return Identity{}, apperr.Unauthenticatedf("malformed bearer token")
	}
	key, err := keys.LookupApiKeyByHash(ctx, HashSecret(token))
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		ProjectID:     key.ProjectID,
		PrincipalType: PrincipalAPIKey,
		PrincipalID:   key.ID,
		ActorID:       key.AgentID,
		AgentID:       key.AgentID,
	}, nil
}

// CheckActorBinding enforces spec.md §4.C3's write-time rule: a bearer key
// bound to a specific agent may only act as that agent. Only identities of
// principal type k are checked: project-scoped keys (AgentID == "") and
// identities of any other principal type (proxy-mode users, public readers)
// are exempt, while a proxy-mode identity of type k is checked like a key.
func CheckActorBinding(id Identity, workspaceID string) error {
	if id.PrincipalType != PrincipalAPIKey || id.AgentID == "" {
		return nil
	}
	if id.AgentID != workspaceID {
		return apperr.Forbiddenf("api key is not bound to workspace %q", workspaceID)
	}
	return nil
}
