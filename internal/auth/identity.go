// Package auth implements the two authentication modes of spec.md §4.C3:
// a trusted signed-proxy header and a bearer API key, both resolving to a
// common Identity the rest of the server reasons about.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

type PrincipalType string

const (
	PrincipalUser      PrincipalType = "u"
	PrincipalAPIKey    PrincipalType = "k"
	PrincipalPublic    PrincipalType = "p"
)

// Identity is the authenticated caller, regardless of which mode produced
// it. AgentID is empty for project-scoped API keys and for public readers.
type Identity struct {
	ProjectID     string
	PrincipalType PrincipalType
	PrincipalID   string
	ActorID       string
	AgentID       string
	Public        bool
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// HashSecret is the one-way transform stored for bearer API keys
// (spec.md §4.C3: "Server hashes with SHA-256").
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
