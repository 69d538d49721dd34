package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
)

// mustIdentity pulls the Identity the auth middleware attached to the
// request context. Every route under the authenticated group has one —
// if this ever misses, routing is wired wrong, so it is a 500, not a 401.
func mustIdentity(r *http.Request) auth.Identity {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		panic("httpapi: handler reached without an authenticated identity")
	}
	return id
}

// callerWorkspaceID is the workspace id acting on this request: the
// actor_id bound into the identity by either auth mode. Public readers
// have none.
func callerWorkspaceID(id auth.Identity) (string, error) {
	if id.Public || id.ActorID == "" {
		return "", apperr.Forbiddenf("this operation requires an agent or user identity, not a public reader")
	}
	return id.ActorID, nil
}

// withTimeout bounds a long-poll wait to the request's remaining lifetime.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
