package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
)

func TestMustIdentityPanicsWithoutContextValue(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/status", nil)
	assert.Panics(t, func() { mustIdentity(req) })
}

func TestMustIdentityReturnsAttachedIdentity(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/status", nil)
	want := auth.Identity{ProjectID: "proj-1", ActorID: "ws-1"}
	req = req.WithContext(auth.WithIdentity(req.Context(), want))

	got := mustIdentity(req)
	assert.Equal(t, want, got)
}

func TestCallerWorkspaceIDRejectsPublicReaders(t *testing.T) {
	_, err := callerWorkspaceID(auth.Identity{Public: true})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.CodeOf(err))
}

func TestCallerWorkspaceIDRejectsEmptyActor(t *testing.T) {
	_, err := callerWorkspaceID(auth.Identity{ActorID: ""})
	require.Error(t, err)
}

func TestCallerWorkspaceIDReturnsActorID(t *testing.T) {
	got, err := callerWorkspaceID(auth.Identity{ActorID: "ws-9"})
	require.NoError(t, err)
	assert.Equal(t, "ws-9", got)
}

func TestWithTimeoutBoundsContext(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context did not time out")
	}
}
