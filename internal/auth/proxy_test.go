package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/auth"
)

func TestSignAndVerifyProxyHeaderRoundTrip(t *testing.T) {
	secret := []byte("shared-secret")
	header := auth.SignProxyHeader("proj-1", auth.PrincipalUser, "user-1", "ws-1", secret)

	id, err := auth.VerifyProxyHeader(header, secret)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", id.ProjectID)
	assert.Equal(t, auth.PrincipalUser, id.PrincipalType)
	assert.Equal(t, "user-1", id.PrincipalID)
	assert.Equal(t, "ws-1", id.ActorID)
	assert.Equal(t, "ws-1", id.AgentID)
	assert.False(t, id.Public)
}

func TestVerifyProxyHeaderPublicPrincipalHasNoAgentID(t *testing.T) {
	secret := []byte("shared-secret")
	header := auth.SignProxyHeader("proj-1", auth.PrincipalPublic, "", "", secret)

	id, err := auth.VerifyProxyHeader(header, secret)
	require.NoError(t, err)
	assert.True(t, id.Public)
	assert.Empty(t, id.AgentID)
}

func TestVerifyProxyHeaderRejectsTamperedSignature(t *testing.T) {
	secret := []byte("shared-secret")
	header := auth.SignProxyHeader("proj-1", auth.PrincipalUser, "user-1", "ws-1", secret)
	tampered := header[:len(header)-1] + "0"

	_, err := auth.VerifyProxyHeader(tampered, secret)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestVerifyProxyHeaderRejectsWrongSecret(t *testing.T) {
	header := auth.SignProxyHeader("proj-1", auth.PrincipalUser, "user-1", "ws-1", []byte("secret-a"))

	_, err := auth.VerifyProxyHeader(header, []byte("secret-b"))
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestVerifyProxyHeaderRejectsMalformedHeader(t *testing.T) {
	_, err := auth.VerifyProxyHeader("v2:proj-1:u:user-1", []byte("secret"))
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestVerifyProxyHeaderRejectsUnknownPrincipalType(t *testing.T) {
	header := auth.SignProxyHeader("proj-1", auth.PrincipalType("x"), "user-1", "ws-1", []byte("secret"))

	_, err := auth.VerifyProxyHeader(header, []byte("secret"))
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
}

func TestHeaderFromRequestTrimsWhitespace(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	r.Header.Set("X-BH-Auth", "  v2:proj:u:p:a:sig  ")
	assert.Equal(t, "v2:proj:u:p:a:sig", auth.HeaderFromRequest(r))
}
