package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
)

func TestConstructorsSetCode(t *testing.T) {
	cases := []struct {
		name string
		err  *apperr.Error
		want apperr.Code
	}{
		{"validation", apperr.ValidationError("bad %s", "input"), apperr.Validation},
		{"unauthenticated", apperr.Unauthenticatedf("no creds"), apperr.Unauthenticated},
		{"forbidden", apperr.Forbiddenf("nope"), apperr.Forbidden},
		{"not_found", apperr.NotFoundf("missing %d", 1), apperr.NotFound},
		{"conflict", apperr.Conflictf("taken"), apperr.Conflict},
		{"precondition_failed", apperr.PreconditionFailedf("stale"), apperr.PreconditionFailed},
		{"unavailable", apperr.Unavailablef("down"), apperr.Unavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Code)
			assert.Equal(t, tc.want, apperr.CodeOf(tc.err))
		})
	}
}

func TestInternalfWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := apperr.Internalf(cause, "opening store")

	assert.Equal(t, apperr.Internal, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "opening store")
}

func TestWithFieldsAttachesStructuredDetail(t *testing.T) {
	err := apperr.Conflictf("bead %q already claimed", "bd-1").WithFields(map[string]any{
		"claimants": []map[string]string{{"alias": "alice"}},
	})

	require.NotNil(t, err.Fields)
	assert.Equal(t, "bead \"bd-1\" already claimed", err.Detail)
	claimants, ok := err.Fields["claimants"].([]map[string]string)
	require.True(t, ok)
	assert.Equal(t, "alice", claimants[0]["alias"])
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	base := apperr.NotFoundf("workspace %q", "ws-1")
	wrapped := fmt.Errorf("loading workspace: %w", base)

	got, ok := apperr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, apperr.NotFound, got.Code)
}

func TestCodeOfDefaultsToInternalForUntypedErrors(t *testing.T) {
	assert.Equal(t, apperr.Internal, apperr.CodeOf(errors.New("plain")))
}
