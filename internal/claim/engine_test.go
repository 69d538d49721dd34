package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beadhub/beadhub/internal/domain"
)

func TestClaimantSummariesShape(t *testing.T) {
	claims := []domain.Claim{
		{WorkspaceID: "ws-1", Alias: "alice", HumanName: "Alice A"},
		{WorkspaceID: "ws-2", Alias: "bob", HumanName: ""},
	}
	got := claimantSummaries(claims)

	assert.Len(t, got, 2)
	assert.Equal(t, "ws-1", got[0]["workspace_id"])
	assert.Equal(t, "alice", got[0]["alias"])
	assert.Equal(t, "Alice A", got[0]["human_name"])
	assert.Equal(t, "bob", got[1]["alias"])
}

func TestClaimantSummariesEmpty(t *testing.T) {
	got := claimantSummaries(nil)
	assert.Len(t, got, 0)
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{Claimants: []domain.Claim{{Alias: "alice"}}}
	assert.Equal(t, "bead already claimed", err.Error())
}
