package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beadhub/beadhub/internal/domain"
)

func bead(id, status string, blockedBy ...string) domain.Bead {
	refs := make([]domain.BeadRef, 0, len(blockedBy))
	for _, b := range blockedBy {
		refs = append(refs, domain.BeadRef{BeadID: b})
	}
	return domain.Bead{BeadID: id, Status: status, BlockedBy: refs}
}

func TestIsReadyNoBlockers(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open"),
	}
	assert.True(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadyBlockedByOpenBead(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open", "bd-2"),
		"bd-2": bead("bd-2", "open"),
	}
	assert.False(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadyBlockedByClosedBead(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open", "bd-2"),
		"bd-2": bead("bd-2", "closed"),
	}
	assert.True(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadyBlockedByMissingBeadIsNotABlocker(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open", "bd-missing"),
	}
	assert.True(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadyCycleIsNotReady(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open", "bd-2"),
		"bd-2": bead("bd-2", "open", "bd-1"),
	}
	memo := map[string]bool{}
	assert.False(t, isReady("bd-1", index, memo, map[string]bool{}))
	assert.False(t, isReady("bd-2", index, memo, map[string]bool{}))
}

func TestIsReadyCrossRepoBlockerIsUnresolvedLiveBlocker(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": {
			BeadID:    "bd-1",
			Status:    "open",
			BlockedBy: []domain.BeadRef{{Repo: "other-repo", BeadID: "bd-9"}},
		},
	}
	assert.False(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadyTransitiveChain(t *testing.T) {
	index := map[string]domain.Bead{
		"bd-1": bead("bd-1", "open", "bd-2"),
		"bd-2": bead("bd-2", "open", "bd-3"),
		"bd-3": bead("bd-3", "closed"),
	}
	assert.True(t, isReady("bd-1", index, map[string]bool{}, map[string]bool{}))
}

func TestIsReadySiblingPathsIndependentOfSharedCycle(t *testing.T) {
	// bd-a and bd-b form a cycle; bd-c is blocked by bd-a (open, on the cycle)
	// and by bd-d (closed). The open bd-a blocker alone makes bd-c not ready.
	index := map[string]domain.Bead{
		"bd-a": bead("bd-a", "open", "bd-b"),
		"bd-b": bead("bd-b", "open", "bd-a"),
		"bd-c": bead("bd-c", "open", "bd-a", "bd-d"),
		"bd-d": bead("bd-d", "closed"),
	}
	memo := map[string]bool{}
	assert.False(t, isReady("bd-c", index, memo, map[string]bool{}))
}
