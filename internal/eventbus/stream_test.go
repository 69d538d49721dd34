package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beadhub/beadhub/internal/domain"
)

func TestFilterMatchesZeroValueMatchesEverything(t *testing.T) {
	var f Filter
	assert.True(t, f.matches(&domain.Event{Repo: "repo-a", Workspace: "ws-1", Type: domain.EventBeadClaimed}))
}

func TestFilterMatchesRepo(t *testing.T) {
	f := Filter{Repo: "repo-a"}
	assert.True(t, f.matches(&domain.Event{Repo: "repo-a"}))
	assert.False(t, f.matches(&domain.Event{Repo: "repo-b"}))
}

func TestFilterMatchesWorkspace(t *testing.T) {
	f := Filter{Workspace: "ws-1"}
	assert.True(t, f.matches(&domain.Event{Workspace: "ws-1"}))
	assert.False(t, f.matches(&domain.Event{Workspace: "ws-2"}))
}

func TestFilterMatchesEventTypes(t *testing.T) {
	f := Filter{EventTypes: map[domain.EventType]bool{domain.EventBeadClaimed: true}}
	assert.True(t, f.matches(&domain.Event{Type: domain.EventBeadClaimed}))
	assert.False(t, f.matches(&domain.Event{Type: domain.EventBeadUnclaimed}))
}

func TestFilterMatchesAllDimensionsTogether(t *testing.T) {
	f := Filter{
		Repo:       "repo-a",
		Workspace:  "ws-1",
		EventTypes: map[domain.EventType]bool{domain.EventReservationAcquired: true},
	}
	assert.True(t, f.matches(&domain.Event{Repo: "repo-a", Workspace: "ws-1", Type: domain.EventReservationAcquired}))
	assert.False(t, f.matches(&domain.Event{Repo: "repo-a", Workspace: "ws-2", Type: domain.EventReservationAcquired}))
	assert.False(t, f.matches(&domain.Event{Repo: "repo-b", Workspace: "ws-1", Type: domain.EventReservationAcquired}))
}
