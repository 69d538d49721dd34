package sync

import (
	"context"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/store"
)

// openLike reports whether a bead's status counts as a live blocker.
func openLike(status string) bool {
	return status == "open" || status == "in_progress"
}

// Ready computes, for every bead in a project, whether it is ready: no
// blocker in its transitive closure is open/in_progress. A cycle anywhere
// in the closure makes the bead not-ready rather than looping forever
// (spec.md §9's design note).
func Ready(ctx context.Context, st *store.Store, projectID string) (map[string]bool, error) {
	index, err := st.AllBeadsIndex(ctx, projectID)
	if err != nil {
		return nil, err
	}

	memo := map[string]bool{}
	out := map[string]bool{}
	for id := range index {
		out[id] = isReady(id, index, memo, map[string]bool{})
	}
	return out, nil
}

// isReady runs an iterative-feel DFS (recursive but bounded by visited,
// which is what keeps it from looping on a cycle) over blocked_by edges.
// A bead currently on the call stack (visiting[id]) that is reached again
// is a cycle — treated as a live blocker, per spec.md §9.
func isReady(id string, index map[string]domain.Bead, memo map[string]bool, visiting map[string]bool) bool {
	if v, ok := memo[id]; ok {
		return v
	}
	bead, ok := index[id]
	if !ok {
		// Referenced bead absent from this project's index: not a blocker.
		memo[id] = true
		return true
	}
	if visiting[id] {
		// Revisiting a bead still on the stack means a cycle; report
		// not-ready without memoizing, so sibling call stacks that reach
		// this bead via a different, acyclic path are computed correctly.
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	for _, ref := range bead.BlockedBy {
		if ref.Repo != "" {
			// Cross-repo blockers are outside this project's bead index and
			// cannot be resolved here; treat as an unresolved live blocker.
			memo[id] = false
			return false
		}
		blocker, exists := index[ref.BeadID]
		if exists && openLike(blocker.Status) {
			memo[id] = false
			return false
		}
		if exists && !isReady(ref.BeadID, index, memo, visiting) {
			memo[id] = false
			return false
		}
	}
	memo[id] = true
	return true
}
