package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/eventbus"
)

// handleStatus is the point-in-time snapshot: present workspaces, claim
// conflicts, and outstanding reservations (spec.md §6 "Snapshot").
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)
	ctx := r.Context()

	present, err := s.app.Ephemeral.PresentWorkspaces(ctx, id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	conflicts, err := s.app.Store.ConflictedBeads(ctx, id.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reservations, err := s.app.Reservation.List(ctx, id.ProjectID, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"present_workspaces": present,
		"conflicted_beads":   conflicts,
		"reservations":       reservations,
	})
}

// handleStatusStream is the SSE live stream of spec.md §4.C9: a 15s
// heartbeat, a 64-event bounded per-subscriber buffer, and server-side
// filtering applied after subscribe.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	id := mustIdentity(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	filter := eventbus.Filter{
		Repo:      r.URL.Query().Get("repo"),
		Workspace: r.URL.Query().Get("workspace"),
	}
	if types := r.URL.Query().Get("event_types"); types != "" {
		filter.EventTypes = map[domain.EventType]bool{}
		for _, t := range strings.Split(types, ",") {
			filter.EventTypes[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := s.app.EventBus.Stream(r.Context(), id.ProjectID, filter)
	ticker := time.NewTicker(s.app.EventBus.Heartbeat())
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case err := <-sink.Err():
			if err != nil {
				return
			}
		case ev, ok := <-sink.Events:
			if !ok {
				return
			}
			payload, _ := json.Marshal(ev)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
