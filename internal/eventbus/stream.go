// Package eventbus wraps the ephemeral pub/sub subscription with the
// server-side filtering and heartbeat loop the live stream endpoint needs
// (spec.md §4.C9).
package eventbus

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/domain"
	"github.com/beadhub/beadhub/internal/ephemeral"
)

// Filter selects the subset of events a subscriber cares about; zero
// values mean "no filter on this field".
type Filter struct {
	Repo       string
	Workspace  string
	EventTypes map[domain.EventType]bool
}

func (f Filter) matches(ev *domain.Event) bool {
	if f.Repo != "" && ev.Repo != f.Repo {
		return false
	}
	if f.Workspace != "" && ev.Workspace != f.Workspace {
		return false
	}
	if len(f.EventTypes) > 0 && !f.EventTypes[ev.Type] {
		return false
	}
	return true
}

type Bus struct {
	ephemeral  *ephemeral.Store
	heartbeat  time.Duration
	bufferSize int
}

func New(eph *ephemeral.Store, heartbeat time.Duration, bufferSize int) *Bus {
	return &Bus{ephemeral: eph, heartbeat: heartbeat, bufferSize: bufferSize}
}

// Sink is what the SSE handler reads from: the events that passed the
// filter. Heartbeats are not carried on it; the handler runs its own ticker
// at Bus.Heartbeat().
type Sink struct {
	Events chan *domain.Event
	errc   chan error
}

func (s *Sink) Err() <-chan error { return s.errc }

// Stream subscribes to projectID's channel and relays matching events into
// a bounded buffer; a slow consumer that fills the buffer silently drops
// further events rather than blocking the publisher (spec.md §4.C9
// "Events that cannot be delivered ... are dropped").
func (b *Bus) Stream(ctx context.Context, projectID string, filter Filter) *Sink {
	sub := b.ephemeral.Subscribe(ctx, projectID)
	sink := &Sink{Events: make(chan *domain.Event, b.bufferSize), errc: make(chan error, 1)}

	go func() {
		defer sub.Close()
		defer close(sink.Events)
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				sink.errc <- err
				return
			}
			if !filter.matches(ev) {
				continue
			}
			select {
			case sink.Events <- ev:
			default:
				// buffer full: drop, per spec.md §4.C9 slow-consumer rule
			}
		}
	}()

	return sink
}

func (b *Bus) Heartbeat() time.Duration { return b.heartbeat }
