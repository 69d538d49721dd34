package ephemeral

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/beadhub/beadhub/internal/apperr"
	"github.com/beadhub/beadhub/internal/domain"
)

func eventChannel(projectID string) string {
	return projectKey("events", projectID)
}

func (s *Store) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return apperr.Internalf(err, "marshal event")
	}
	if err := s.rdb.Publish(ctx, eventChannel(ev.Project), payload).Err(); err != nil {
		return apperr.Internalf(err, "publish event")
	}
	return nil
}

// Subscription wraps a live redis pub/sub channel for one project's events.
type Subscription struct {
	ps *redis.PubSub
	ch <-chan *redis.Message
}

// EventSubscriberCount reports how many live SSE subscribers (internal/
// httpapi's /v1/status/stream) are currently attached to a project's event
// channel — used by the chat "delivered" flag (spec.md §4.C8) alongside
// NotifyChatMessage's wait-channel receiver count.
func (s *Store) EventSubscriberCount(ctx context.Context, projectID string) (int64, error) {
	channel := eventChannel(projectID)
	counts, err := s.rdb.PubSubNumSub(ctx, channel).Result()
	if err != nil {
		return 0, apperr.Internalf(err, "count event subscribers")
	}
	return counts[channel], nil
}

func (s *Store) Subscribe(ctx context.Context, projectID string) *Subscription {
	ps := s.rdb.Subscribe(ctx, eventChannel(projectID))
	return &Subscription{ps: ps, ch: ps.Channel()}
}

// Next blocks until an event arrives, ctx is cancelled, or the channel is
// closed. The SSE handler in internal/httpapi interleaves this with a
// heartbeat ticker (spec.md §4.C9).
func (sub *Subscription) Next(ctx context.Context) (*domain.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-sub.ch:
		if !ok {
			return nil, apperr.Unavailablef("event stream closed")
		}
		var ev domain.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			return nil, apperr.Internalf(err, "decode event")
		}
		return &ev, nil
	}
}

func (sub *Subscription) Close() error {
	return sub.ps.Close()
}
