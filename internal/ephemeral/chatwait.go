package ephemeral

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
)

func chatWaitChannel(projectID, sessionID string) string {
	return projectKey("chatwait", projectID, sessionID)
}

// NotifyChatMessage wakes any workspace blocked in WaitForChatMessage on
// this session (spec.md §4.C9 "send" fan-out to waiters). The returned count
// is the number of subscribers that actually received the wake, which is
// what distinguishes a delivered message from one nobody was waiting for.
func (s *Store) NotifyChatMessage(ctx context.Context, projectID, sessionID string) (int64, error) {
	n, err := s.rdb.Publish(ctx, chatWaitChannel(projectID, sessionID), "1").Result()
	if err != nil {
		return 0, apperr.Internalf(err, "notify chat message")
	}
	return n, nil
}

// WaitForChatMessage blocks until a new message is published on the
// session, the wait budget elapses, or ctx is cancelled — the long-poll
// primitive backing chat "send and wait" and extend-wait (spec.md §4.C9).
// Returns true if woken by a publish, false on timeout.
func (s *Store) WaitForChatMessage(ctx context.Context, projectID, sessionID string, wait time.Duration) (bool, error) {
	sub := s.rdb.Subscribe(ctx, chatWaitChannel(projectID, sessionID))
	defer sub.Close()

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	select {
	case <-waitCtx.Done():
		return false, nil
	case _, ok := <-sub.Channel():
		if !ok {
			return false, nil
		}
		return true, nil
	}
}

func chatLeaveKey(projectID, sessionID, workspaceID string) string {
	return projectKey("chatleave", projectID, sessionID, workspaceID)
}

// MarkChatLeaving records, for 24 hours, that workspaceID has signaled
// intent to leave a chat session (spec.md §4.C9 "leave"); IsChatLeaving
// reads the mark back. The chat handlers do not consult it.
func (s *Store) MarkChatLeaving(ctx context.Context, projectID, sessionID, workspaceID string) error {
	if err := s.rdb.Set(ctx, chatLeaveKey(projectID, sessionID, workspaceID), "1", 24*time.Hour).Err(); err != nil {
		return apperr.Internalf(err, "mark chat leaving")
	}
	return nil
}

func (s *Store) IsChatLeaving(ctx context.Context, projectID, sessionID, workspaceID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, chatLeaveKey(projectID, sessionID, workspaceID)).Result()
	if err != nil {
		return false, apperr.Internalf(err, "check chat leaving")
	}
	return n > 0, nil
}
