package ephemeral

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
)

func inboxChannel(projectID, workspaceID string) string {
	return projectKey("inbox", projectID, workspaceID)
}

// NotifyInbox wakes a workspace's blocked mail-wait, mirroring
// NotifyChatMessage for the mail plane (spec.md §4.C8).
func (s *Store) NotifyInbox(ctx context.Context, projectID, workspaceID string) error {
	if err := s.rdb.Publish(ctx, inboxChannel(projectID, workspaceID), "1").Err(); err != nil {
		return apperr.Internalf(err, "notify inbox")
	}
	return nil
}

func (s *Store) WaitForInbox(ctx context.Context, projectID, workspaceID string, wait time.Duration) (bool, error) {
	sub := s.rdb.Subscribe(ctx, inboxChannel(projectID, workspaceID))
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
