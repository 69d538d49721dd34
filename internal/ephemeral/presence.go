package ephemeral

import (
	"context"
	"time"

	"github.com/beadhub/beadhub/internal/apperr"
)

func presenceKey(projectID, workspaceID string) string {
	return projectKey("presence", projectID, workspaceID)
}

// TouchPresence refreshes the workspace's TTL-backed liveness key
// (spec.md §4.C2 "register/update" heartbeat). A workspace with no key is
// considered offline by IsPresent.
func (s *Store) TouchPresence(ctx context.Context, projectID, workspaceID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, presenceKey(projectID, workspaceID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return apperr.Internalf(err, "touch presence")
	}
	return nil
}

func (s *Store) IsPresent(ctx context.Context, projectID, workspaceID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, presenceKey(projectID, workspaceID)).Result()
	if err != nil {
		return false, apperr.Internalf(err, "check presence")
	}
	return n > 0, nil
}

func (s *Store) ClearPresence(ctx context.Context, projectID, workspaceID string) error {
	if err := s.rdb.Del(ctx, presenceKey(projectID, workspaceID)).Err(); err != nil {
		return apperr.Internalf(err, "clear presence")
	}
	return nil
}

// PresentWorkspaces returns the set of workspace ids with a live presence
// key under the project, scanning rather than KEYS to stay cluster-safe.
func (s *Store) PresentWorkspaces(ctx context.Context, projectID string) ([]string, error) {
	var out []string
	iter := s.rdb.Scan(ctx, 0, presenceKey(projectID, "*"), 200).Iterator()
	prefix := presenceKey(projectID, "")
	for iter.Next(ctx) {
		out = append(out, iter.Val()[len(prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Internalf(err, "scan presence")
	}
	return out, nil
}
