package ephemeral

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beadhub/beadhub/internal/apperr"
)

func reservationKey(projectID, repo, path string) string {
	return projectKey("reservation", projectID, repo, path)
}

var errNotOwner = errors.New("not reservation owner")

// reservationRenew is a Lua script so the ownership check and the TTL
// refresh happen atomically: a renew from a workspace that no longer holds
// the reservation must not extend someone else's lock (spec.md §4.C6).
var reservationRenew = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

var reservationRelease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireReservation sets the path lock with NX so a second claimant never
// clobbers the first; returns (false, currentOwner) on conflict.
func (s *Store) AcquireReservation(ctx context.Context, projectID, repo, path, workspaceID string, ttl time.Duration) (bool, string, error) {
	key := reservationKey(projectID, repo, path)
	ok, err := s.rdb.SetNX(ctx, key, workspaceID, ttl).Result()
	if err != nil {
		return false, "", apperr.Internalf(err, "acquire reservation")
	}
	if ok {
		return true, workspaceID, nil
	}
	owner, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, "", apperr.Internalf(err, "read reservation owner")
	}
	return false, owner, nil
}

func (s *Store) RenewReservation(ctx context.Context, projectID, repo, path, workspaceID string, ttl time.Duration) (bool, error) {
	key := reservationKey(projectID, repo, path)
	res, err := reservationRenew.Run(ctx, s.rdb, []string{key}, workspaceID, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, apperr.Internalf(err, "renew reservation")
	}
	return res == 1, nil
}

func (s *Store) ReleaseReservation(ctx context.Context, projectID, repo, path, workspaceID string) (bool, error) {
	key := reservationKey(projectID, repo, path)
	res, err := reservationRelease.Run(ctx, s.rdb, []string{key}, workspaceID).Int64()
	if err != nil {
		return false, apperr.Internalf(err, "release reservation")
	}
	return res == 1, nil
}

// ReservationOwner reports the current holder of a path, or "" if free.
func (s *Store) ReservationOwner(ctx context.Context, projectID, repo, path string) (string, error) {
	owner, err := s.rdb.Get(ctx, reservationKey(projectID, repo, path)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Internalf(err, "read reservation")
	}
	return owner, nil
}

// ListReservations scans all active reservations under a project, optionally
// filtered to one repo, for the list endpoint in spec.md §6.
func (s *Store) ListReservations(ctx context.Context, projectID, repo string) (map[string]string, error) {
	pattern := reservationKey(projectID, repo, "*")
	if repo == "" {
		pattern = reservationKey(projectID, "*")
	}
	out := map[string]string{}
	iter := s.rdb.Scan(ctx, 0, pattern, 500).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		owner, err := s.rdb.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, apperr.Internalf(err, "read reservation during scan")
		}
		out[key] = owner
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Internalf(err, "scan reservations")
	}
	return out, nil
}
