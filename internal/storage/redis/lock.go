package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship/internal/model"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the lock TTL only if it still holds our token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// WithMatchLock runs fn while holding a per-match lock key.
// The key expires after LockTTL so a crashed holder cannot block the match
// forever; a live holder refreshes it every LockTTL/3 until fn returns.
func (s *Storage) WithMatchLock(ctx context.Context, matchID model.MatchID, fn func(ctx context.Context) error) error {
	key := matchLockKey(matchID)
	token := uuid.NewString()

	if err := s.acquireLock(ctx, key, token); err != nil {
		return err
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.keepLock(ctx, key, token, done)
	}()

	defer func() {
		close(done)
		<-stopped
		_ = releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}

// keepLock extends the lock until done is closed
func (s *Storage) keepLock(ctx context.Context, key, token string, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.LockTTL / 3)
	defer ticker.Stop()

	ttl := s.cfg.LockTTL.Milliseconds()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = extendScript.Run(context.WithoutCancel(ctx), s.client, []string{key}, token, ttl).Err()
		}
	}
}

func (s *Storage) acquireLock(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(s.cfg.LockWait)
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.cfg.LockTTL).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return model.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}
