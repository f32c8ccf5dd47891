package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.LockRetryInterval = 2 * time.Millisecond

	s.storage = NewWithClient(client, cfg)
	s.SetupStorage(s.storage)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestKeysUsePrefix() {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.storage.CreateMatch(s.Ctx, m))

	s.True(s.mini.Exists("bsgame:match:1"))
	members, err := s.mini.ZMembers(matchIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"1"}, members)
}

func (s *StorageSuite) TestFinishedMatchKeepsNoExpiry() {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.storage.CreateMatch(s.Ctx, m))
	s.Require().NoError(m.Join(2, s.Now))
	s.Require().NoError(s.storage.UpdateMatch(s.Ctx, m, model.MatchStatusWaiting))
	s.Require().NoError(m.Finish(2, s.Now))
	s.Require().NoError(s.storage.UpdateMatch(s.Ctx, m, model.MatchStatusInProgress))

	s.mini.FastForward(365 * 24 * time.Hour)

	s.Zero(s.mini.TTL(matchKey(m.ID)))
	found, err := s.storage.FindMatches(s.Ctx, model.MatchFilter{Participant: 1})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(model.MatchStatusFinished, found[0].Status)
}

func (s *StorageSuite) TestShotCellsTrackedPerAttacker() {
	shot := &model.Shot{MatchID: 1, AttackerID: 3, Target: model.Position{Row: 2, Col: 7}}
	s.Require().NoError(s.storage.AppendShot(s.Ctx, shot))

	members, err := s.mini.Members(shotCellsKey(1, 3))
	s.Require().NoError(err)
	s.Equal([]string{"2,7"}, members)
}

func (s *StorageSuite) TestFailedShotWriteLeavesNoTrace() {
	// A non-list value makes the RPUSH step fail
	s.Require().NoError(s.mini.Set(shotsKey(1), "not-a-list"))

	shot := &model.Shot{MatchID: 1, AttackerID: 3, Target: model.Position{Row: 4, Col: 4}}
	s.Require().Error(s.storage.AppendShot(s.Ctx, shot))
	s.False(s.mini.Exists(shotCellsKey(1, 3)))

	s.mini.Del(shotsKey(1))
	shots, err := s.storage.ListShots(s.Ctx, 1)
	s.Require().NoError(err)
	s.Empty(shots)

	// The same target can be fired at once the store recovers
	s.Require().NoError(s.storage.AppendShot(s.Ctx, shot))
	s.Equal(int64(1), shot.Seq)
}

func (s *StorageSuite) TestShotSeqFollowsLogOrder() {
	for i, attacker := range []model.PlayerID{3, 4, 3} {
		shot := &model.Shot{MatchID: 1, AttackerID: attacker, Target: model.Position{Row: i, Col: 0}}
		s.Require().NoError(s.storage.AppendShot(s.Ctx, shot))
		s.Equal(int64(i+1), shot.Seq)
	}

	shots, err := s.storage.ListShots(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(shots, 3)
	for i, shot := range shots {
		s.Equal(int64(i+1), shot.Seq)
		s.Equal(i, shot.Target.Row)
	}
}

func (s *StorageSuite) TestFindMatchesSkipsDeletedEntries() {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.storage.CreateMatch(s.Ctx, m))
	s.mini.Del(matchKey(m.ID))

	got, err := s.storage.FindMatches(s.Ctx, model.MatchFilter{})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StorageSuite) TestLockHeldByOtherTimesOut() {
	s.storage.cfg.LockWait = 20 * time.Millisecond
	s.Require().NoError(s.mini.Set(matchLockKey(1), "someone-else"))

	called := false
	err := s.storage.WithMatchLock(s.Ctx, 1, func(ctx context.Context) error {
		called = true
		return nil
	})
	s.ErrorIs(err, model.ErrLockTimeout)
	s.False(called)

	// A foreign lock is never released by us
	got, err := s.mini.Get(matchLockKey(1))
	s.Require().NoError(err)
	s.Equal("someone-else", got)
}

func (s *StorageSuite) TestLockReleasedAfterUse() {
	err := s.storage.WithMatchLock(s.Ctx, 1, func(ctx context.Context) error {
		s.True(s.mini.Exists(matchLockKey(1)))
		return nil
	})
	s.Require().NoError(err)
	s.False(s.mini.Exists(matchLockKey(1)))
}

func (s *StorageSuite) TestLockExpiresForCrashedHolder() {
	s.Require().NoError(s.mini.Set(matchLockKey(1), "crashed"))
	s.mini.SetTTL(matchLockKey(1), time.Second)
	s.mini.FastForward(2 * time.Second)

	err := s.storage.WithMatchLock(s.Ctx, 1, func(ctx context.Context) error { return nil })
	s.NoError(err)
}

func (s *StorageSuite) TestLockRefreshedWhileHeld() {
	s.storage.cfg.LockTTL = 30 * time.Millisecond

	err := s.storage.WithMatchLock(s.Ctx, 1, func(ctx context.Context) error {
		// Simulate the key being about to expire; the holder must push it back out
		s.mini.SetTTL(matchLockKey(1), time.Millisecond)
		s.Eventually(func() bool {
			return s.mini.TTL(matchLockKey(1)) == 30*time.Millisecond
		}, time.Second, 5*time.Millisecond)
		return nil
	})
	s.Require().NoError(err)
	s.False(s.mini.Exists(matchLockKey(1)))
}

func (s *StorageSuite) TestLockNotRefreshedOnceTaken() {
	s.storage.cfg.LockTTL = 30 * time.Millisecond

	err := s.storage.WithMatchLock(s.Ctx, 1, func(ctx context.Context) error {
		// Another holder took over after our key expired
		s.Require().NoError(s.mini.Set(matchLockKey(1), "someone-else"))
		time.Sleep(50 * time.Millisecond)
		s.Equal(time.Duration(0), s.mini.TTL(matchLockKey(1)))
		return nil
	})
	s.Require().NoError(err)

	got, err := s.mini.Get(matchLockKey(1))
	s.Require().NoError(err)
	s.Equal("someone-else", got)
}
