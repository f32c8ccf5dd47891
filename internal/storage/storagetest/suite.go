// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage"
)

// Suite runs the storage contract against a backend.
// Embed it and call SetupStorage from SetupTest with a fresh backend.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
	Now     time.Time
}

// SetupStorage resets the shared fixtures for a fresh backend
func (s *Suite) SetupStorage(store storage.Storage) {
	s.Storage = store
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) createPlayer(username string) *model.Player {
	p := &model.Player{
		Username:    username,
		DisplayName: username,
		Level:       model.StartingLevel,
		CreatedAt:   s.Now,
	}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) createStartedMatch() *model.Match {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))
	s.Require().NoError(m.Join(2, s.Now))
	s.Require().NoError(s.Storage.UpdateMatch(s.Ctx, m, model.MatchStatusWaiting))
	return m
}

func destroyer(matchID model.MatchID, playerID model.PlayerID) model.FleetUnit {
	return model.FleetUnit{
		MatchID:  matchID,
		PlayerID: playerID,
		Type:     model.ShipDestroyer,
		Cells:    []model.Position{{Row: 3, Col: 3}, {Row: 3, Col: 4}},
	}
}

// Player tests

func (s *Suite) TestCreatePlayerAssignsIDs() {
	a := s.createPlayer("alice")
	b := s.createPlayer("bob")

	s.NotZero(a.ID)
	s.Greater(b.ID, a.ID)

	got, err := s.Storage.GetPlayer(s.Ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal(model.StartingLevel, got.Level)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, 999)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerByUsername() {
	a := s.createPlayer("alice")

	got, err := s.Storage.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)

	_, err = s.Storage.GetPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDuplicateUsernameRejected() {
	s.createPlayer("alice")

	err := s.Storage.CreatePlayer(s.Ctx, &model.Player{Username: "alice", CreatedAt: s.Now})
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *Suite) TestDuplicateEmailRejected() {
	first := &model.Player{Username: "alice", Email: "a@example.com", CreatedAt: s.Now}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, first))

	err := s.Storage.CreatePlayer(s.Ctx, &model.Player{Username: "bob", Email: "a@example.com", CreatedAt: s.Now})
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *Suite) TestGuestsNeedNoUsername() {
	g1 := &model.Player{DisplayName: "Guest", IsGuest: true, CreatedAt: s.Now}
	g2 := &model.Player{DisplayName: "Guest", IsGuest: true, CreatedAt: s.Now}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, g1))
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, g2))
	s.NotEqual(g1.ID, g2.ID)
}

func (s *Suite) TestUpdatePlayer() {
	p := s.createPlayer("alice")
	p.Level = 4
	p.DisplayName = "Alice"
	s.Require().NoError(s.Storage.UpdatePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(4, got.Level)
	s.Equal("Alice", got.DisplayName)

	err = s.Storage.UpdatePlayer(s.Ctx, &model.Player{ID: 999})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Match tests

func (s *Suite) TestCreateAndGetMatch() {
	m := model.NewMatch(7, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))
	s.NotZero(m.ID)

	got, err := s.Storage.GetMatch(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(7), got.PlayerA)
	s.Equal(model.MatchStatusWaiting, got.Status)
	s.Nil(got.PlayerB)
	s.Nil(got.Winner)
	s.Nil(got.FinishedAt)
	s.WithinDuration(s.Now, got.CreatedAt, 0)
}

func (s *Suite) TestGetMatchNotFound() {
	_, err := s.Storage.GetMatch(s.Ctx, 999)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestUpdateMatchWithExpectedStatus() {
	m := s.createStartedMatch()

	got, err := s.Storage.GetMatch(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusInProgress, got.Status)
	s.Require().NotNil(got.PlayerB)
	s.Equal(model.PlayerID(2), *got.PlayerB)
	s.NotNil(got.StartedAt)
}

func (s *Suite) TestUpdateMatchStaleStatusConflicts() {
	m := s.createStartedMatch()

	stale := m.Clone()
	s.Require().NoError(m.Finish(1, s.Now))
	s.Require().NoError(s.Storage.UpdateMatch(s.Ctx, m, model.MatchStatusInProgress))

	s.Require().NoError(stale.Finish(2, s.Now))
	err := s.Storage.UpdateMatch(s.Ctx, stale, model.MatchStatusInProgress)
	s.ErrorIs(err, model.ErrConflict)

	got, err := s.Storage.GetMatch(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), *got.Winner)
}

func (s *Suite) TestUpdateMatchNotFound() {
	m := model.NewMatch(1, s.Now)
	m.ID = 999
	err := s.Storage.UpdateMatch(s.Ctx, m, model.MatchStatusWaiting)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestConcurrentJoinOnlyOneWins() {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))

	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(joiner model.PlayerID) {
			defer wg.Done()
			attempt := m.Clone()
			if err := attempt.Join(joiner, s.Now); err != nil {
				return
			}
			err := s.Storage.UpdateMatch(s.Ctx, attempt, model.MatchStatusWaiting)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, model.ErrConflict):
				conflicts.Add(1)
			}
		}(model.PlayerID(10 + i))
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(7), conflicts.Load())
}

func (s *Suite) TestFindMatchesNewestFirst() {
	var ids []model.MatchID
	for i := 0; i < 3; i++ {
		m := model.NewMatch(model.PlayerID(i+1), s.Now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))
		ids = append(ids, m.ID)
	}

	got, err := s.Storage.FindMatches(s.Ctx, model.MatchFilter{})
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(ids[2], got[0].ID)
	s.Equal(ids[0], got[2].ID)

	limited, err := s.Storage.FindMatches(s.Ctx, model.MatchFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *Suite) TestFindMatchesFilters() {
	open := model.NewMatch(1, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, open))
	mine := model.NewMatch(2, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, mine))
	started := s.createStartedMatch()

	waiting, err := s.Storage.FindMatches(s.Ctx, model.MatchFilter{
		Statuses:       []model.MatchStatus{model.MatchStatusWaiting},
		ExcludeCreator: 2,
	})
	s.Require().NoError(err)
	s.Require().Len(waiting, 1)
	s.Equal(open.ID, waiting[0].ID)

	involving, err := s.Storage.FindMatches(s.Ctx, model.MatchFilter{Participant: 2})
	s.Require().NoError(err)
	s.Len(involving, 2)

	old, err := s.Storage.FindMatches(s.Ctx, model.MatchFilter{
		Statuses:      []model.MatchStatus{model.MatchStatusInProgress},
		CreatedBefore: s.Now.Add(time.Second),
	})
	s.Require().NoError(err)
	s.Require().Len(old, 1)
	s.Equal(started.ID, old[0].ID)
}

func (s *Suite) TestDeleteMatchCascades() {
	m := model.NewMatch(1, s.Now)
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))
	s.Require().NoError(s.Storage.CreateFleet(s.Ctx, m.ID, 1, []model.FleetUnit{destroyer(m.ID, 1)}))

	s.Require().NoError(s.Storage.DeleteMatch(s.Ctx, m.ID, model.MatchStatusWaiting))

	_, err := s.Storage.GetMatch(s.Ctx, m.ID)
	s.ErrorIs(err, model.ErrMatchNotFound)
	units, err := s.Storage.GetFleet(s.Ctx, m.ID, 1)
	s.Require().NoError(err)
	s.Empty(units)
}

func (s *Suite) TestDeleteMatchChecksStatus() {
	m := s.createStartedMatch()
	err := s.Storage.DeleteMatch(s.Ctx, m.ID, model.MatchStatusWaiting)
	s.ErrorIs(err, model.ErrConflict)

	err = s.Storage.DeleteMatch(s.Ctx, 999, model.MatchStatusWaiting)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// Fleet tests

func (s *Suite) TestCreateAndGetFleet() {
	m := s.createStartedMatch()
	units := []model.FleetUnit{
		{MatchID: m.ID, PlayerID: 1, Type: model.ShipCarrier, Cells: []model.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}}},
		destroyer(m.ID, 1),
	}
	s.Require().NoError(s.Storage.CreateFleet(s.Ctx, m.ID, 1, units))

	got, err := s.Storage.GetFleet(s.Ctx, m.ID, 1)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.ElementsMatch(units, got)

	other, err := s.Storage.GetFleet(s.Ctx, m.ID, 2)
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *Suite) TestCreateFleetTwiceKeepsFirst() {
	m := s.createStartedMatch()
	first := []model.FleetUnit{destroyer(m.ID, 1)}
	s.Require().NoError(s.Storage.CreateFleet(s.Ctx, m.ID, 1, first))

	second := []model.FleetUnit{{MatchID: m.ID, PlayerID: 1, Type: model.ShipDestroyer, Cells: []model.Position{{Row: 9, Col: 8}, {Row: 9, Col: 9}}}}
	err := s.Storage.CreateFleet(s.Ctx, m.ID, 1, second)
	s.ErrorIs(err, model.ErrFleetExists)

	got, err := s.Storage.GetFleet(s.Ctx, m.ID, 1)
	s.Require().NoError(err)
	s.Equal(first, got)
}

// Shot tests

func (s *Suite) TestAppendShotAssignsSequence() {
	m := s.createStartedMatch()
	for i, target := range []model.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}} {
		shot := &model.Shot{MatchID: m.ID, AttackerID: 1, Target: target, CreatedAt: s.Now}
		s.Require().NoError(s.Storage.AppendShot(s.Ctx, shot))
		s.Equal(int64(i+1), shot.Seq)
	}

	shots, err := s.Storage.ListShots(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Len(shots, 3)
	for i, shot := range shots {
		s.Equal(int64(i+1), shot.Seq)
	}
	s.Equal(model.Position{Row: 0, Col: 2}, shots[2].Target)
}

func (s *Suite) TestAppendShotRejectsDuplicateTarget() {
	m := s.createStartedMatch()
	s.Require().NoError(s.Storage.AppendShot(s.Ctx, &model.Shot{MatchID: m.ID, AttackerID: 1, Target: model.Position{Row: 4, Col: 4}, Hit: true}))

	err := s.Storage.AppendShot(s.Ctx, &model.Shot{MatchID: m.ID, AttackerID: 1, Target: model.Position{Row: 4, Col: 4}})
	s.ErrorIs(err, model.ErrAlreadyFired)

	// The other attacker may target the same coordinates on their own turn
	s.Require().NoError(s.Storage.AppendShot(s.Ctx, &model.Shot{MatchID: m.ID, AttackerID: 2, Target: model.Position{Row: 4, Col: 4}}))

	shots, err := s.Storage.ListShots(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Len(shots, 2)
	s.True(shots[0].Hit)
}

func (s *Suite) TestLastShot() {
	m := s.createStartedMatch()

	last, err := s.Storage.LastShot(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Nil(last)

	s.Require().NoError(s.Storage.AppendShot(s.Ctx, &model.Shot{MatchID: m.ID, AttackerID: 1, Target: model.Position{Row: 1, Col: 1}}))
	s.Require().NoError(s.Storage.AppendShot(s.Ctx, &model.Shot{MatchID: m.ID, AttackerID: 2, Target: model.Position{Row: 2, Col: 2}, Hit: true}))

	last, err = s.Storage.LastShot(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Require().NotNil(last)
	s.Equal(model.PlayerID(2), last.AttackerID)
	s.True(last.Hit)
	s.Equal(int64(2), last.Seq)
}

// Locking tests

func (s *Suite) TestMatchLockSerializesCheckThenAct() {
	m := s.createStartedMatch()
	target := model.Position{Row: 5, Col: 5}

	var wg sync.WaitGroup
	var accepted atomic.Int32
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Storage.WithMatchLock(s.Ctx, m.ID, func(ctx context.Context) error {
				shots, err := s.Storage.ListShots(ctx, m.ID)
				if err != nil {
					return err
				}
				if model.HasFired(shots, 1, target) {
					return model.ErrAlreadyFired
				}
				if err := s.Storage.AppendShot(ctx, &model.Shot{MatchID: m.ID, AttackerID: 1, Target: target}); err != nil {
					return err
				}
				accepted.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	s.Equal(int32(1), accepted.Load())
	shots, err := s.Storage.ListShots(s.Ctx, m.ID)
	s.Require().NoError(err)
	s.Len(shots, 1)
}

func (s *Suite) TestMatchLockPropagatesError() {
	m := s.createStartedMatch()
	sentinel := errors.New("stop")

	err := s.Storage.WithMatchLock(s.Ctx, m.ID, func(ctx context.Context) error {
		return sentinel
	})
	s.ErrorIs(err, sentinel)

	// The lock is released afterwards
	err = s.Storage.WithMatchLock(s.Ctx, m.ID, func(ctx context.Context) error { return nil })
	s.NoError(err)
}
