package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MatchSuite struct {
	suite.Suite
	now time.Time
}

func TestMatchSuite(t *testing.T) {
	suite.Run(t, new(MatchSuite))
}

func (s *MatchSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MatchSuite) TestNewMatchIsWaiting() {
	m := NewMatch(1, s.now)
	s.Equal(MatchStatusWaiting, m.Status)
	s.Equal(PlayerID(1), m.PlayerA)
	s.Nil(m.PlayerB)
	s.Nil(m.Winner)
}

func (s *MatchSuite) TestJoinStartsMatch() {
	m := NewMatch(1, s.now)

	s.Require().NoError(m.Join(2, s.now))
	s.Equal(MatchStatusInProgress, m.Status)
	s.Require().NotNil(m.PlayerB)
	s.Equal(PlayerID(2), *m.PlayerB)
	s.NotNil(m.StartedAt)
}

func (s *MatchSuite) TestJoinOwnMatchRejected() {
	m := NewMatch(1, s.now)
	s.ErrorIs(m.Join(1, s.now), ErrCannotJoinOwnMatch)
	s.Equal(MatchStatusWaiting, m.Status)
}

func (s *MatchSuite) TestJoinStartedMatchRejected() {
	m := NewMatch(1, s.now)
	s.Require().NoError(m.Join(2, s.now))
	s.ErrorIs(m.Join(3, s.now), ErrMatchNotJoinable)
	s.Equal(PlayerID(2), *m.PlayerB)
}

func (s *MatchSuite) TestFinishRequiresInProgress() {
	m := NewMatch(1, s.now)
	s.ErrorIs(m.Finish(1, s.now), ErrMatchNotInProgress)

	s.Require().NoError(m.Join(2, s.now))
	s.Require().NoError(m.Finish(2, s.now))
	s.Equal(MatchStatusFinished, m.Status)
	s.Equal(PlayerID(2), *m.Winner)

	s.ErrorIs(m.Finish(1, s.now), ErrMatchFinished)
	s.Equal(PlayerID(2), *m.Winner)
}

func (s *MatchSuite) TestFinishRejectsOutsider() {
	m := NewMatch(1, s.now)
	s.Require().NoError(m.Join(2, s.now))
	s.ErrorIs(m.Finish(3, s.now), ErrNotParticipant)
}

func (s *MatchSuite) TestForfeitAwardsOpponent() {
	m := NewMatch(1, s.now)
	s.Require().NoError(m.Join(2, s.now))

	s.Require().NoError(m.Forfeit(1, s.now))
	s.Equal(MatchStatusFinished, m.Status)
	s.Equal(PlayerID(2), *m.Winner)
	s.NotNil(m.FinishedAt)
}

func (s *MatchSuite) TestForfeitWaitingMatchRejected() {
	m := NewMatch(1, s.now)
	s.ErrorIs(m.Forfeit(1, s.now), ErrMatchNotInProgress)
}

func (s *MatchSuite) TestForfeitByOutsiderRejected() {
	m := NewMatch(1, s.now)
	s.Require().NoError(m.Join(2, s.now))
	s.ErrorIs(m.Forfeit(3, s.now), ErrNotParticipant)
}

func (s *MatchSuite) TestOpponent() {
	m := NewMatch(1, s.now)
	_, ok := m.Opponent(1)
	s.False(ok)

	s.Require().NoError(m.Join(2, s.now))
	opp, ok := m.Opponent(1)
	s.True(ok)
	s.Equal(PlayerID(2), opp)
	opp, ok = m.Opponent(2)
	s.True(ok)
	s.Equal(PlayerID(1), opp)
	_, ok = m.Opponent(3)
	s.False(ok)
}

func (s *MatchSuite) TestCloneIsIndependent() {
	m := NewMatch(1, s.now)
	s.Require().NoError(m.Join(2, s.now))

	c := m.Clone()
	*c.PlayerB = 9
	s.Equal(PlayerID(2), *m.PlayerB)
}

func (s *MatchSuite) TestFilter() {
	m := NewMatch(1, s.now)

	s.True(MatchFilter{}.Matches(m))
	s.True(MatchFilter{Statuses: []MatchStatus{MatchStatusWaiting}}.Matches(m))
	s.False(MatchFilter{Statuses: []MatchStatus{MatchStatusFinished}}.Matches(m))
	s.False(MatchFilter{ExcludeCreator: 1}.Matches(m))
	s.True(MatchFilter{Participant: 1}.Matches(m))
	s.False(MatchFilter{Participant: 2}.Matches(m))
	s.True(MatchFilter{CreatedBefore: s.now.Add(time.Minute)}.Matches(m))
	s.False(MatchFilter{CreatedBefore: s.now}.Matches(m))
}

func (s *MatchSuite) TestKindOf() {
	s.Equal(KindIllegalMove, KindOf(ErrNotYourTurn))
	s.Equal(KindValidation, KindOf(Position{Row: 10}.Validate()))
	s.Equal(KindConflict, KindOf(ErrConflict))
	s.Equal(KindNotFound, KindOf(ErrMatchNotFound))
	s.Equal(KindPlacementExhausted, KindOf(ErrPlacementExhausted))
	s.Equal(KindInternal, KindOf(errUnknown{}))
	s.Equal(ErrorKind(""), KindOf(nil))
}

type errUnknown struct{}

func (errUnknown) Error() string { return "boom" }
