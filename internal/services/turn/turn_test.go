package turn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/model"
)

type TurnSuite struct {
	suite.Suite
	match *model.Match
}

func TestTurnSuite(t *testing.T) {
	suite.Run(t, new(TurnSuite))
}

func (s *TurnSuite) SetupTest() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.match = model.NewMatch(1, now)
	s.Require().NoError(s.match.Join(2, now))
}

func shot(seq int64, attacker model.PlayerID, hit bool) model.Shot {
	return model.Shot{MatchID: 1, AttackerID: attacker, Seq: seq, Hit: hit}
}

func (s *TurnSuite) TestPlayerAStarts() {
	current, ok := Current(s.match, nil)
	s.True(ok)
	s.Equal(model.PlayerID(1), current)
	s.True(IsPlayersTurn(s.match, nil, 1))
	s.False(IsPlayersTurn(s.match, nil, 2))
}

func (s *TurnSuite) TestHitKeepsTurn() {
	last := shot(1, 1, true)
	s.True(IsPlayersTurn(s.match, &last, 1))
	s.False(IsPlayersTurn(s.match, &last, 2))
}

func (s *TurnSuite) TestMissPassesTurn() {
	last := shot(1, 1, false)
	s.True(IsPlayersTurn(s.match, &last, 2))

	last = shot(2, 2, false)
	s.True(IsPlayersTurn(s.match, &last, 1))
}

func (s *TurnSuite) TestOutsidersNeverHaveTheTurn() {
	s.False(IsPlayersTurn(s.match, nil, 99))

	stray := shot(1, 99, true)
	_, ok := Current(s.match, &stray)
	s.False(ok)
}

func (s *TurnSuite) TestNoTurnOutsideInProgress() {
	waiting := model.NewMatch(1, time.Now())
	_, ok := Current(waiting, nil)
	s.False(ok)

	s.Require().NoError(s.match.Finish(1, time.Now()))
	_, ok = Current(s.match, nil)
	s.False(ok)
}

func (s *TurnSuite) TestReplayAcceptsLegalLog() {
	shots := []model.Shot{
		shot(1, 1, true),
		shot(2, 1, false),
		shot(3, 2, true),
		shot(4, 2, true),
		shot(5, 2, false),
		shot(6, 1, false),
	}
	next, ok, err := Replay(s.match, shots)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(model.PlayerID(2), next)
}

func (s *TurnSuite) TestReplayRejectsOutOfTurnShot() {
	shots := []model.Shot{
		shot(1, 1, false),
		shot(2, 1, false),
	}
	_, _, err := Replay(s.match, shots)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *TurnSuite) TestReplayOfFinishedMatch() {
	shots := []model.Shot{
		shot(1, 1, false),
		shot(2, 2, true),
		shot(3, 2, true),
	}
	s.Require().NoError(s.match.Finish(2, s.now))

	next, ok, err := Replay(s.match, shots)
	s.Require().NoError(err)
	s.False(ok)
	s.Zero(next)

	// Out-of-turn shots are still caught after the match ends
	_, _, err = Replay(s.match, append(shots, shot(4, 1, false)))
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *TurnSuite) TestReplayOfEmptyLog() {
	next, ok, err := Replay(s.match, nil)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(model.PlayerID(1), next)
}
