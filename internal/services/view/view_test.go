package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/model"
)

type ViewSuite struct {
	suite.Suite
	now    time.Time
	match  *model.Match
	fleetA []model.FleetUnit
	fleetB []model.FleetUnit
}

func TestViewSuite(t *testing.T) {
	suite.Run(t, new(ViewSuite))
}

func (s *ViewSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.match = model.NewMatch(1, s.now)
	s.match.ID = 7
	s.Require().NoError(s.match.Join(2, s.now))

	s.fleetA = []model.FleetUnit{
		{MatchID: 7, PlayerID: 1, Type: model.ShipDestroyer, Cells: []model.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
		{MatchID: 7, PlayerID: 1, Type: model.ShipCruiser, Cells: []model.Position{{Row: 5, Col: 5}, {Row: 6, Col: 5}, {Row: 7, Col: 5}}},
	}
	s.fleetB = []model.FleetUnit{
		{MatchID: 7, PlayerID: 2, Type: model.ShipDestroyer, Cells: []model.Position{{Row: 9, Col: 8}, {Row: 9, Col: 9}}},
		{MatchID: 7, PlayerID: 2, Type: model.ShipSubmarine, Cells: []model.Position{{Row: 2, Col: 2}, {Row: 2, Col: 3}, {Row: 2, Col: 4}}},
	}
}

func fired(seq int64, attacker model.PlayerID, row, col int, hit bool) model.Shot {
	return model.Shot{MatchID: 7, AttackerID: attacker, Target: model.Position{Row: row, Col: col}, Hit: hit, Seq: seq}
}

func (s *ViewSuite) TestFreshMatch() {
	v, err := Project(s.match, 1, s.fleetA, s.fleetB, nil)
	s.Require().NoError(err)

	s.Equal(model.MatchStatusInProgress, v.Status)
	s.True(v.YourTurn)
	s.Require().NotNil(v.OpponentID)
	s.Equal(model.PlayerID(2), *v.OpponentID)
	s.Equal(5, v.OwnGrid.Count(model.CellShip))
	s.Equal(0, v.TargetGrid.Count(model.CellShip))
	s.Equal(2, v.ShipsRemaining)
	s.Equal(5, v.EnemyShipsRemaining)
	s.Nil(v.LastShot)
}

func (s *ViewSuite) TestEnemyShipsAreHidden() {
	shots := []model.Shot{fired(1, 1, 9, 8, true)}

	v, err := Project(s.match, 1, s.fleetA, s.fleetB, shots)
	s.Require().NoError(err)

	s.Equal(model.CellHit, v.TargetGrid.Get(model.Position{Row: 9, Col: 8}))
	s.Equal(model.CellUnknown, v.TargetGrid.Get(model.Position{Row: 9, Col: 9}))
	s.Equal(model.CellUnknown, v.TargetGrid.Get(model.Position{Row: 2, Col: 2}))
	s.Empty(v.EnemySunk)
	s.Equal(1, v.ShotsFired)
}

func (s *ViewSuite) TestSunkEnemyReportedByTypeOnly() {
	shots := []model.Shot{
		fired(1, 1, 9, 8, true),
		fired(2, 1, 9, 9, true),
	}

	v, err := Project(s.match, 1, s.fleetA, s.fleetB, shots)
	s.Require().NoError(err)

	s.Equal([]model.ShipType{model.ShipDestroyer}, v.EnemySunk)
	s.Equal(4, v.EnemyShipsRemaining)
	s.Equal(2, v.TargetGrid.Count(model.CellSunk))
	s.True(v.YourTurn)
}

func (s *ViewSuite) TestIncomingShotsOnOwnGrid() {
	shots := []model.Shot{
		fired(1, 1, 4, 4, false),
		fired(2, 2, 0, 0, true),
		fired(3, 2, 0, 1, true),
		fired(4, 2, 3, 3, false),
	}

	v, err := Project(s.match, 1, s.fleetA, s.fleetB, shots)
	s.Require().NoError(err)

	s.Equal(model.CellSunk, v.OwnGrid.Get(model.Position{Row: 0, Col: 0}))
	s.Equal(model.CellMiss, v.OwnGrid.Get(model.Position{Row: 3, Col: 3}))
	s.Equal(model.CellMiss, v.TargetGrid.Get(model.Position{Row: 4, Col: 4}))
	s.Equal(2, v.ShotsReceived)
	s.Equal(1, v.ShipsRemaining)

	s.Require().Len(v.Fleet, 2)
	s.True(v.Fleet[0].Sunk)
	s.Equal(2, v.Fleet[0].Hits)
	s.False(v.Fleet[1].Sunk)

	// Opponent missed last, so it is our turn again
	s.True(v.YourTurn)
	s.Require().NotNil(v.LastShot)
	s.Equal(int64(4), v.LastShot.Seq)
}

func (s *ViewSuite) TestOpponentSeesTheirOwnSide() {
	shots := []model.Shot{fired(1, 1, 2, 2, true)}

	v, err := Project(s.match, 2, s.fleetB, s.fleetA, shots)
	s.Require().NoError(err)

	s.False(v.YourTurn)
	s.Equal(model.CellHit, v.OwnGrid.Get(model.Position{Row: 2, Col: 2}))
	s.Equal(1, v.ShotsReceived)
	s.Equal(0, v.ShotsFired)
}

func (s *ViewSuite) TestFinishedMatchHasNoTurn() {
	s.Require().NoError(s.match.Finish(1, s.now))

	v, err := Project(s.match, 2, s.fleetB, s.fleetA, nil)
	s.Require().NoError(err)
	s.Nil(v.Turn)
	s.False(v.YourTurn)
	s.Require().NotNil(v.Winner)
	s.Equal(model.PlayerID(1), *v.Winner)
}

func (s *ViewSuite) TestWaitingMatchForCreator() {
	waiting := model.NewMatch(1, s.now)
	v, err := Project(waiting, 1, nil, nil, nil)
	s.Require().NoError(err)
	s.Nil(v.OpponentID)
	s.Nil(v.Turn)
}

func (s *ViewSuite) TestOutsiderRejected() {
	_, err := Project(s.match, 3, nil, nil, nil)
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ViewSuite) TestOutOfTurnLogRejected() {
	shots := []model.Shot{
		fired(1, 1, 4, 4, false),
		fired(2, 1, 4, 5, false),
	}

	_, err := Project(s.match, 1, s.fleetA, s.fleetB, shots)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ViewSuite) TestFinishedMatchWithShots() {
	shots := []model.Shot{
		fired(1, 1, 9, 8, true),
		fired(2, 1, 9, 9, true),
		fired(3, 1, 4, 4, false),
		fired(4, 2, 0, 0, true),
	}
	s.Require().NoError(s.match.Finish(2, s.now))

	v, err := Project(s.match, 1, s.fleetA, s.fleetB, shots)
	s.Require().NoError(err)
	s.Nil(v.Turn)
	s.Equal(3, v.ShotsFired)
	s.Equal(1, v.ShotsReceived)
}
