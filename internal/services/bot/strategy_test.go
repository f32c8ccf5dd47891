package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/dependencies/mocks"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/bot"
	"github.com/mcoot/battleship/internal/services/view"
)

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	random     *bot.RandomStrategy
	hunter     *bot.HunterStrategy
	view       *view.PlayerView
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.random = bot.NewRandomStrategy(s.mockRandom)
	s.hunter = bot.NewHunterStrategy(s.mockRandom)
	s.view = &view.PlayerView{TargetGrid: model.NewBoard()}
}

func (s *StrategySuite) mark(state model.CellState, cells ...model.Position) {
	for _, c := range cells {
		s.view.TargetGrid.Set(c, state)
	}
}

func (s *StrategySuite) TestRandomPicksFromOpenGrid() {
	// Index 11 = (1, 1) on a 10x10 grid
	s.mockRandom.QueueIntn(11)

	pos, ok := s.random.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 1, Col: 1}, pos)
}

func (s *StrategySuite) TestRandomSkipsFiredCells() {
	s.mark(model.CellMiss, model.Position{Row: 0, Col: 0})
	s.mark(model.CellHit, model.Position{Row: 0, Col: 1})
	s.mockRandom.QueueIntn(0)

	pos, ok := s.random.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 0, Col: 2}, pos)
}

func (s *StrategySuite) TestRandomReportsFullGrid() {
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			s.mark(model.CellMiss, model.Position{Row: row, Col: col})
		}
	}

	_, ok := s.random.ChooseTarget(s.view)
	s.False(ok)
}

func (s *StrategySuite) TestHunterSearchesRandomlyWithoutHits() {
	s.mockRandom.QueueIntn(5)

	pos, ok := s.hunter.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 0, Col: 5}, pos)
}

func (s *StrategySuite) TestHunterTargetsNeighboursOfHit() {
	s.mark(model.CellHit, model.Position{Row: 5, Col: 5})
	s.mark(model.CellMiss, model.Position{Row: 4, Col: 5})
	// Remaining candidates: below, left, right
	s.mockRandom.QueueIntn(1)

	pos, ok := s.hunter.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 5, Col: 4}, pos)
}

func (s *StrategySuite) TestHunterStaysInsideGrid() {
	s.mark(model.CellHit, model.Position{Row: 0, Col: 0})
	s.mockRandom.QueueIntn(0, 1)

	first, ok := s.hunter.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 1, Col: 0}, first)

	second, ok := s.hunter.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 0, Col: 1}, second)
}

func (s *StrategySuite) TestHunterIgnoresSunkShips() {
	s.mark(model.CellSunk, model.Position{Row: 5, Col: 5}, model.Position{Row: 5, Col: 6})
	s.mockRandom.QueueIntn(0)

	pos, ok := s.hunter.ChooseTarget(s.view)
	s.True(ok)
	s.Equal(model.Position{Row: 0, Col: 0}, pos)
}

func (s *StrategySuite) TestDefaultStrategiesCoverEveryName() {
	strategies := bot.DefaultStrategies(s.mockRandom)
	for _, name := range model.ValidBotStrategies() {
		s.Contains(strategies, name)
	}
}
