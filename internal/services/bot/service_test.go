package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/dependencies/mocks"
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/bot"
	"github.com/mcoot/battleship/internal/services/fleet"
	"github.com/mcoot/battleship/internal/services/game"
	"github.com/mcoot/battleship/internal/services/lobby"
	"github.com/mcoot/battleship/internal/storage/memory"
	"github.com/mcoot/battleship/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store     *memory.Storage
	mockClock *mocks.MockClock

	gameController  *game.Controller
	lobbyController *lobby.Controller
	botService      *bot.Service

	ctx   context.Context
	human *model.Player
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	rnd := random.NewSeeded(42)
	fleets := fleet.New(s.store, fleet.NewGenerator(rnd), logger)
	s.gameController = game.NewController(s.store, fleets, s.mockClock, logger)
	s.lobbyController = lobby.NewController(s.store, fleets, s.mockClock, logger)
	s.botService = bot.NewService(s.store, s.lobbyController, s.gameController, bot.DefaultStrategies(rnd), s.mockClock, logger)

	s.human = &model.Player{DisplayName: "Alice", IsGuest: true, CreatedAt: s.mockClock.Now()}
	s.Require().NoError(s.store.CreatePlayer(s.ctx, s.human))
}

// missFor returns a cell on the bot's grid that holds no ship
func (s *ServiceSuite) missFor(matchID model.MatchID, botID model.PlayerID) model.Position {
	units, err := s.store.GetFleet(s.ctx, matchID, botID)
	s.Require().NoError(err)
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			pos := model.Position{Row: row, Col: col}
			if _, ok := model.UnitAt(units, pos); !ok {
				return pos
			}
		}
	}
	s.FailNow("no empty cell on bot grid")
	return model.Position{}
}

func (s *ServiceSuite) TestCreateBotPlayer() {
	player, err := s.botService.CreateBotPlayer(s.ctx, "Bot 1", model.BotStrategyHunter)
	s.Require().NoError(err)

	s.NotZero(player.ID)
	s.Equal("Bot 1", player.DisplayName)
	s.True(player.IsBot)
	s.True(player.IsGuest)
	s.Equal(model.BotStrategyHunter, player.BotStrategy)

	retrieved, err := s.store.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(retrieved.IsBot)
}

func (s *ServiceSuite) TestInviteBotStartsMatch() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)

	b, err := s.botService.InviteBot(s.ctx, match.ID, s.human.ID, "")
	s.Require().NoError(err)
	s.Equal("CPU (Random)", b.DisplayName)

	started, err := s.lobbyController.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusInProgress, started.Status)
	s.Require().NotNil(started.PlayerB)
	s.Equal(b.ID, *started.PlayerB)
}

func (s *ServiceSuite) TestInviteBotRejectsUnknownStrategy() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)

	_, err = s.botService.InviteBot(s.ctx, match.ID, s.human.ID, "psychic")
	s.ErrorIs(err, bot.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestInviteBotOnlyByCreator() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)

	other := &model.Player{DisplayName: "Bob", IsGuest: true}
	s.Require().NoError(s.store.CreatePlayer(s.ctx, other))

	_, err = s.botService.InviteBot(s.ctx, match.ID, other.ID, model.BotStrategyRandom)
	s.ErrorIs(err, model.ErrNotMatchCreator)
}

func (s *ServiceSuite) TestInviteBotIntoStartedMatch() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)
	_, err = s.botService.InviteBot(s.ctx, match.ID, s.human.ID, model.BotStrategyRandom)
	s.Require().NoError(err)

	_, err = s.botService.InviteBot(s.ctx, match.ID, s.human.ID, model.BotStrategyRandom)
	s.ErrorIs(err, model.ErrMatchNotJoinable)
}

func (s *ServiceSuite) TestProcessBotActionsWaitsForHuman() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)
	_, err = s.botService.InviteBot(s.ctx, match.ID, s.human.ID, model.BotStrategyRandom)
	s.Require().NoError(err)

	// The creator fires first
	actions, err := s.botService.ProcessBotActions(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsFiresUntilTurnPasses() {
	match, err := s.lobbyController.CreateMatch(s.ctx, s.human.ID)
	s.Require().NoError(err)
	b, err := s.botService.InviteBot(s.ctx, match.ID, s.human.ID, model.BotStrategyHunter)
	s.Require().NoError(err)

	outcome, err := s.gameController.Fire(s.ctx, match.ID, s.human.ID, s.missFor(match.ID, b.ID))
	s.Require().NoError(err)
	s.False(outcome.Hit)

	actions, err := s.botService.ProcessBotActions(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(actions)

	for i, a := range actions {
		s.Equal(b.ID, a.PlayerID)
		if a.Type == bot.ActionFire && i < len(actions)-1 {
			s.True(a.Hit, "only a hit keeps the turn")
		}
	}

	current, ok, err := s.gameController.CurrentTurn(s.ctx, match.ID)
	s.Require().NoError(err)
	if ok {
		s.Equal(s.human.ID, current)
	}
}

func (s *ServiceSuite) TestBotsPlayEachOutToAWinner() {
	first, err := s.botService.CreateBotPlayer(s.ctx, "Hunter", model.BotStrategyHunter)
	s.Require().NoError(err)
	second, err := s.botService.CreateBotPlayer(s.ctx, "Random", model.BotStrategyRandom)
	s.Require().NoError(err)

	match, err := s.lobbyController.CreateMatch(s.ctx, first.ID)
	s.Require().NoError(err)
	_, err = s.lobbyController.JoinMatch(s.ctx, match.ID, second.ID)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(actions)
	s.Equal(bot.ActionMatchOver, actions[len(actions)-1].Type)

	finished, err := s.lobbyController.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusFinished, finished.Status)
	s.Require().NotNil(finished.Winner)
	s.Equal(actions[len(actions)-1].PlayerID, *finished.Winner)
}
