package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/battleship/internal/dependencies/clock"
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/game"
	"github.com/mcoot/battleship/internal/services/lobby"
	"github.com/mcoot/battleship/internal/storage"
)

// MaxBotIterations is a safety limit for the ProcessBotActions loop.
// Two bots playing each other can never fire more than every cell on both grids.
const MaxBotIterations = 2 * model.GridSize * model.GridSize

// ErrUnknownStrategy is returned when inviting a bot with an unregistered strategy
var ErrUnknownStrategy = errors.New("unknown bot strategy")

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionFire      BotActionType = "fire"
	ActionMatchOver BotActionType = "match_over"
)

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Position model.Position
	Hit      bool
	Sunk     *model.ShipType
}

// Service manages CPU opponents
type Service struct {
	storage         storage.Storage
	lobbyController *lobby.Controller
	gameController  *game.Controller
	strategies      map[string]Strategy
	clock           clock.Clock
	logger          *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	strategies map[string]Strategy,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:         store,
		lobbyController: lobbyController,
		gameController:  gameController,
		strategies:      strategies,
		clock:           clk,
		logger:          logger.With(slog.String("component", "bot-service")),
	}
}

// CreateBotPlayer creates a new bot player and saves it to storage
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	player := &model.Player{
		DisplayName: displayName,
		Level:       model.StartingLevel,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

// InviteBot creates a bot and seats it as the opponent in a waiting match.
// Only the match creator can invite a bot.
func (s *Service) InviteBot(ctx context.Context, matchID model.MatchID, requestingPlayerID model.PlayerID, strategy string) (*model.Player, error) {
	if strategy == "" {
		strategy = model.BotStrategyRandom
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	match, err := s.lobbyController.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.PlayerA != requestingPlayerID {
		return nil, model.ErrNotMatchCreator
	}
	if match.Status != model.MatchStatusWaiting {
		return nil, model.ErrMatchNotJoinable
	}

	displayName := fmt.Sprintf("CPU (%s)", model.BotStrategyDisplayName(strategy))
	bot, err := s.CreateBotPlayer(ctx, displayName, strategy)
	if err != nil {
		return nil, err
	}

	if _, err := s.lobbyController.JoinMatch(ctx, matchID, bot.ID); err != nil {
		return nil, err
	}

	s.logger.Info("bot joined match",
		slog.String("match_id", matchID.String()),
		slog.String("bot_id", bot.ID.String()),
		slog.String("strategy", strategy),
	)

	return bot, nil
}

// ProcessBotActions fires for bots for as long as a bot holds the turn.
// It returns every shot taken so callers can report them.
func (s *Service) ProcessBotActions(ctx context.Context, matchID model.MatchID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		current, ok, err := s.gameController.CurrentTurn(ctx, matchID)
		if err != nil {
			return actions, err
		}
		if !ok {
			break // Match not in progress
		}

		player, err := s.storage.GetPlayer(ctx, current)
		if err != nil {
			return actions, err
		}
		if !player.IsBot {
			break // Human's turn
		}

		v, err := s.gameController.View(ctx, matchID, current)
		if err != nil {
			return actions, err
		}
		target, ok := s.strategyForPlayer(player).ChooseTarget(v)
		if !ok {
			break
		}

		outcome, err := s.gameController.Fire(ctx, matchID, current, target)
		if err != nil {
			return actions, err
		}

		actions = append(actions, BotAction{
			Type:     ActionFire,
			PlayerID: current,
			Position: target,
			Hit:      outcome.Hit,
			Sunk:     outcome.Sunk,
		})
		if outcome.MatchOver {
			actions = append(actions, BotAction{Type: ActionMatchOver, PlayerID: current})
			break
		}
	}

	return actions, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// random if the player's strategy is not registered
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	if st, ok := s.strategies[model.BotStrategyRandom]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return nil
}

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		model.BotStrategyRandom: NewRandomStrategy(rnd),
		model.BotStrategyHunter: NewHunterStrategy(rnd),
	}
}
