package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/battleship/internal/dependencies/clock"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/fleet"
	"github.com/mcoot/battleship/internal/services/turn"
	"github.com/mcoot/battleship/internal/services/view"
	"github.com/mcoot/battleship/internal/storage"
)

// FireOutcome is the result of an accepted shot
type FireOutcome struct {
	Shot      model.Shot
	Hit       bool
	Sunk      *model.ShipType // set when this shot sank a ship
	MatchOver bool
	Winner    *model.PlayerID
}

// Controller resolves shots and exposes per-player match state
type Controller struct {
	storage storage.Storage
	fleets  *fleet.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	fleets *fleet.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		fleets:  fleets,
		clock:   clock,
		logger:  logger,
	}
}

// GetMatch retrieves a match by ID
func (c *Controller) GetMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, matchID)
}

// Fire resolves a shot by attackerID at pos.
//
// Checks run in order under the match lock: the match exists and is in
// progress, it is the attacker's turn, and the attacker has not already fired
// at pos. An accepted shot is always recorded. If it sinks the last enemy
// ship the match is finished with the attacker as winner.
func (c *Controller) Fire(ctx context.Context, matchID model.MatchID, attackerID model.PlayerID, pos model.Position) (*FireOutcome, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	if attackerID == 0 {
		return nil, model.ErrInvalidPlayerID
	}

	var outcome *FireOutcome
	err := c.storage.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		match, err := c.storage.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := match.RequireInProgress(); err != nil {
			return err
		}

		shots, err := c.storage.ListShots(ctx, matchID)
		if err != nil {
			return err
		}
		if !turn.IsPlayersTurn(match, model.LastOf(shots), attackerID) {
			return model.ErrNotYourTurn
		}
		if model.HasFired(shots, attackerID, pos) {
			return model.ErrAlreadyFired
		}

		opponent, _ := match.Opponent(attackerID)
		enemyFleet, err := c.fleets.EnsureFleet(ctx, matchID, opponent)
		if err != nil {
			return err
		}

		unit, hit := model.UnitAt(enemyFleet, pos)
		now := c.clock.Now()
		shot := &model.Shot{
			MatchID:    matchID,
			AttackerID: attackerID,
			Target:     pos,
			Hit:        hit,
			CreatedAt:  now,
		}
		if err := c.storage.AppendShot(ctx, shot); err != nil {
			return err
		}

		outcome = &FireOutcome{Shot: *shot, Hit: hit}
		if !hit {
			return nil
		}

		hits := model.HitSet(append(shots, *shot), attackerID)
		if unit.IsSunk(hits) {
			sunk := unit.Type
			outcome.Sunk = &sunk
		}
		if !model.AllSunk(enemyFleet, hits) {
			return nil
		}

		if err := match.Finish(attackerID, now); err != nil {
			return err
		}
		if err := c.storage.UpdateMatch(ctx, match, model.MatchStatusInProgress); err != nil {
			c.logger.Error("failed to finish match",
				slog.String("match_id", matchID.String()),
				slog.String("error", err.Error()),
			)
			return err
		}
		outcome.MatchOver = true
		outcome.Winner = match.Winner

		c.logger.Info("match won",
			slog.String("match_id", matchID.String()),
			slog.String("winner", attackerID.String()),
			slog.Int64("shots", shot.Seq),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CurrentTurn returns who may fire next in the match
func (c *Controller) CurrentTurn(ctx context.Context, matchID model.MatchID) (model.PlayerID, bool, error) {
	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return 0, false, err
	}
	last, err := c.storage.LastShot(ctx, matchID)
	if err != nil {
		return 0, false, err
	}
	current, ok := turn.Current(match, last)
	return current, ok, nil
}

// View returns the match as viewerID is allowed to see it.
// The viewer's fleet is placed on first access once the match has started.
func (c *Controller) View(ctx context.Context, matchID model.MatchID, viewerID model.PlayerID) (*view.PlayerView, error) {
	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsParticipant(viewerID) {
		return nil, model.ErrNotParticipant
	}

	var ownFleet []model.FleetUnit
	if match.Status == model.MatchStatusInProgress {
		ownFleet, err = c.fleets.EnsureFleet(ctx, matchID, viewerID)
	} else {
		ownFleet, err = c.fleets.GetFleet(ctx, matchID, viewerID)
	}
	if err != nil {
		return nil, err
	}

	var enemyFleet []model.FleetUnit
	if opponent, ok := match.Opponent(viewerID); ok {
		enemyFleet, err = c.fleets.GetFleet(ctx, matchID, opponent)
		if err != nil {
			return nil, err
		}
	}

	shots, err := c.storage.ListShots(ctx, matchID)
	if err != nil {
		return nil, err
	}

	return view.Project(match, viewerID, ownFleet, enemyFleet, shots)
}
