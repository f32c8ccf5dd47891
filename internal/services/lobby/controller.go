package lobby

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/battleship/internal/dependencies/clock"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/fleet"
	"github.com/mcoot/battleship/internal/storage"
)

// DefaultListLimit caps match listings when the caller gives no limit
const DefaultListLimit = 50

// Stats summarises a player's match history
type Stats struct {
	Played     int // matches that got past waiting
	Wins       int
	Losses     int
	InProgress int
}

// Controller manages the match lifecycle: create, join, forfeit and listing
type Controller struct {
	storage storage.Storage
	fleets  *fleet.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new lobby Controller
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

// CreateMatch opens a new match owned by playerID, waiting for an opponent
func (c *Controller) CreateMatch(ctx context.Context, playerID model.PlayerID) (*model.Match, error) {
	if playerID == 0 {
		return nil, model.ErrInvalidPlayerID
	}
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	match := model.NewMatch(playerID, c.clock.Now())
	if err := c.storage.CreateMatch(ctx, match); err != nil {
		c.logger.Error("failed to create match",
			slog.String("player_id", playerID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("match created",
		slog.String("match_id", match.ID.String()),
		slog.String("player_id", playerID.String()),
	)
	return match, nil
}

// GetMatch retrieves a match by ID
func (c *Controller) GetMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, matchID)
}

// JoinMatch seats playerID as the second player and starts the match.
// Both fleets are placed before returning.
func (c *Controller) JoinMatch(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) (*model.Match, error) {
	if playerID == 0 {
		return nil, model.ErrInvalidPlayerID
	}
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	var joined *model.Match
	err := c.storage.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		match, err := c.storage.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := match.Join(playerID, c.clock.Now()); err != nil {
			return err
		}
		if err := c.storage.UpdateMatch(ctx, match, model.MatchStatusWaiting); err != nil {
			return err
		}

		for _, p := range match.Participants() {
			if _, err := c.fleets.EnsureFleet(ctx, matchID, p); err != nil {
				return err
			}
		}
		joined = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("match joined",
		slog.String("match_id", matchID.String()),
		slog.String("player_id", playerID.String()),
	)
	return joined, nil
}

// Forfeit ends an in-progress match, awarding it to the other participant
func (c *Controller) Forfeit(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) (*model.Match, error) {
	var finished *model.Match
	err := c.storage.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		match, err := c.storage.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := match.Forfeit(playerID, c.clock.Now()); err != nil {
			return err
		}
		if err := c.storage.UpdateMatch(ctx, match, model.MatchStatusInProgress); err != nil {
			return err
		}
		finished = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("match forfeited",
		slog.String("match_id", matchID.String()),
		slog.String("player_id", playerID.String()),
	)
	return finished, nil
}

// ListOpenMatches returns waiting matches that viewerID could join, newest first
func (c *Controller) ListOpenMatches(ctx context.Context, viewerID model.PlayerID, limit int) ([]*model.Match, error) {
	return c.storage.FindMatches(ctx, model.MatchFilter{
		Statuses:       []model.MatchStatus{model.MatchStatusWaiting},
		ExcludeCreator: viewerID,
		Limit:          listLimit(limit),
	})
}

// ListPlayerMatches returns every match playerID takes part in, newest first
func (c *Controller) ListPlayerMatches(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Match, error) {
	return c.storage.FindMatches(ctx, model.MatchFilter{
		Participant: playerID,
		Limit:       listLimit(limit),
	})
}

func listLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}

// PlayerStats counts a player's results across all their matches
func (c *Controller) PlayerStats(ctx context.Context, playerID model.PlayerID) (*Stats, error) {
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	matches, err := c.storage.FindMatches(ctx, model.MatchFilter{Participant: playerID})
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, m := range matches {
		switch m.Status {
		case model.MatchStatusInProgress:
			stats.Played++
			stats.InProgress++
		case model.MatchStatusFinished:
			stats.Played++
			if m.Winner != nil && *m.Winner == playerID {
				stats.Wins++
			} else {
				stats.Losses++
			}
		}
	}
	return stats, nil
}

// PruneStaleMatches deletes waiting matches created more than olderThan ago.
// A match joined concurrently is left alone.
func (c *Controller) PruneStaleMatches(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := c.storage.FindMatches(ctx, model.MatchFilter{
		Statuses:      []model.MatchStatus{model.MatchStatusWaiting},
		CreatedBefore: c.clock.Now().Add(-olderThan),
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, m := range stale {
		err := c.storage.DeleteMatch(ctx, m.ID, model.MatchStatusWaiting)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrMatchNotFound):
			continue
		default:
			return removed, err
		}
	}

	if removed > 0 {
		c.logger.Info("pruned stale matches", slog.Int("count", removed))
	}
	return removed, nil
}
