// Package fleet places ships and keeps one fleet per (match, player)
package fleet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage"
)

// Placer lays out a complete fleet for one player
type Placer interface {
	Generate(matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error)
}

// Service provides fleet operations
type Service struct {
	storage storage.Storage
	placer  Placer
	logger  *slog.Logger
}

// New creates a new fleet Service
func New(storage storage.Storage, placer Placer, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		placer:  placer,
		logger:  logger,
	}
}

// GetFleet returns a player's units, empty if none have been placed
func (s *Service) GetFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	return s.storage.GetFleet(ctx, matchID, playerID)
}

// EnsureFleet returns the player's fleet, generating and storing one first
// if none exists. An existing fleet is never replaced, and a placement that
// breaks the fleet rules is never stored.
func (s *Service) EnsureFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	units, err := s.storage.GetFleet(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if len(units) > 0 {
		return units, nil
	}

	units, err = s.placer.Generate(matchID, playerID)
	if err == nil {
		err = ValidateFleet(units)
	}
	if err != nil {
		s.logger.Error("fleet placement failed",
			slog.String("match_id", matchID.String()),
			slog.String("player_id", playerID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	err = s.storage.CreateFleet(ctx, matchID, playerID, units)
	if errors.Is(err, model.ErrFleetExists) {
		// Someone else placed it first; theirs wins
		return s.storage.GetFleet(ctx, matchID, playerID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("fleet placed",
		slog.String("match_id", matchID.String()),
		slog.String("player_id", playerID.String()),
	)
	return units, nil
}
