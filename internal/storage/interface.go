package storage

import (
	"context"

	"github.com/mcoot/battleship/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations must give read-after-write consistency within a single
// operation, and every method called from inside WithMatchLock must observe
// the writes made earlier in the same callback.
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error // assigns player.ID
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)
	UpdatePlayer(ctx context.Context, player *model.Player) error

	// Match operations
	CreateMatch(ctx context.Context, match *model.Match) error // assigns match.ID
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	// FindMatches returns matches newest first
	FindMatches(ctx context.Context, filter model.MatchFilter) ([]*model.Match, error)
	// UpdateMatch writes match only if the stored status still equals expected,
	// returning model.ErrConflict otherwise
	UpdateMatch(ctx context.Context, match *model.Match, expected model.MatchStatus) error
	// DeleteMatch removes a match, its fleets and shots, only if the stored status equals expected
	DeleteMatch(ctx context.Context, id model.MatchID, expected model.MatchStatus) error

	// Fleet operations
	// CreateFleet stores all units atomically, or returns model.ErrFleetExists
	// if the (match, player) pair already has any
	CreateFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID, units []model.FleetUnit) error
	// GetFleet returns the units for (match, player), empty when none exist
	GetFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error)

	// Shot operations
	// AppendShot assigns shot.Seq and stores it, returning model.ErrAlreadyFired
	// if the attacker already has a shot at the same target
	AppendShot(ctx context.Context, shot *model.Shot) error
	// ListShots returns every shot in the match ordered by Seq
	ListShots(ctx context.Context, matchID model.MatchID) ([]model.Shot, error)
	// LastShot returns the shot with the highest Seq, or nil when none exist
	LastShot(ctx context.Context, matchID model.MatchID) (*model.Shot, error)

	// WithMatchLock runs fn while holding the match's exclusive lock.
	// fn must use the context it is given for storage calls.
	WithMatchLock(ctx context.Context, matchID model.MatchID, fn func(ctx context.Context) error) error
}
