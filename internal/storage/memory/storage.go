package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players       map[model.PlayerID]*model.Player
	usernameIndex map[string]model.PlayerID
	emailIndex    map[string]model.PlayerID
	matches       map[model.MatchID]*model.Match
	fleets        map[fleetKey][]model.FleetUnit
	shots         map[model.MatchID][]model.Shot

	nextPlayerID model.PlayerID
	nextMatchID  model.MatchID

	locksMu    sync.Mutex
	matchLocks map[model.MatchID]*sync.Mutex
}

type fleetKey struct {
	matchID  model.MatchID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		usernameIndex: make(map[string]model.PlayerID),
		emailIndex:    make(map[string]model.PlayerID),
		matches:       make(map[model.MatchID]*model.Match),
		fleets:        make(map[fleetKey][]model.FleetUnit),
		shots:         make(map[model.MatchID][]model.Shot),
		matchLocks:    make(map[model.MatchID]*sync.Mutex),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.Username != "" {
		if _, ok := s.usernameIndex[player.Username]; ok {
			return model.ErrUsernameTaken
		}
	}
	if player.Email != "" {
		if _, ok := s.emailIndex[player.Email]; ok {
			return model.ErrEmailTaken
		}
	}

	s.nextPlayerID++
	player.ID = s.nextPlayerID
	stored := *player
	s.players[player.ID] = &stored
	if player.Username != "" {
		s.usernameIndex[player.Username] = player.ID
	}
	if player.Email != "" {
		s.emailIndex[player.Email] = player.ID
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// UpdatePlayer replaces mutable fields. Username and email are immutable.
func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.players[player.ID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	updated := *player
	updated.Username = existing.Username
	updated.Email = existing.Email
	s.players[player.ID] = &updated
	return nil
}

// Match operations

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMatchID++
	match.ID = s.nextMatchID
	s.matches[match.ID] = match.Clone()
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return match.Clone(), nil
}

func (s *Storage) FindMatches(ctx context.Context, filter model.MatchFilter) ([]*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Match
	for _, m := range s.matches {
		if filter.Matches(m) {
			result = append(result, m.Clone())
		}
	}

	slices.SortFunc(result, func(a, b *model.Match) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Storage) UpdateMatch(ctx context.Context, match *model.Match, expected model.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.matches[match.ID]
	if !ok {
		return model.ErrMatchNotFound
	}
	if existing.Status != expected {
		return model.ErrConflict
	}
	s.matches[match.ID] = match.Clone()
	return nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID, expected model.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.matches[id]
	if !ok {
		return model.ErrMatchNotFound
	}
	if existing.Status != expected {
		return model.ErrConflict
	}
	delete(s.matches, id)
	delete(s.shots, id)
	for key := range s.fleets {
		if key.matchID == id {
			delete(s.fleets, key)
		}
	}

	s.locksMu.Lock()
	delete(s.matchLocks, id)
	s.locksMu.Unlock()
	return nil
}

// Fleet operations

func (s *Storage) CreateFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID, units []model.FleetUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fleetKey{matchID: matchID, playerID: playerID}
	if len(s.fleets[key]) > 0 {
		return model.ErrFleetExists
	}
	s.fleets[key] = cloneUnits(units)
	return nil
}

func (s *Storage) GetFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUnits(s.fleets[fleetKey{matchID: matchID, playerID: playerID}]), nil
}

// Shot operations

func (s *Storage) AppendShot(ctx context.Context, shot *model.Shot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.shots[shot.MatchID]
	if model.HasFired(log, shot.AttackerID, shot.Target) {
		return model.ErrAlreadyFired
	}
	shot.Seq = int64(len(log)) + 1
	s.shots[shot.MatchID] = append(log, *shot)
	return nil
}

func (s *Storage) ListShots(ctx context.Context, matchID model.MatchID) ([]model.Shot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shots[matchID]), nil
}

func (s *Storage) LastShot(ctx context.Context, matchID model.MatchID) (*model.Shot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.shots[matchID]
	if len(log) == 0 {
		return nil, nil
	}
	last := log[len(log)-1]
	return &last, nil
}

// Locking

func (s *Storage) WithMatchLock(ctx context.Context, matchID model.MatchID, fn func(ctx context.Context) error) error {
	lock := s.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (s *Storage) matchLock(matchID model.MatchID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.matchLocks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		s.matchLocks[matchID] = lock
	}
	return lock
}

func cloneUnits(units []model.FleetUnit) []model.FleetUnit {
	out := make([]model.FleetUnit, len(units))
	for i, u := range units {
		u.Cells = slices.Clone(u.Cells)
		out[i] = u
	}
	return out
}
