package redis

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Values are msgpack-encoded model structs.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	defaults := DefaultConfig()
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaults.LockTTL
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = defaults.LockWait
	}
	if cfg.LockRetryInterval <= 0 {
		cfg.LockRetryInterval = defaults.LockRetryInterval
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	seq, err := s.client.Incr(ctx, playerSeqKey()).Result()
	if err != nil {
		return err
	}
	id := model.PlayerID(seq)

	if player.Username != "" {
		ok, err := s.client.SetNX(ctx, usernameIndexKey(player.Username), int64(id), 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrUsernameTaken
		}
	}
	if player.Email != "" {
		ok, err := s.client.SetNX(ctx, emailIndexKey(player.Email), int64(id), 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			if player.Username != "" {
				_ = s.client.Del(ctx, usernameIndexKey(player.Username)).Err()
			}
			return model.ErrEmailTaken
		}
	}

	stored := *player
	stored.ID = id
	data, err := msgpack.Marshal(&stored)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, playerKey(id), data, 0).Err(); err != nil {
		return err
	}
	player.ID = id
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := msgpack.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	// Look up player ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(id))
}

// UpdatePlayer replaces mutable fields. Username and email are immutable.
func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	existing, err := s.GetPlayer(ctx, player.ID)
	if err != nil {
		return err
	}
	updated := *player
	updated.Username = existing.Username
	updated.Email = existing.Email

	data, err := msgpack.Marshal(&updated)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, 0).Err()
}

// Match operations

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	seq, err := s.client.Incr(ctx, matchSeqKey()).Result()
	if err != nil {
		return err
	}

	stored := match.Clone()
	stored.ID = model.MatchID(seq)
	data, err := msgpack.Marshal(stored)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, matchKey(stored.ID), data, 0)
	pipe.ZAdd(ctx, matchIndexKey(), redis.Z{Score: float64(seq), Member: seq})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	match.ID = stored.ID
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return getMatch(ctx, s.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getMatch(ctx context.Context, c getter, id model.MatchID) (*model.Match, error) {
	data, err := c.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var match model.Match
	if err := msgpack.Unmarshal(data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) FindMatches(ctx context.Context, filter model.MatchFilter) ([]*model.Match, error) {
	members, err := s.client.ZRevRange(ctx, matchIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, matchKey(model.MatchID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var result []*model.Match
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted since the index was read
			continue
		}
		var match model.Match
		if err := msgpack.Unmarshal([]byte(raw), &match); err != nil {
			return nil, err
		}
		if filter.Matches(&match) {
			result = append(result, &match)
		}
	}

	slices.SortStableFunc(result, func(a, b *model.Match) int {
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
	data, err := msgpack.Marshal(match)
	if err != nil {
		return err
	}

	key := matchKey(match.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getMatch(ctx, tx, match.ID)
		if err != nil {
			return err
		}
		if current.Status != expected {
			return model.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID, expected model.MatchStatus) error {
	key := matchKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getMatch(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status != expected {
			return model.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, matchScopedKeys(id, current.Participants())...)
			pipe.ZRem(ctx, matchIndexKey(), int64(id))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

// Fleet operations

func (s *Storage) CreateFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID, units []model.FleetUnit) error {
	data, err := msgpack.Marshal(units)
	if err != nil {
		return err
	}

	// The whole fleet lives under one key, so SETNX makes creation all-or-nothing
	ok, err := s.client.SetNX(ctx, fleetKey(matchID, playerID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrFleetExists
	}
	return nil
}

func (s *Storage) GetFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	data, err := s.client.Get(ctx, fleetKey(matchID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.FleetUnit{}, nil
		}
		return nil, err
	}

	var units []model.FleetUnit
	if err := msgpack.Unmarshal(data, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// Shot operations

// appendShotScript records a shot atomically. The cell check is read-only,
// so a failed RPUSH leaves nothing behind; SADD cannot fail once SISMEMBER
// has succeeded on the same key. Returns 0 for a repeat target, otherwise
// the new log length, which is the shot's sequence number.
var appendShotScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	return 0
end
local n = redis.call("RPUSH", KEYS[2], ARGV[2])
redis.call("SADD", KEYS[1], ARGV[1])
return n
`)

func (s *Storage) AppendShot(ctx context.Context, shot *model.Shot) error {
	// Seq is positional in the log, so it is not encoded
	stored := *shot
	stored.Seq = 0
	data, err := msgpack.Marshal(&stored)
	if err != nil {
		return err
	}

	keys := []string{shotCellsKey(shot.MatchID, shot.AttackerID), shotsKey(shot.MatchID)}
	seq, err := appendShotScript.Run(ctx, s.client, keys, shot.Target.String(), data).Int64()
	if err != nil {
		return err
	}
	if seq == 0 {
		return model.ErrAlreadyFired
	}
	shot.Seq = seq
	return nil
}

func (s *Storage) ListShots(ctx context.Context, matchID model.MatchID) ([]model.Shot, error) {
	raw, err := s.client.LRange(ctx, shotsKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	shots := make([]model.Shot, 0, len(raw))
	for i, r := range raw {
		var shot model.Shot
		if err := msgpack.Unmarshal([]byte(r), &shot); err != nil {
			return nil, err
		}
		shot.Seq = int64(i + 1)
		shots = append(shots, shot)
	}
	return shots, nil
}

func (s *Storage) LastShot(ctx context.Context, matchID model.MatchID) (*model.Shot, error) {
	shots, err := s.ListShots(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return model.LastOf(shots), nil
}
