// Package sqlstore persists game state in a relational database through gorm.
// Postgres is the production target; sqlite backs local runs and tests.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/storage"
)

// Storage is a gorm-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
	// sqlite serialises writers itself and has no SELECT ... FOR UPDATE
	rowLocks bool
}

type txKey struct{}

// New opens the database and migrates the schema
func New(cfg Config) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// One connection keeps an in-memory database alive and orders writers
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return NewWithDB(db)
}

// NewWithDB wraps an existing gorm handle, migrating the schema first
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&playerRow{}, &matchRow{}, &fleetUnitRow{}, &shotRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{
		db:       db,
		rowLocks: db.Dialector.Name() != "sqlite",
	}, nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// conn returns the transaction bound to ctx by WithMatchLock, or the pool
func (s *Storage) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// WithMatchLock runs fn inside a transaction holding the match row lock.
// Storage calls made with the callback's context join that transaction.
func (s *Storage) WithMatchLock(ctx context.Context, matchID model.MatchID, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if s.rowLocks {
			var row matchRow
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				Where("id = ?", int64(matchID)).
				Take(&row).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	row := playerToRow(player)
	row.ID = 0

	db := s.conn(ctx)
	if err := db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.duplicatePlayerError(db, player.Username)
		}
		return err
	}
	player.ID = model.PlayerID(row.ID)
	return nil
}

// duplicatePlayerError works out which unique column rejected the insert
func (s *Storage) duplicatePlayerError(db *gorm.DB, username string) error {
	if username == "" {
		return model.ErrEmailTaken
	}
	var count int64
	if err := db.Model(&playerRow{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return model.ErrUsernameTaken
	}
	return model.ErrEmailTaken
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	if err := s.conn(ctx).Where("id = ?", int64(id)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	if username == "" {
		return nil, model.ErrPlayerNotFound
	}
	var row playerRow
	if err := s.conn(ctx).Where("username = ?", username).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

// UpdatePlayer replaces mutable fields. Username and email are immutable.
func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	result := s.conn(ctx).Model(&playerRow{}).
		Where("id = ?", int64(player.ID)).
		Updates(map[string]any{
			"display_name":  player.DisplayName,
			"password_hash": player.PasswordHash,
			"level":         player.Level,
			"is_guest":      player.IsGuest,
			"is_bot":        player.IsBot,
			"bot_strategy":  player.BotStrategy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Match operations

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	row := matchToRow(match)
	row.ID = 0
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return err
	}
	match.ID = model.MatchID(row.ID)
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return getMatch(s.conn(ctx), id)
}

func getMatch(db *gorm.DB, id model.MatchID) (*model.Match, error) {
	var row matchRow
	if err := db.Where("id = ?", int64(id)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) FindMatches(ctx context.Context, filter model.MatchFilter) ([]*model.Match, error) {
	q := s.conn(ctx).Model(&matchRow{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.Participant != 0 {
		q = q.Where("player_a = ? OR player_b = ?", int64(filter.Participant), int64(filter.Participant))
	}
	if filter.ExcludeCreator != 0 {
		q = q.Where("player_a <> ?", int64(filter.ExcludeCreator))
	}
	if !filter.CreatedBefore.IsZero() {
		q = q.Where("created_at < ?", filter.CreatedBefore)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []matchRow
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, r.toModel())
	}
	return matches, nil
}

func (s *Storage) UpdateMatch(ctx context.Context, match *model.Match, expected model.MatchStatus) error {
	db := s.conn(ctx)
	row := matchToRow(match)
	result := db.Model(&matchRow{}).
		Where("id = ? AND status = ?", row.ID, string(expected)).
		Updates(map[string]any{
			"player_b":    row.PlayerB,
			"status":      row.Status,
			"winner":      row.Winner,
			"started_at":  row.StartedAt,
			"finished_at": row.FinishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.missingOrConflict(db, match.ID)
	}
	return nil
}

// missingOrConflict explains why a status-guarded write touched no rows
func (s *Storage) missingOrConflict(db *gorm.DB, id model.MatchID) error {
	if _, err := getMatch(db, id); err != nil {
		return err
	}
	return model.ErrConflict
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID, expected model.MatchStatus) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", int64(id), string(expected)).Delete(&matchRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.missingOrConflict(tx, id)
		}
		if err := tx.Where("match_id = ?", int64(id)).Delete(&fleetUnitRow{}).Error; err != nil {
			return err
		}
		return tx.Where("match_id = ?", int64(id)).Delete(&shotRow{}).Error
	})
}

// Fleet operations

func (s *Storage) CreateFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID, units []model.FleetUnit) error {
	if len(units) == 0 {
		return nil
	}
	rows := make([]fleetUnitRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, fleetUnitRow{
			MatchID:  int64(matchID),
			PlayerID: int64(playerID),
			Type:     string(u.Type),
			Cells:    u.Cells,
		})
	}

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&fleetUnitRow{}).
			Where("match_id = ? AND player_id = ?", int64(matchID), int64(playerID)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return model.ErrFleetExists
		}
		if err := tx.Create(&rows).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return model.ErrFleetExists
			}
			return err
		}
		return nil
	})
}

func (s *Storage) GetFleet(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	var rows []fleetUnitRow
	err := s.conn(ctx).
		Where("match_id = ? AND player_id = ?", int64(matchID), int64(playerID)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	units := make([]model.FleetUnit, 0, len(rows))
	for _, r := range rows {
		units = append(units, model.FleetUnit{
			MatchID:  model.MatchID(r.MatchID),
			PlayerID: model.PlayerID(r.PlayerID),
			Type:     model.ShipType(r.Type),
			Cells:    r.Cells,
		})
	}
	return units, nil
}

// Shot operations

func (s *Storage) AppendShot(ctx context.Context, shot *model.Shot) error {
	row := shotRow{
		MatchID:    int64(shot.MatchID),
		AttackerID: int64(shot.AttackerID),
		TargetRow:  shot.Target.Row,
		TargetCol:  shot.Target.Col,
		Hit:        shot.Hit,
		CreatedAt:  shot.CreatedAt,
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&shotRow{}).
			Where("match_id = ? AND attacker_id = ? AND target_row = ? AND target_col = ?",
				row.MatchID, row.AttackerID, row.TargetRow, row.TargetCol).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return model.ErrAlreadyFired
		}

		var maxSeq int64
		err = tx.Model(&shotRow{}).
			Where("match_id = ?", row.MatchID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return err
		}
		row.Seq = maxSeq + 1
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race outside the match lock
			return model.ErrConflict
		}
		return err
	}
	shot.Seq = row.Seq
	return nil
}

func (s *Storage) ListShots(ctx context.Context, matchID model.MatchID) ([]model.Shot, error) {
	var rows []shotRow
	if err := s.conn(ctx).Where("match_id = ?", int64(matchID)).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	shots := make([]model.Shot, 0, len(rows))
	for _, r := range rows {
		shots = append(shots, r.toModel())
	}
	return shots, nil
}

func (s *Storage) LastShot(ctx context.Context, matchID model.MatchID) (*model.Shot, error) {
	var row shotRow
	err := s.conn(ctx).Where("match_id = ?", int64(matchID)).Order("seq DESC").Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	shot := row.toModel()
	return &shot, nil
}
