package sqlstore

import (
	"time"

	"github.com/mcoot/battleship/internal/model"
)

type playerRow struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Username     *string `gorm:"uniqueIndex"`
	Email        *string `gorm:"uniqueIndex"`
	DisplayName  string
	PasswordHash string
	Level        int
	IsGuest      bool
	IsBot        bool
	BotStrategy  string
	CreatedAt    time.Time
}

func (playerRow) TableName() string { return "players" }

type matchRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	PlayerA    int64  `gorm:"index"`
	PlayerB    *int64 `gorm:"index"`
	Status     string `gorm:"index;size:16"`
	Winner     *int64
	CreatedAt  time.Time `gorm:"index"`
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (matchRow) TableName() string { return "matches" }

type fleetUnitRow struct {
	ID       int64            `gorm:"primaryKey;autoIncrement"`
	MatchID  int64            `gorm:"uniqueIndex:idx_fleet_unit"`
	PlayerID int64            `gorm:"uniqueIndex:idx_fleet_unit"`
	Type     string           `gorm:"uniqueIndex:idx_fleet_unit;size:16"`
	Cells    []model.Position `gorm:"serializer:json"`
}

func (fleetUnitRow) TableName() string { return "fleet_units" }

type shotRow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	MatchID    int64 `gorm:"uniqueIndex:idx_shot_target;uniqueIndex:idx_shot_seq"`
	AttackerID int64 `gorm:"uniqueIndex:idx_shot_target"`
	TargetRow  int   `gorm:"uniqueIndex:idx_shot_target"`
	TargetCol  int   `gorm:"uniqueIndex:idx_shot_target"`
	Hit        bool
	Seq        int64 `gorm:"uniqueIndex:idx_shot_seq"`
	CreatedAt  time.Time
}

func (shotRow) TableName() string { return "shots" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func playerToRow(p *model.Player) playerRow {
	return playerRow{
		ID:           int64(p.ID),
		Username:     nullable(p.Username),
		Email:        nullable(p.Email),
		DisplayName:  p.DisplayName,
		PasswordHash: p.PasswordHash,
		Level:        p.Level,
		IsGuest:      p.IsGuest,
		IsBot:        p.IsBot,
		BotStrategy:  p.BotStrategy,
		CreatedAt:    p.CreatedAt,
	}
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{
		ID:           model.PlayerID(r.ID),
		Username:     deref(r.Username),
		Email:        deref(r.Email),
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash,
		Level:        r.Level,
		IsGuest:      r.IsGuest,
		IsBot:        r.IsBot,
		BotStrategy:  r.BotStrategy,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func optionalID(id *model.PlayerID) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func playerIDPtr(v *int64) *model.PlayerID {
	if v == nil {
		return nil
	}
	id := model.PlayerID(*v)
	return &id
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func matchToRow(m *model.Match) matchRow {
	return matchRow{
		ID:         int64(m.ID),
		PlayerA:    int64(m.PlayerA),
		PlayerB:    optionalID(m.PlayerB),
		Status:     string(m.Status),
		Winner:     optionalID(m.Winner),
		CreatedAt:  m.CreatedAt,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}

func (r matchRow) toModel() *model.Match {
	return &model.Match{
		ID:         model.MatchID(r.ID),
		PlayerA:    model.PlayerID(r.PlayerA),
		PlayerB:    playerIDPtr(r.PlayerB),
		Status:     model.MatchStatus(r.Status),
		Winner:     playerIDPtr(r.Winner),
		CreatedAt:  r.CreatedAt.UTC(),
		StartedAt:  utcPtr(r.StartedAt),
		FinishedAt: utcPtr(r.FinishedAt),
	}
}

func (r shotRow) toModel() model.Shot {
	return model.Shot{
		MatchID:    model.MatchID(r.MatchID),
		AttackerID: model.PlayerID(r.AttackerID),
		Target:     model.Position{Row: r.TargetRow, Col: r.TargetCol},
		Hit:        r.Hit,
		Seq:        r.Seq,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}
