package response

import (
	"time"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/auth"
	"github.com/mcoot/battleship/internal/services/bot"
	"github.com/mcoot/battleship/internal/services/game"
	"github.com/mcoot/battleship/internal/services/lobby"
	"github.com/mcoot/battleship/internal/services/view"
)

// CellEmpty is how a cell nobody has fired at and holding no visible ship is sent
const CellEmpty = "empty"

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          p.ID.String(),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Level:       p.Level,
		IsGuest:     p.IsGuest,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Stats is a player's match record
type Stats struct {
	Played     int `json:"played"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	InProgress int `json:"in_progress"`
}

// StatsFromModel converts lobby.Stats
func StatsFromModel(s *lobby.Stats) Stats {
	return Stats{
		Played:     s.Played,
		Wins:       s.Wins,
		Losses:     s.Losses,
		InProgress: s.InProgress,
	}
}

// Match is the public summary of a match, as shown in listings
type Match struct {
	ID         string     `json:"id"`
	PlayerA    string     `json:"player_a"`
	PlayerB    *string    `json:"player_b"`
	Status     string     `json:"status"`
	Winner     *string    `json:"winner"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// MatchFromModel converts a model.Match
func MatchFromModel(m *model.Match) Match {
	return Match{
		ID:         m.ID.String(),
		PlayerA:    m.PlayerA.String(),
		PlayerB:    playerIDString(m.PlayerB),
		Status:     string(m.Status),
		Winner:     playerIDString(m.Winner),
		CreatedAt:  m.CreatedAt,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}

// MatchList wraps a page of matches
type MatchList struct {
	Matches []Match `json:"matches"`
}

// MatchListFromModel converts a slice of matches
func MatchListFromModel(matches []*model.Match) MatchList {
	list := MatchList{Matches: make([]Match, 0, len(matches))}
	for _, m := range matches {
		list.Matches = append(list.Matches, MatchFromModel(m))
	}
	return list
}

// Position is a grid coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Shot is a single entry of the shot log
type Shot struct {
	Seq      int64     `json:"seq"`
	Attacker string    `json:"attacker"`
	Target   Position  `json:"target"`
	Hit      bool      `json:"hit"`
	FiredAt  time.Time `json:"fired_at"`
}

// ShotFromModel converts a model.Shot
func ShotFromModel(s *model.Shot) Shot {
	return Shot{
		Seq:      s.Seq,
		Attacker: s.AttackerID.String(),
		Target:   Position{Row: s.Target.Row, Col: s.Target.Col},
		Hit:      s.Hit,
		FiredAt:  s.CreatedAt,
	}
}

// Ship is one of the viewer's own ships
type Ship struct {
	Type  string     `json:"type"`
	Cells []Position `json:"cells"`
	Hits  int        `json:"hits"`
	Sunk  bool       `json:"sunk"`
}

// MatchView is the viewer's projection of a match
type MatchView struct {
	Match      Match      `json:"match"`
	ViewerID   string     `json:"viewer_id"`
	OpponentID *string    `json:"opponent_id"`
	Turn       *string    `json:"turn"`
	YourTurn   bool       `json:"your_turn"`
	OwnGrid    [][]string `json:"own_grid"`
	TargetGrid [][]string `json:"target_grid"`
	Fleet      []Ship     `json:"fleet"`
	EnemySunk  []string   `json:"enemy_sunk"`

	ShipsRemaining      int   `json:"ships_remaining"`
	EnemyShipsRemaining int   `json:"enemy_ships_remaining"`
	ShotsFired          int   `json:"shots_fired"`
	ShotsReceived       int   `json:"shots_received"`
	LastShot            *Shot `json:"last_shot,omitempty"`
}

// MatchViewFromModel converts a view.PlayerView. match supplies the
// lifecycle timestamps the projection does not carry.
func MatchViewFromModel(m *model.Match, v *view.PlayerView) MatchView {
	resp := MatchView{
		Match:      MatchFromModel(m),
		ViewerID:   v.ViewerID.String(),
		OpponentID: playerIDString(v.OpponentID),
		Turn:       playerIDString(v.Turn),
		YourTurn:   v.YourTurn,
		OwnGrid:    gridFromBoard(v.OwnGrid),
		TargetGrid: gridFromBoard(v.TargetGrid),
		Fleet:      make([]Ship, 0, len(v.Fleet)),
		EnemySunk:  make([]string, 0, len(v.EnemySunk)),

		ShipsRemaining:      v.ShipsRemaining,
		EnemyShipsRemaining: v.EnemyShipsRemaining,
		ShotsFired:          v.ShotsFired,
		ShotsReceived:       v.ShotsReceived,
	}
	for _, ship := range v.Fleet {
		cells := make([]Position, 0, len(ship.Cells))
		for _, c := range ship.Cells {
			cells = append(cells, Position{Row: c.Row, Col: c.Col})
		}
		resp.Fleet = append(resp.Fleet, Ship{
			Type:  string(ship.Type),
			Cells: cells,
			Hits:  ship.Hits,
			Sunk:  ship.Sunk,
		})
	}
	for _, t := range v.EnemySunk {
		resp.EnemySunk = append(resp.EnemySunk, string(t))
	}
	if v.LastShot != nil {
		shot := ShotFromModel(v.LastShot)
		resp.LastShot = &shot
	}
	return resp
}

// FireResult reports the caller's shot and any shots a CPU opponent fired in reply
type FireResult struct {
	Shot      Shot      `json:"shot"`
	Hit       bool      `json:"hit"`
	Sunk      *string   `json:"sunk"`
	MatchOver bool      `json:"match_over"`
	Winner    *string   `json:"winner"`
	BotShots  []BotShot `json:"bot_shots,omitempty"`
}

// FireResultFromOutcome converts a game.FireOutcome. A CPU reply that ends
// the match marks the result as over with the bot as winner.
func FireResultFromOutcome(o *game.FireOutcome, actions []bot.BotAction) FireResult {
	result := FireResult{
		Shot:      ShotFromModel(&o.Shot),
		Hit:       o.Hit,
		Sunk:      shipTypeString(o.Sunk),
		MatchOver: o.MatchOver,
		Winner:    playerIDString(o.Winner),
		BotShots:  BotShotsFromActions(actions),
	}
	for _, a := range actions {
		if a.Type == bot.ActionMatchOver {
			result.MatchOver = true
			result.Winner = playerIDString(&a.PlayerID)
		}
	}
	return result
}

// BotShot is one shot taken by a CPU opponent
type BotShot struct {
	Player string   `json:"player"`
	Target Position `json:"target"`
	Hit    bool     `json:"hit"`
	Sunk   *string  `json:"sunk"`
}

// BotShotsFromActions keeps only the fire actions
func BotShotsFromActions(actions []bot.BotAction) []BotShot {
	var shots []BotShot
	for _, a := range actions {
		if a.Type != bot.ActionFire {
			continue
		}
		shots = append(shots, BotShot{
			Player: a.PlayerID.String(),
			Target: Position{Row: a.Position.Row, Col: a.Position.Col},
			Hit:    a.Hit,
			Sunk:   shipTypeString(a.Sunk),
		})
	}
	return shots
}

// gridFromBoard renders a board row-major with named cell states
func gridFromBoard(b *model.Board) [][]string {
	grid := make([][]string, len(b.Cells))
	for r, row := range b.Cells {
		grid[r] = make([]string, len(row))
		for c, state := range row {
			if state == model.CellUnknown {
				grid[r][c] = CellEmpty
			} else {
				grid[r][c] = string(state)
			}
		}
	}
	return grid
}

func playerIDString(id *model.PlayerID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func shipTypeString(t *model.ShipType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
