// Package view projects match state into what a single player may see.
// Enemy ship positions never leave this package except as cells the viewer
// has already hit.
package view

import (
	"time"

	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/turn"
)

// ShipStatus describes one of the viewer's own ships
type ShipStatus struct {
	Type  model.ShipType
	Cells []model.Position
	Hits  int
	Sunk  bool
}

// PlayerView is the per-player projection of a match
type PlayerView struct {
	MatchID    model.MatchID
	Status     model.MatchStatus
	ViewerID   model.PlayerID
	OpponentID *model.PlayerID
	Turn       *model.PlayerID // nil when nobody may fire
	YourTurn   bool
	Winner     *model.PlayerID
	CreatedAt  time.Time
	FinishedAt *time.Time

	OwnGrid    *model.Board // own ships overlaid with incoming shots
	TargetGrid *model.Board // outgoing shots only

	Fleet     []ShipStatus
	EnemySunk []model.ShipType

	ShipsRemaining      int
	EnemyShipsRemaining int
	ShotsFired          int
	ShotsReceived       int
	LastShot            *model.Shot
}

// Project builds the viewer's projection. enemyFleet is only consulted to
// report which enemy ships are sunk; its positions are never copied out
// beyond cells the viewer has already hit.
func Project(match *model.Match, viewerID model.PlayerID, ownFleet, enemyFleet []model.FleetUnit, shots []model.Shot) (*PlayerView, error) {
	if !match.IsParticipant(viewerID) {
		return nil, model.ErrNotParticipant
	}

	v := &PlayerView{
		MatchID:    match.ID,
		Status:     match.Status,
		ViewerID:   viewerID,
		Winner:     match.Winner,
		CreatedAt:  match.CreatedAt,
		FinishedAt: match.FinishedAt,
		OwnGrid:    model.NewBoard(),
		TargetGrid: model.NewBoard(),
		LastShot:   model.LastOf(shots),
	}

	opponent, hasOpponent := match.Opponent(viewerID)
	if hasOpponent {
		v.OpponentID = &opponent
	}
	current, ok, err := turn.Replay(match, shots)
	if err != nil {
		return nil, err
	}
	if ok {
		v.Turn = &current
		v.YourTurn = current == viewerID
	}

	// Own grid: ships, then incoming fire
	incoming := model.HitSet(shots, opponent)
	for _, u := range ownFleet {
		sunk := u.IsSunk(incoming)
		v.Fleet = append(v.Fleet, ShipStatus{
			Type:  u.Type,
			Cells: u.Cells,
			Hits:  u.HitCount(incoming),
			Sunk:  sunk,
		})
		if !sunk {
			v.ShipsRemaining++
		}
		for _, c := range u.Cells {
			v.OwnGrid.Set(c, model.CellShip)
		}
	}

	outgoing := model.HitSet(shots, viewerID)
	for _, shot := range shots {
		switch {
		case hasOpponent && shot.AttackerID == opponent:
			v.ShotsReceived++
			v.OwnGrid.Set(shot.Target, cellFor(shot.Hit))
		case shot.AttackerID == viewerID:
			v.ShotsFired++
			v.TargetGrid.Set(shot.Target, cellFor(shot.Hit))
		}
	}

	for _, s := range v.Fleet {
		if s.Sunk {
			for _, c := range s.Cells {
				v.OwnGrid.Set(c, model.CellSunk)
			}
		}
	}

	for _, u := range enemyFleet {
		if u.IsSunk(outgoing) {
			v.EnemySunk = append(v.EnemySunk, u.Type)
			for _, c := range u.Cells {
				v.TargetGrid.Set(c, model.CellSunk)
			}
		}
	}
	v.EnemyShipsRemaining = len(model.FleetCatalog()) - len(v.EnemySunk)

	return v, nil
}

func cellFor(hit bool) model.CellState {
	if hit {
		return model.CellHit
	}
	return model.CellMiss
}
