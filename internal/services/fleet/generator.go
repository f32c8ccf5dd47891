package fleet

import (
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/model"
)

const (
	// MaxShipAttempts bounds resampling for a single ship within one round
	MaxShipAttempts = 200
	// MaxFleetRounds bounds how many times the whole fleet is restarted
	MaxFleetRounds = 50
)

// Orientation of a placed ship
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Generator produces random, non-overlapping fleets
type Generator struct {
	random random.Random
}

// NewGenerator creates a Generator drawing from rng
func NewGenerator(rng random.Random) *Generator {
	return &Generator{random: rng}
}

// Generate places every catalog ship, largest first, for (matchID, playerID).
// Returns model.ErrPlacementExhausted if no layout is found within the retry budget.
func (g *Generator) Generate(matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, error) {
	for round := 0; round < MaxFleetRounds; round++ {
		units, ok := g.placeRound(matchID, playerID)
		if ok {
			return units, nil
		}
	}
	return nil, model.ErrPlacementExhausted
}

// placeRound attempts a full fleet on an empty grid
func (g *Generator) placeRound(matchID model.MatchID, playerID model.PlayerID) ([]model.FleetUnit, bool) {
	occupied := make(map[model.Position]bool)
	catalog := model.FleetCatalog()
	units := make([]model.FleetUnit, 0, len(catalog))

	for _, shipType := range catalog {
		cells, ok := g.placeShip(shipType.Length(), occupied)
		if !ok {
			return nil, false
		}
		for _, c := range cells {
			occupied[c] = true
		}
		units = append(units, model.FleetUnit{
			MatchID:  matchID,
			PlayerID: playerID,
			Type:     shipType,
			Cells:    cells,
		})
	}
	return units, true
}

func (g *Generator) placeShip(length int, occupied map[model.Position]bool) ([]model.Position, bool) {
	for attempt := 0; attempt < MaxShipAttempts; attempt++ {
		orientation := Orientation(g.random.Intn(2))

		rowSpan, colSpan := model.GridSize, model.GridSize
		if orientation == Horizontal {
			colSpan = model.GridSize - length + 1
		} else {
			rowSpan = model.GridSize - length + 1
		}
		anchor := model.Position{Row: g.random.Intn(rowSpan), Col: g.random.Intn(colSpan)}

		cells := ShipCells(anchor, orientation, length)
		if !overlaps(cells, occupied) {
			return cells, true
		}
	}
	return nil, false
}

// ShipCells returns the run of cells starting at anchor
func ShipCells(anchor model.Position, orientation Orientation, length int) []model.Position {
	cells := make([]model.Position, length)
	for i := range cells {
		if orientation == Horizontal {
			cells[i] = model.Position{Row: anchor.Row, Col: anchor.Col + i}
		} else {
			cells[i] = model.Position{Row: anchor.Row + i, Col: anchor.Col}
		}
	}
	return cells
}

func overlaps(cells []model.Position, occupied map[model.Position]bool) bool {
	for _, c := range cells {
		if occupied[c] {
			return true
		}
	}
	return false
}
