package model

// ShipType is a vessel class from the fixed catalog
type ShipType string

const (
	ShipCarrier    ShipType = "carrier"
	ShipBattleship ShipType = "battleship"
	ShipCruiser    ShipType = "cruiser"
	ShipSubmarine  ShipType = "submarine"
	ShipDestroyer  ShipType = "destroyer"
)

var shipLengths = map[ShipType]int{
	ShipCarrier:    5,
	ShipBattleship: 4,
	ShipCruiser:    3,
	ShipSubmarine:  3,
	ShipDestroyer:  2,
}

// FleetCatalog returns every ship type, largest first
func FleetCatalog() []ShipType {
	return []ShipType{ShipCarrier, ShipBattleship, ShipCruiser, ShipSubmarine, ShipDestroyer}
}

// Length returns the number of cells the ship occupies, or 0 for unknown types
func (t ShipType) Length() int {
	return shipLengths[t]
}

// Valid reports whether t is in the catalog
func (t ShipType) Valid() bool {
	_, ok := shipLengths[t]
	return ok
}

// FleetUnit is one placed ship belonging to a (match, player) pair
type FleetUnit struct {
	MatchID  MatchID
	PlayerID PlayerID
	Type     ShipType
	Cells    []Position
}

// Occupies reports whether the ship covers pos
func (u FleetUnit) Occupies(pos Position) bool {
	for _, c := range u.Cells {
		if c == pos {
			return true
		}
	}
	return false
}

// HitCount returns how many of the ship's cells are in hits
func (u FleetUnit) HitCount(hits map[Position]bool) int {
	n := 0
	for _, c := range u.Cells {
		if hits[c] {
			n++
		}
	}
	return n
}

// IsSunk reports whether every cell of the ship is in hits
func (u FleetUnit) IsSunk(hits map[Position]bool) bool {
	return len(u.Cells) > 0 && u.HitCount(hits) == len(u.Cells)
}

// UnitAt returns the unit covering pos
func UnitAt(units []FleetUnit, pos Position) (FleetUnit, bool) {
	for _, u := range units {
		if u.Occupies(pos) {
			return u, true
		}
	}
	return FleetUnit{}, false
}

// AllSunk reports whether every unit is sunk. An empty fleet is never sunk.
func AllSunk(units []FleetUnit, hits map[Position]bool) bool {
	if len(units) == 0 {
		return false
	}
	for _, u := range units {
		if !u.IsSunk(hits) {
			return false
		}
	}
	return true
}
