package fleet

import (
	"fmt"

	"github.com/mcoot/battleship/internal/model"
)

// ValidateFleet checks that units form exactly one of each catalog ship,
// each a straight contiguous in-bounds run, with no shared cells.
func ValidateFleet(units []model.FleetUnit) error {
	catalog := model.FleetCatalog()
	if len(units) != len(catalog) {
		return fmt.Errorf("%w: expected %d ships, got %d", model.ErrInvalidFleet, len(catalog), len(units))
	}

	seenTypes := make(map[model.ShipType]bool)
	occupied := make(map[model.Position]model.ShipType)
	for _, u := range units {
		if !u.Type.Valid() {
			return fmt.Errorf("%w: unknown ship type %q", model.ErrInvalidFleet, u.Type)
		}
		if seenTypes[u.Type] {
			return fmt.Errorf("%w: duplicate %s", model.ErrInvalidFleet, u.Type)
		}
		seenTypes[u.Type] = true

		if len(u.Cells) != u.Type.Length() {
			return fmt.Errorf("%w: %s has %d cells, want %d", model.ErrInvalidFleet, u.Type, len(u.Cells), u.Type.Length())
		}
		if !contiguous(u.Cells) {
			return fmt.Errorf("%w: %s is not a straight run", model.ErrInvalidFleet, u.Type)
		}
		for _, c := range u.Cells {
			if !c.InBounds() {
				return fmt.Errorf("%w: %s out of bounds at %s", model.ErrInvalidFleet, u.Type, c)
			}
			if other, ok := occupied[c]; ok {
				return fmt.Errorf("%w: %s overlaps %s at %s", model.ErrInvalidFleet, u.Type, other, c)
			}
			occupied[c] = u.Type
		}
	}
	return nil
}

func contiguous(cells []model.Position) bool {
	if len(cells) < 2 {
		return true
	}
	dr := cells[1].Row - cells[0].Row
	dc := cells[1].Col - cells[0].Col
	if !((dr == 0 && dc == 1) || (dr == 1 && dc == 0)) {
		return false
	}
	for i := 2; i < len(cells); i++ {
		if cells[i].Row-cells[i-1].Row != dr || cells[i].Col-cells[i-1].Col != dc {
			return false
		}
	}
	return true
}
