package bot

import (
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/view"
)

// Strategy defines how a bot picks its next target
type Strategy interface {
	// ChooseTarget selects a cell on the target grid not yet fired at.
	// Returns false when every cell has been fired at.
	ChooseTarget(v *view.PlayerView) (model.Position, bool)
}

// untargeted lists every target-grid cell the viewer has not fired at, row-major
func untargeted(v *view.PlayerView) []model.Position {
	var cells []model.Position
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			pos := model.Position{Row: row, Col: col}
			if v.TargetGrid.Get(pos) == model.CellUnknown {
				cells = append(cells, pos)
			}
		}
	}
	return cells
}
