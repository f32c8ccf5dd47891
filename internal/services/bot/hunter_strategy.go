package bot

import (
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/view"
)

// HunterStrategy fires randomly until it scores a hit, then works the
// neighbours of unsunk hits until the ship goes down
type HunterStrategy struct {
	random random.Random
	search *RandomStrategy
}

// NewHunterStrategy creates a new HunterStrategy
func NewHunterStrategy(rnd random.Random) *HunterStrategy {
	return &HunterStrategy{
		random: rnd,
		search: NewRandomStrategy(rnd),
	}
}

// ChooseTarget prefers cells next to a live hit
func (s *HunterStrategy) ChooseTarget(v *view.PlayerView) (model.Position, bool) {
	candidates := huntCandidates(v.TargetGrid)
	if len(candidates) == 0 {
		return s.search.ChooseTarget(v)
	}
	return candidates[s.random.Intn(len(candidates))], true
}

// huntCandidates returns untargeted neighbours of hit cells whose ship is still afloat
func huntCandidates(grid *model.Board) []model.Position {
	seen := make(map[model.Position]bool)
	var candidates []model.Position
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			pos := model.Position{Row: row, Col: col}
			if grid.Get(pos) != model.CellHit {
				continue
			}
			for _, n := range neighbours(pos) {
				if n.InBounds() && grid.Get(n) == model.CellUnknown && !seen[n] {
					seen[n] = true
					candidates = append(candidates, n)
				}
			}
		}
	}
	return candidates
}

func neighbours(pos model.Position) []model.Position {
	return []model.Position{
		{Row: pos.Row - 1, Col: pos.Col},
		{Row: pos.Row + 1, Col: pos.Col},
		{Row: pos.Row, Col: pos.Col - 1},
		{Row: pos.Row, Col: pos.Col + 1},
	}
}
