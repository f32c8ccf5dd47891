package bot

import (
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/view"
)

// RandomStrategy fires at random untargeted cells
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseTarget picks a random cell not yet fired at
func (s *RandomStrategy) ChooseTarget(v *view.PlayerView) (model.Position, bool) {
	cells := untargeted(v)
	if len(cells) == 0 {
		return model.Position{}, false
	}
	return cells[s.random.Intn(len(cells))], true
}
