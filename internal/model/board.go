package model

import "fmt"

// GridSize is the width and height of every player's grid
const GridSize = 10

// Position identifies a cell on the grid
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// InBounds returns true if the position is within the grid
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < GridSize && p.Col >= 0 && p.Col < GridSize
}

// Validate returns ErrInvalidPosition for out-of-range coordinates
func (p Position) Validate() error {
	if !p.InBounds() {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidPosition, p.Row, p.Col)
	}
	return nil
}

// String formats the position as "row,col"
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// CellState is what a viewer is allowed to know about a single cell
type CellState string

const (
	CellUnknown CellState = ""     // Not fired at, no own ship
	CellShip    CellState = "ship" // Own ship, not hit
	CellHit     CellState = "hit"
	CellMiss    CellState = "miss"
	CellSunk    CellState = "sunk" // Hit cell of a sunk ship
)

// Board is a rendered grid of cell states for one side of a match
type Board struct {
	Cells [][]CellState // Row-major: Cells[row][col]
}

// NewBoard creates an empty GridSize x GridSize board
func NewBoard() *Board {
	cells := make([][]CellState, GridSize)
	for i := range cells {
		cells[i] = make([]CellState, GridSize)
	}
	return &Board{Cells: cells}
}

// Get returns the state at pos, or CellUnknown if out of bounds
func (b *Board) Get(pos Position) CellState {
	if !pos.InBounds() {
		return CellUnknown
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set marks a cell. Out-of-bounds positions are ignored.
func (b *Board) Set(pos Position, state CellState) {
	if pos.InBounds() {
		b.Cells[pos.Row][pos.Col] = state
	}
}

// Count returns the number of cells in the given state
func (b *Board) Count(state CellState) int {
	n := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if c == state {
				n++
			}
		}
	}
	return n
}
