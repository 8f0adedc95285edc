package world

import (
	"fmt"
	"math"
)

// Grid dimensions. The outer grid is Size×Size macro cells, each
// owning an InnerSize×InnerSize micro grid.
const (
	Size      = 10
	InnerSize = 10
)

// NoOwner marks an unclaimed cell.
const NoOwner = -1

// Coord addresses a cell at either grid level.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns "(x, y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Distance returns the straight-line distance to another coordinate.
func (c Coord) Distance(o Coord) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Manhattan returns the grid distance to another coordinate.
func (c Coord) Manhattan(o Coord) int {
	dx := c.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := c.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// InBounds reports whether the coordinate lies inside a size×size grid.
func (c Coord) InBounds(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

var orthogonal = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Neighbors returns the in-bounds orthogonal neighbors of c in a
// size×size grid, in fixed (-x, +x, -y, +y) order.
func (c Coord) Neighbors(size int) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range orthogonal {
		n := Coord{X: c.X + d[0], Y: c.Y + d[1]}
		if n.InBounds(size) {
			out = append(out, n)
		}
	}
	return out
}

// MicroCell is one tile of a macro cell's inner grid.
type MicroCell struct {
	Terrain     Terrain     `json:"terrain"`
	HasResource bool        `json:"has_resource"`
	Resource    Resource    `json:"resource,omitempty"` // meaningful only when HasResource
	Development Development `json:"development"`
	Population  int         `json:"population"`
	Road        bool        `json:"road"`
	Level       int         `json:"level"` // settlement level, 1-10
	ArmyID      int         `json:"-"`     // occupying army, 0 = none
}

// MicroGrid is the inner detail layer of a single macro cell.
type MicroGrid [InnerSize][InnerSize]MicroCell

// MacroCell is one tile of the outer world grid, owning a micro grid.
type MacroCell struct {
	Owner       int         `json:"owner"` // nation id, NoOwner if unclaimed
	Terrain     Terrain     `json:"terrain"`
	Resources   Stock       `json:"resources"`
	Development Development `json:"development"`
	Population  int         `json:"population"`
	Inner       *MicroGrid  `json:"-"`
}

// Claimed reports whether a nation owns this cell.
func (m *MacroCell) Claimed() bool { return m.Owner != NoOwner }

// Grid is the full two-level world map. It exclusively owns every
// MacroCell and, through them, every MicroCell.
type Grid struct {
	cells [Size][Size]MacroCell
}

// NewGrid returns a grid of unclaimed land cells with empty micro
// grids. Terrain content comes from the Generator.
func NewGrid() *Grid {
	g := &Grid{}
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			g.cells[x][y] = MacroCell{
				Owner: NoOwner,
				Inner: &MicroGrid{},
			}
		}
	}
	return g
}

// At returns the macro cell at c. Panics on out-of-range coordinates;
// callers stay in bounds via Coord.InBounds and Neighbors.
func (g *Grid) At(c Coord) *MacroCell {
	return &g.cells[c.X][c.Y]
}

// Micro returns the micro cell at inner coordinate ic within the
// macro cell at c.
func (g *Grid) Micro(c, ic Coord) *MicroCell {
	return &g.cells[c.X][c.Y].Inner[ic.X][ic.Y]
}

// Each visits every macro cell in row-major order.
func (g *Grid) Each(fn func(c Coord, cell *MacroCell)) {
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			fn(Coord{X: x, Y: y}, &g.cells[x][y])
		}
	}
}

// EachMicro visits every micro cell of the macro cell at c in
// row-major order.
func (g *Grid) EachMicro(c Coord, fn func(ic Coord, cell *MicroCell)) {
	inner := g.cells[c.X][c.Y].Inner
	for x := 0; x < InnerSize; x++ {
		for y := 0; y < InnerSize; y++ {
			fn(Coord{X: x, Y: y}, &inner[x][y])
		}
	}
}

// FindTerrain returns every macro coordinate with the given terrain,
// in row-major order.
func (g *Grid) FindTerrain(t Terrain) []Coord {
	var out []Coord
	g.Each(func(c Coord, cell *MacroCell) {
		if cell.Terrain == t {
			out = append(out, c)
		}
	})
	return out
}

// CountOwned returns the number of macro cells owned by the nation.
func (g *Grid) CountOwned(nationID int) int {
	n := 0
	g.Each(func(_ Coord, cell *MacroCell) {
		if cell.Owner == nationID {
			n++
		}
	})
	return n
}
