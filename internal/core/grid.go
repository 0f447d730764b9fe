package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOccupied is returned when placing onto a cell that already holds an occupant.
	ErrOccupied = errors.New("cell occupied")
	// ErrVacant is returned when removing or moving from a cell with no occupant.
	ErrVacant = errors.New("cell vacant")
)

// Point is a cell coordinate on a grid.
type Point struct {
	X, Y int
}

// Add returns p shifted by d without wrapping.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// vonNeumann lists the orthogonal offsets in scan order: north, west, east, south.
var vonNeumann = [4]Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// OccupancyGrid is a toroidal grid where each cell holds at most one
// occupant id. Cells are stored in row-major order.
type OccupancyGrid struct {
	W, H int
	data []int32
}

// NewOccupancyGrid allocates an empty grid with the given dimensions.
func NewOccupancyGrid(w, h int) *OccupancyGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &OccupancyGrid{W: w, H: h, data: make([]int32, w*h)}
}

// Size returns the grid dimensions.
func (g *OccupancyGrid) Size() Size { return Size{W: g.W, H: g.H} }

// Index returns the linear slice index for p after wrapping.
func (g *OccupancyGrid) Index(p Point) int {
	p = g.Wrap(p)
	return p.Y*g.W + p.X
}

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *OccupancyGrid) Wrap(p Point) Point {
	p.X = (p.X%g.W + g.W) % g.W
	p.Y = (p.Y%g.H + g.H) % g.H
	return p
}

// Translate returns p shifted by d with toroidal wrapping.
func (g *OccupancyGrid) Translate(p, d Point) Point {
	return g.Wrap(p.Add(d))
}

// Neighborhood returns the distinct orthogonal neighbors of p in scan order.
// On grids narrower than three cells some offsets wrap onto the same cell;
// those duplicates, and p itself, are dropped.
func (g *OccupancyGrid) Neighborhood(p Point) []Point {
	p = g.Wrap(p)
	out := make([]Point, 0, len(vonNeumann))
	for _, d := range vonNeumann {
		n := g.Translate(p, d)
		if n == p || containsPoint(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Empty reports whether p holds no occupant.
func (g *OccupancyGrid) Empty(p Point) bool {
	return g.data[g.Index(p)] == 0
}

// At returns the occupant id at p.
func (g *OccupancyGrid) At(p Point) (int, bool) {
	v := g.data[g.Index(p)]
	if v == 0 {
		return 0, false
	}
	return int(v - 1), true
}

// Place puts id onto p.
func (g *OccupancyGrid) Place(id int, p Point) error {
	idx := g.Index(p)
	if g.data[idx] != 0 {
		return fmt.Errorf("place %d at %v: %w", id, g.Wrap(p), ErrOccupied)
	}
	g.data[idx] = int32(id + 1)
	return nil
}

// Remove clears p and returns the id that was there.
func (g *OccupancyGrid) Remove(p Point) (int, error) {
	idx := g.Index(p)
	v := g.data[idx]
	if v == 0 {
		return 0, fmt.Errorf("remove at %v: %w", g.Wrap(p), ErrVacant)
	}
	g.data[idx] = 0
	return int(v - 1), nil
}

// Move relocates the occupant of from onto to. The grid is left unchanged
// when from is vacant or to is occupied.
func (g *OccupancyGrid) Move(from, to Point) error {
	src, dst := g.Index(from), g.Index(to)
	if g.data[src] == 0 {
		return fmt.Errorf("move from %v: %w", g.Wrap(from), ErrVacant)
	}
	if src == dst {
		return nil
	}
	if g.data[dst] != 0 {
		return fmt.Errorf("move to %v: %w", g.Wrap(to), ErrOccupied)
	}
	g.data[dst], g.data[src] = g.data[src], 0
	return nil
}

// Count returns the number of occupied cells.
func (g *OccupancyGrid) Count() int {
	n := 0
	for _, v := range g.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clear empties every cell.
func (g *OccupancyGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

func containsPoint(ps []Point, p Point) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
