package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidGridSize = errors.New("invalid grid size")

// Grid is a square board of tile exponents stored row-major.
type Grid struct {
	size  int
	cells []Exponent
}

// NewGrid creates an empty size x size grid
func NewGrid(size int) (*Grid, error) {
	if size < MinGridSize || size > MaxGridSize {
		return nil, fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidGridSize, MinGridSize, MaxGridSize, size)
	}
	return &Grid{
		size:  size,
		cells: make([]Exponent, size*size),
	}, nil
}

// GridFromRows builds a grid from exponent rows. Used by tests and tools that
// need a specific position.
func GridFromRows(rows [][]int) (*Grid, error) {
	g, err := NewGrid(len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGridSize, y, len(row), g.size)
		}
		for x, e := range row {
			if e < 0 || e > int(MaxTileExponent) {
				return nil, fmt.Errorf("exponent %d at (%d,%d) out of range", e, x, y)
			}
			g.cells[y*g.size+x] = Exponent(e)
		}
	}
	return g, nil
}

// Size returns the grid dimension N
func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) index(x, y int) int {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		panic(fmt.Sprintf("engine: cell (%d,%d) outside %dx%d grid", x, y, g.size, g.size))
	}
	return y*g.size + x
}

// Get returns the exponent at column x, row y
func (g *Grid) Get(x, y int) Exponent {
	return g.cells[g.index(x, y)]
}

// Set stores an exponent at column x, row y
func (g *Grid) Set(x, y int, e Exponent) {
	g.cells[g.index(x, y)] = e
}

// Reset empties every cell
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

// CountEmpty returns the number of empty cells
func (g *Grid) CountEmpty() int {
	count := 0
	for _, e := range g.cells {
		if e == 0 {
			count++
		}
	}
	return count
}

// EmptyCells lists empty positions in row-major order
func (g *Grid) EmptyCells() []Position {
	var empty []Position
	for i, e := range g.cells {
		if e == 0 {
			empty = append(empty, Position{X: i % g.size, Y: i / g.size})
		}
	}
	return empty
}

// MaxExponent returns the largest exponent on the board
func (g *Grid) MaxExponent() Exponent {
	var best Exponent
	for _, e := range g.cells {
		if e > best {
			best = e
		}
	}
	return best
}

// BestTileValue returns 2^(max exponent). An empty grid yields 1.
func (g *Grid) BestTileValue() uint32 {
	return TileValue(g.MaxExponent())
}

// Clone returns an independent copy
func (g *Grid) Clone() *Grid {
	cells := make([]Exponent, len(g.cells))
	copy(cells, g.cells)
	return &Grid{size: g.size, cells: cells}
}

// Equal reports whether both grids have the same size and cells
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns the exponents as rows of ints
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.size)
	for y := range rows {
		rows[y] = make([]int, g.size)
		for x := range rows[y] {
			rows[y][x] = int(g.cells[y*g.size+x])
		}
	}
	return rows
}

// Values returns tile values row by row; empty cells are 0
func (g *Grid) Values() [][]uint32 {
	values := make([][]uint32, g.size)
	for y := range values {
		values[y] = make([]uint32, g.size)
		for x := range values[y] {
			if e := g.cells[y*g.size+x]; e != 0 {
				values[y][x] = TileValue(e)
			}
		}
	}
	return values
}

// row returns the backing slice of row y; compaction works on it in place
func (g *Grid) row(y int) []Exponent {
	return g.cells[y*g.size : (y+1)*g.size]
}
