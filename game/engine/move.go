package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four moves
type Direction int

const (
	Left Direction = iota
	Down
	Right
	Up
)

// Directions lists every move in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// String returns the lowercase name used by the API and history
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the four moves
func (d Direction) Valid() bool {
	return d >= Left && d <= Up
}

// quarterTurns is the number of clockwise rotations that bring d onto the
// canonical left slide. The values match the iota order above.
func (d Direction) quarterTurns() int {
	return int(d)
}

// ParseDirection accepts direction names and the w/a/s/d keys
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Slide compacts every lane of the grid in direction d. The grid is only
// modified when changed is true.
func (g *Grid) Slide(d Direction) (changed bool, scoreDelta uint64, err error) {
	if !d.Valid() {
		return false, 0, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}

	turns := d.quarterTurns()
	work := g.Clone()
	for i := 0; i < turns; i++ {
		work.rotateClockwise()
	}

	for y := 0; y < work.size; y++ {
		delta, rowChanged := compactLane(work.row(y))
		scoreDelta += delta
		changed = changed || rowChanged
	}
	if !changed {
		return false, 0, nil
	}

	for i := turns; i%4 != 0; i++ {
		work.rotateClockwise()
	}
	copy(g.cells, work.cells)
	return true, scoreDelta, nil
}

// rotateClockwise turns the grid a quarter turn clockwise in place
func (g *Grid) rotateClockwise() {
	n := g.size
	rotated := make([]Exponent, len(g.cells))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			rotated[y*n+x] = g.cells[(n-1-x)*n+y]
		}
	}
	g.cells = rotated
}
