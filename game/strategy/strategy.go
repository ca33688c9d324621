// Package strategy picks moves for automated players. The simulator in
// cmd/analyze drives an engine with it in process; cmd/autoplay rebuilds the
// grid from REST responses and asks the same strategies.
package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Names lists the strategies New understands
var Names = []string{"random", "corner", "greedy"}

// cornerOrder keeps the biggest tiles in the top left corner
var cornerOrder = []engine.Direction{engine.Up, engine.Left, engine.Right, engine.Down}

// Strategy chooses the next move for a grid. ok is false when no move
// changes the board.
type Strategy interface {
	NextMove(g *engine.Grid) (dir engine.Direction, ok bool)
}

// New returns the strategy registered under name
func New(name string, rng engine.RandomSource) (Strategy, error) {
	switch name {
	case "random":
		return &Random{rng: rng}, nil
	case "corner":
		return Corner{}, nil
	case "greedy":
		return Greedy{}, nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownStrategy, name, Names)
}

// Possible returns the directions that change g, in engine.Directions order
func Possible(g *engine.Grid) []engine.Direction {
	var dirs []engine.Direction
	for _, d := range engine.Directions {
		if changed, _, _ := g.Clone().Slide(d); changed {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Random picks uniformly among the moves that change the board
type Random struct {
	rng engine.RandomSource
}

func (r *Random) NextMove(g *engine.Grid) (engine.Direction, bool) {
	dirs := Possible(g)
	if len(dirs) == 0 {
		return 0, false
	}
	return dirs[r.rng.IntN(len(dirs))], true
}

// Corner takes the first move that changes the board from up, left, right,
// down.
type Corner struct{}

func (Corner) NextMove(g *engine.Grid) (engine.Direction, bool) {
	for _, d := range cornerOrder {
		if changed, _, _ := g.Clone().Slide(d); changed {
			return d, true
		}
	}
	return 0, false
}

// Greedy looks one move ahead: the highest merge score wins, then the most
// empty cells, then the corner order.
type Greedy struct{}

type candidate struct {
	dir   engine.Direction
	score uint64
	empty int
	rank  int
}

func (Greedy) NextMove(g *engine.Grid) (engine.Direction, bool) {
	var candidates []candidate
	for rank, d := range cornerOrder {
		next := g.Clone()
		changed, delta, _ := next.Slide(d)
		if !changed {
			continue
		}
		candidates = append(candidates, candidate{dir: d, score: delta, empty: next.CountEmpty(), rank: rank})
	}
	if len(candidates) == 0 {
		return 0, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.empty != b.empty {
			return a.empty > b.empty
		}
		return a.rank < b.rank
	})
	return candidates[0].dir, true
}
