package engine

import (
	"math/rand/v2"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]int
		expected bool
	}{
		{"alternating full grid", [][]int{
			{1, 2, 1, 2},
			{2, 1, 2, 1},
			{1, 2, 1, 2},
			{2, 1, 2, 1},
		}, true},
		{"one empty cell", [][]int{
			{1, 2, 1, 2},
			{2, 1, 2, 1},
			{1, 2, 0, 2},
			{2, 1, 2, 1},
		}, false},
		{"horizontal pair", [][]int{
			{1, 2, 1, 2},
			{2, 1, 2, 1},
			{1, 2, 1, 2},
			{2, 1, 1, 3},
		}, false},
		{"vertical pair", [][]int{
			{1, 2, 1, 2},
			{2, 1, 2, 1},
			{1, 2, 1, 3},
			{2, 1, 2, 3},
		}, false},
		{"2x2 locked", [][]int{
			{1, 2},
			{3, 4},
		}, true},
		{"empty grid", [][]int{
			{0, 0},
			{0, 0},
		}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := mustGrid(t, test.rows)
			if g.IsTerminal() != test.expected {
				t.Errorf("Expected IsTerminal=%v for %v", test.expected, test.rows)
			}
		})
	}
}

// IsTerminal must agree with "no direction changes the grid".
func TestIsTerminal_MatchesNoMoveChanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))

	for i := 0; i < 2000; i++ {
		n := MinGridSize + rng.IntN(3)
		rows := make([][]int, n)
		for y := range rows {
			rows[y] = make([]int, n)
			for x := range rows[y] {
				// Mostly full boards with few values so both outcomes occur
				if rng.IntN(20) > 0 {
					rows[y][x] = 1 + rng.IntN(4)
				}
			}
		}
		g := mustGrid(t, rows)

		anyChange := false
		for _, d := range Directions {
			changed, _, _ := g.Clone().Slide(d)
			anyChange = anyChange || changed
		}
		if g.IsTerminal() == anyChange {
			t.Fatalf("IsTerminal=%v but some move changes=%v for %v", g.IsTerminal(), anyChange, rows)
		}
	}
}
