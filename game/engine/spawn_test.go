package engine

import (
	"testing"
)

// scriptedSource replays a fixed sequence of draws
type scriptedSource struct {
	draws []int
	calls []int
}

func (s *scriptedSource) IntN(n int) int {
	s.calls = append(s.calls, n)
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v % n
}

func TestSpawner_PlacesTileOnChosenEmptyCell(t *testing.T) {
	g := mustGrid(t, [][]int{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	// Empty cells in row-major order: (1,0) (2,0) (0,1) (2,1) (0,2) (1,2)
	rng := &scriptedSource{draws: []int{3, 0}}
	spawner := NewSpawner(rng)

	tile, ok := spawner.Spawn(g)
	if !ok {
		t.Fatal("Expected a tile to be spawned")
	}
	if tile.Position != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected tile at (2,1), got %v", tile.Position)
	}
	if tile.Exponent != SpawnTwoExp || tile.Value != 2 {
		t.Errorf("Expected a 2 tile, got exponent %d value %d", tile.Exponent, tile.Value)
	}
	if g.Get(2, 1) != SpawnTwoExp {
		t.Errorf("Expected grid to hold the new tile, got %d", g.Get(2, 1))
	}
	if len(rng.calls) != 2 || rng.calls[0] != 6 || rng.calls[1] != SpawnOdds {
		t.Errorf("Expected draws IntN(6) then IntN(%d), got %v", SpawnOdds, rng.calls)
	}
}

func TestSpawner_FourOnNinthDraw(t *testing.T) {
	tests := []struct {
		draw     int
		expected Exponent
	}{
		{0, SpawnTwoExp},
		{5, SpawnTwoExp},
		{8, SpawnTwoExp},
		{9, SpawnFourExp},
	}

	for _, test := range tests {
		g, _ := NewGrid(4)
		spawner := NewSpawner(&scriptedSource{draws: []int{0, test.draw}})

		tile, _ := spawner.Spawn(g)
		if tile.Exponent != test.expected {
			t.Errorf("Draw %d: expected exponent %d, got %d", test.draw, test.expected, tile.Exponent)
		}
	}
}

func TestSpawner_FullGrid(t *testing.T) {
	g := mustGrid(t, [][]int{
		{1, 2},
		{3, 4},
	})
	before := g.Clone()
	rng := &scriptedSource{}

	if _, ok := NewSpawner(rng).Spawn(g); ok {
		t.Error("Expected no spawn on a full grid")
	}
	if !g.Equal(before) {
		t.Error("Full grid must not change")
	}
	if len(rng.calls) != 0 {
		t.Errorf("Expected no random draws, got %v", rng.calls)
	}
}

func TestSpawner_Distribution(t *testing.T) {
	// Cycling the value draw through 0..9 must give exactly one 4 in ten
	draws := make([]int, 0, 2000)
	for i := 0; i < 1000; i++ {
		draws = append(draws, 0, i%SpawnOdds)
	}
	spawner := NewSpawner(&scriptedSource{draws: draws})

	fours := 0
	for i := 0; i < 1000; i++ {
		g, _ := NewGrid(4)
		tile, _ := spawner.Spawn(g)
		if tile.Exponent == SpawnFourExp {
			fours++
		}
	}
	if fours != 100 {
		t.Errorf("Expected exactly 100 fours, got %d", fours)
	}
}

func TestSpawner_StatisticalDistribution(t *testing.T) {
	spawner := NewSpawner(NewRandomSource(2024))

	const trials = 20000
	fours := 0
	for i := 0; i < trials; i++ {
		g, _ := NewGrid(4)
		tile, ok := spawner.Spawn(g)
		if !ok {
			t.Fatal("Expected spawn on empty grid")
		}
		if tile.Exponent == SpawnFourExp {
			fours++
		}
	}

	ratio := float64(fours) / trials
	if ratio < 0.08 || ratio > 0.12 {
		t.Errorf("Expected about 10%% fours, got %.3f", ratio)
	}
}

func TestNewRandomSource_Deterministic(t *testing.T) {
	a := NewRandomSource(99)
	b := NewRandomSource(99)

	for i := 0; i < 100; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatal("Sources with the same seed diverged")
		}
	}
}
