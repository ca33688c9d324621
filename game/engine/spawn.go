package engine

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// RandomSource supplies the draws consumed by the spawner. IntN returns a
// value in [0, n).
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a deterministic source for the given seed
func NewRandomSource(seed uint64) RandomSource {
	return mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeededRandomSource returns a source seeded from the operating system.
// It falls back to the runtime's global generator if the seed cannot be read.
func NewSeededRandomSource() RandomSource {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return NewRandomSource(mathrand.Uint64())
	}
	return NewRandomSource(binary.LittleEndian.Uint64(buf[:]))
}

// Spawner places new tiles on a grid
type Spawner struct {
	rng RandomSource
}

// NewSpawner creates a spawner drawing from rng
func NewSpawner(rng RandomSource) *Spawner {
	return &Spawner{rng: rng}
}

// Spawn places one tile on a uniformly chosen empty cell: a 2 with
// probability 0.9, a 4 otherwise. It reports false when the grid is full.
func (s *Spawner) Spawn(g *Grid) (SpawnedTile, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return SpawnedTile{}, false
	}

	pos := empty[s.rng.IntN(len(empty))]
	exp := SpawnTwoExp
	if s.rng.IntN(SpawnOdds) == SpawnFourDraw {
		exp = SpawnFourExp
	}
	g.Set(pos.X, pos.Y, exp)

	return SpawnedTile{
		Position: pos,
		Exponent: exp,
		Value:    TileValue(exp),
	}, true
}
