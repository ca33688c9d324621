package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func grid(t *testing.T, rows [][]int) *engine.Grid {
	t.Helper()
	g, err := engine.GridFromRows(rows)
	require.NoError(t, err)
	return g
}

// Exponents: 1=2, 2=4, 3=8
var (
	lockedRows = [][]int{
		{1, 2},
		{2, 1},
	}
	topLeftRows = [][]int{
		{1, 0},
		{0, 0},
	}
)

func TestNew(t *testing.T) {
	for _, name := range Names {
		s, err := New(name, engine.NewRandomSource(1))
		require.NoError(t, err, name)
		assert.NotNil(t, s, name)
	}

	_, err := New("minimax", nil)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestPossible(t *testing.T) {
	assert.Empty(t, Possible(grid(t, lockedRows)))
	assert.Equal(t, []engine.Direction{engine.Down, engine.Right}, Possible(grid(t, topLeftRows)))
}

func TestPossible_DoesNotModifyGrid(t *testing.T) {
	g := grid(t, [][]int{
		{1, 1},
		{0, 0},
	})
	before := g.Clone()

	Possible(g)

	assert.True(t, g.Equal(before))
}

func TestStrategies_NoMove(t *testing.T) {
	for _, name := range Names {
		s, err := New(name, engine.NewRandomSource(1))
		require.NoError(t, err)

		_, ok := s.NextMove(grid(t, lockedRows))
		assert.False(t, ok, name)
	}
}

func TestStrategies_OnlyPossibleMoves(t *testing.T) {
	g := grid(t, topLeftRows)
	for _, name := range Names {
		s, err := New(name, engine.NewRandomSource(7))
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			d, ok := s.NextMove(g)
			require.True(t, ok, name)
			assert.Contains(t, []engine.Direction{engine.Down, engine.Right}, d, name)
		}
	}
}

func TestCorner_PrefersUpThenLeft(t *testing.T) {
	d, ok := Corner{}.NextMove(grid(t, [][]int{
		{0, 0},
		{1, 0},
	}))
	require.True(t, ok)
	assert.Equal(t, engine.Up, d)

	d, ok = Corner{}.NextMove(grid(t, [][]int{
		{0, 1},
		{0, 0},
	}))
	require.True(t, ok)
	assert.Equal(t, engine.Left, d)
}

func TestGreedy_TakesTheMerge(t *testing.T) {
	// Only a vertical move merges the two 8s; up wins the tie with down
	d, ok := Greedy{}.NextMove(grid(t, [][]int{
		{3, 1, 0},
		{3, 2, 0},
		{0, 0, 0},
	}))
	require.True(t, ok)
	assert.Equal(t, engine.Up, d)

	// Horizontal merge of the 4s beats any vertical move
	d, ok = Greedy{}.NextMove(grid(t, [][]int{
		{2, 2, 1},
		{1, 0, 0},
		{0, 0, 0},
	}))
	require.True(t, ok)
	assert.Equal(t, engine.Left, d)
}

func TestRandom_Deterministic(t *testing.T) {
	g := grid(t, [][]int{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 0},
	})

	a := &Random{rng: engine.NewRandomSource(42)}
	b := &Random{rng: engine.NewRandomSource(42)}
	for i := 0; i < 10; i++ {
		da, _ := a.NextMove(g)
		db, _ := b.NextMove(g)
		assert.Equal(t, da, db)
	}
}
