package engine

// IsTerminal reports whether no move can change the grid: it is full and
// no two orthogonal neighbours can merge.
func (g *Grid) IsTerminal() bool {
	if g.CountEmpty() > 0 {
		return false
	}
	return !g.hasHorizontalPair() && !g.hasVerticalPair()
}

func (g *Grid) hasHorizontalPair() bool {
	for y := 0; y < g.size; y++ {
		for x := 0; x+1 < g.size; x++ {
			if mergeable(g.Get(x, y), g.Get(x+1, y)) {
				return true
			}
		}
	}
	return false
}

func (g *Grid) hasVerticalPair() bool {
	for x := 0; x < g.size; x++ {
		for y := 0; y+1 < g.size; y++ {
			if mergeable(g.Get(x, y), g.Get(x, y+1)) {
				return true
			}
		}
	}
	return false
}

func mergeable(a, b Exponent) bool {
	return a == b && a < MaxTileExponent
}
