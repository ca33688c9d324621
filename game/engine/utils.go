package engine

// TileValue converts an exponent to its tile value. Exponent 0 yields 1.
func TileValue(e Exponent) uint32 {
	return uint32(1) << e
}

// ExponentOf returns the exponent of a power-of-two tile value, or false if
// v is not one.
func ExponentOf(v uint32) (Exponent, bool) {
	if v == 0 || v&(v-1) != 0 {
		return 0, false
	}
	var e Exponent
	for v > 1 {
		v >>= 1
		e++
	}
	return e, true
}

// CountTiles returns the number of non-empty cells
func CountTiles(g *Grid) int {
	return g.size*g.size - g.CountEmpty()
}

// SumTiles adds up every tile value on the board
func SumTiles(g *Grid) uint64 {
	var sum uint64
	for _, e := range g.cells {
		if e != 0 {
			sum += uint64(TileValue(e))
		}
	}
	return sum
}

// HasWinningTile reports whether the board holds a 2048 tile or better
func HasWinningTile(g *Grid) bool {
	return g.MaxExponent() >= WinningExponent
}

func valuesToInts(values [][]uint32) [][]int {
	out := make([][]int, len(values))
	for y, row := range values {
		out[y] = make([]int, len(row))
		for x, v := range row {
			out[y][x] = int(v)
		}
	}
	return out
}
