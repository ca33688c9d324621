package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Text renders the board as a boxed grid with the score above it. Row 0 is
// printed first.
func Text(state *engine.GameState) string {
	width := cellWidth(state)

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d  Best: %d\n", state.Score, state.BestTile)

	border := "+" + strings.Repeat(strings.Repeat("-", width+2)+"+", state.GridSize) + "\n"
	b.WriteString(border)
	for _, row := range state.Tiles {
		b.WriteString("|")
		for _, v := range row {
			label := "."
			if v != 0 {
				label = strconv.Itoa(v)
			}
			fmt.Fprintf(&b, " %*s |", width, label)
		}
		b.WriteString("\n")
		b.WriteString(border)
	}

	if state.GameOver {
		b.WriteString("GAME OVER\n")
	}
	return b.String()
}

func cellWidth(state *engine.GameState) int {
	width := 4
	for _, row := range state.Tiles {
		for _, v := range row {
			if n := len(strconv.Itoa(v)); n > width {
				width = n
			}
		}
	}
	return width
}
