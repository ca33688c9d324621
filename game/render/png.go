package render

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	cellSize   = 96
	cellGap    = 12
	cornerSize = 8
)

var (
	boardColor     = gg.Hex("#b3a397")
	emptyColor     = gg.Hex("#c7b9ac")
	darkTextColor  = gg.Hex("#6c635b")
	lightTextColor = gg.Hex("#f8f5f0")

	// Indexed by exponent. Anything past 2048 reuses the last color.
	tileColors = []gg.RGBA{
		emptyColor,
		gg.Hex("#eee4da"), // 2
		gg.Hex("#ede0c8"), // 4
		gg.Hex("#f2b179"), // 8
		gg.Hex("#f59563"), // 16
		gg.Hex("#f67c5f"), // 32
		gg.Hex("#f75f3b"), // 64
		gg.Hex("#edcf72"), // 128
		gg.Hex("#edcc61"), // 256
		gg.Hex("#edc850"), // 512
		gg.Hex("#edc53f"), // 1024
		gg.Hex("#edc22e"), // 2048
	}
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(gobold.TTF)
	})
	return fontSource, fontErr
}

// TileColor returns the fill color for a tile value. Zero is an empty cell.
func TileColor(value int) gg.RGBA {
	exp := 0
	for v := value; v > 1; v >>= 1 {
		exp++
	}
	if exp >= len(tileColors) {
		return tileColors[len(tileColors)-1]
	}
	return tileColors[exp]
}

// TextColor returns the label color for a tile value
func TextColor(value int) gg.RGBA {
	if value < 8 {
		return darkTextColor
	}
	return lightTextColor
}

// ImageSize returns the width (and height) in pixels of a board image
func ImageSize(gridSize int) int {
	return gridSize*cellSize + (gridSize+1)*cellGap
}

// PNG draws the board and writes it to w as a PNG image
func PNG(w io.Writer, tiles [][]int) error {
	source, err := loadFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	n := len(tiles)
	size := ImageSize(n)
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.ClearWithColor(boardColor)

	for y, row := range tiles {
		for x, v := range row {
			left := float64(cellGap + x*(cellSize+cellGap))
			top := float64(cellGap + y*(cellSize+cellGap))

			dc.SetColor(TileColor(v).Color())
			dc.DrawRoundedRectangle(left, top, cellSize, cellSize, cornerSize)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("fill tile: %w", err)
			}
			if v == 0 {
				continue
			}

			label := strconv.Itoa(v)
			dc.SetFont(source.Face(labelSize(len(label))))
			dc.SetColor(TextColor(v).Color())
			dc.DrawStringAnchored(label, left+cellSize/2, top+cellSize/2, 0.5, 0.5)
		}
	}

	return dc.EncodePNG(w)
}

func labelSize(digits int) float64 {
	switch {
	case digits <= 2:
		return 44
	case digits == 3:
		return 36
	case digits == 4:
		return 28
	default:
		return 22
	}
}
