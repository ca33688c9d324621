package engine

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

// lane builds a lane from tile values, 0 for empty
func lane(values ...uint32) []Exponent {
	out := make([]Exponent, len(values))
	for i, v := range values {
		if v == 0 {
			continue
		}
		e, ok := ExponentOf(v)
		if !ok {
			panic("not a power of two")
		}
		out[i] = e
	}
	return out
}

func TestCompactLane(t *testing.T) {
	tests := []struct {
		name     string
		input    []Exponent
		expected []Exponent
		score    uint64
		changed  bool
	}{
		{"pairs merge once each", lane(2, 2, 4, 4), lane(4, 8, 0, 0), 12, true},
		{"merge across gap", lane(2, 0, 0, 2), lane(4, 0, 0, 0), 4, true},
		{"alternating unchanged", lane(2, 4, 2, 4), lane(2, 4, 2, 4), 0, false},
		{"empty lane", lane(0, 0, 0, 0), lane(0, 0, 0, 0), 0, false},
		{"slide only", lane(0, 0, 0, 8), lane(8, 0, 0, 0), 0, true},
		{"three equal merge first pair", lane(2, 2, 2, 0), lane(4, 2, 0, 0), 4, true},
		{"four equal", lane(2, 2, 2, 2), lane(4, 4, 0, 0), 8, true},
		{"merged tile does not merge again", lane(4, 2, 2, 0), lane(4, 4, 0, 0), 4, true},
		{"merge result next to equal tile", lane(2, 2, 4, 0), lane(4, 4, 0, 0), 4, true},
		{"packed different", lane(2, 4, 0, 0), lane(2, 4, 0, 0), 0, false},
		{"gap then different", lane(2, 0, 4, 0), lane(2, 4, 0, 0), 0, true},
		{"two lane", lane(2, 2), lane(4, 0), 4, true},
		{"wide lane", lane(0, 2, 2, 0, 8, 8, 16, 0), lane(4, 16, 16, 0, 0, 0, 0, 0), 20, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := append([]Exponent(nil), test.input...)
			score, changed := compactLane(got)

			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("Expected lane %v, got %v", test.expected, got)
			}
			if score != test.score {
				t.Errorf("Expected score %d, got %d", test.score, score)
			}
			if changed != test.changed {
				t.Errorf("Expected changed=%v, got %v", test.changed, changed)
			}
		})
	}
}

func TestCompactLane_Laws(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 2000; i++ {
		n := MinGridSize + rng.IntN(MaxGridSize-MinGridSize+1)
		input := make([]Exponent, n)
		for j := range input {
			if rng.IntN(3) > 0 {
				input[j] = Exponent(1 + rng.IntN(4))
			}
		}
		out := append([]Exponent(nil), input...)
		score, changed := compactLane(out)

		// Non-empty cells are contiguous from index 0
		seenEmpty := false
		for _, e := range out {
			if e == 0 {
				seenEmpty = true
			} else if seenEmpty {
				t.Fatalf("Lane %v compacted to non-contiguous %v", input, out)
			}
		}

		// Tile sum is preserved and the score equals the value of merge results
		if laneSum(input) != laneSum(out) {
			t.Fatalf("Tile sum changed: %v -> %v", input, out)
		}
		merges := countTiles(input) - countTiles(out)
		if merges == 0 && score != 0 {
			t.Fatalf("Score %d without merges: %v -> %v", score, input, out)
		}
		// Each merge removes exactly one tile; at most half of the tiles can merge
		if merges*2 > countTiles(input) {
			t.Fatalf("Too many merges for %v -> %v", input, out)
		}

		if changed != !reflect.DeepEqual(input, out) {
			t.Fatalf("changed=%v does not match %v -> %v", changed, input, out)
		}
	}
}

// Merge-only expected score: replay the lane with an independent pairing.
func TestCompactLane_ScoreMatchesPairing(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	for i := 0; i < 1000; i++ {
		input := make([]Exponent, 6)
		for j := range input {
			if rng.IntN(4) > 0 {
				input[j] = Exponent(1 + rng.IntN(3))
			}
		}

		var tiles []Exponent
		for _, e := range input {
			if e != 0 {
				tiles = append(tiles, e)
			}
		}
		var expected []Exponent
		var expectedScore uint64
		for k := 0; k < len(tiles); k++ {
			if k+1 < len(tiles) && tiles[k] == tiles[k+1] {
				expected = append(expected, tiles[k]+1)
				expectedScore += uint64(TileValue(tiles[k] + 1))
				k++
				continue
			}
			expected = append(expected, tiles[k])
		}
		for len(expected) < len(input) {
			expected = append(expected, 0)
		}

		out := append([]Exponent(nil), input...)
		score, _ := compactLane(out)
		if !reflect.DeepEqual(out, expected) || score != expectedScore {
			t.Fatalf("Lane %v: expected %v/%d, got %v/%d", input, expected, expectedScore, out, score)
		}
	}
}

func laneSum(l []Exponent) uint64 {
	var sum uint64
	for _, e := range l {
		if e != 0 {
			sum += uint64(TileValue(e))
		}
	}
	return sum
}

func countTiles(l []Exponent) int {
	n := 0
	for _, e := range l {
		if e != 0 {
			n++
		}
	}
	return n
}
