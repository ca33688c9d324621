// Package engine provides the core game logic for the Tile Merge Game.
//
// The engine package implements the puzzle mechanics including:
//   - A square grid of tile exponents (0 = empty, e = tile 2^e)
//   - Lane compaction with single-merge-per-pass scoring
//   - Directional moves built from one canonical slide and quarter turns
//   - Random tile spawning from an injectable random source
//   - Game over detection
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine, which owns exactly one game (grid, score and
// game over flag). Grid is the storage model. GameState is the JSON snapshot
// handed to transports, while GameConfig defines the board size and messages
// loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, engine.NewSeededRandomSource())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	changed, err := gameEngine.Move(engine.Left)
//	state := gameEngine.GetState()
//
// Directions:
//
// Row 0 is the top of the board and column 0 is its left edge. Left compacts
// every row toward column 0, Right toward the last column, Up compacts every
// column toward row 0 and Down toward the last row. Only Left is implemented
// directly; the other three rotate the grid clockwise, slide left, and rotate
// back.
//
// Concurrency:
//
// A GameEngine is not safe for concurrent use. Hosts that share an engine
// between goroutines (see the session and service packages) must serialize
// access themselves.
package engine
