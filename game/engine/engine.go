package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	NewGame() *GameState
	IsGameOver() bool
	Score() uint64
	BestTile() uint32
	Snapshot() [][]uint32

	// Movement operations
	Move(direction Direction) (bool, error)
	CanMove(direction Direction) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It owns exactly one game.
type GameEngine struct {
	grid    *Grid
	spawner *Spawner
	score   uint64
	over    bool
	state   *GameState
	config  *GameConfig
}

// NewEngine creates a new game engine with the provided configuration and
// starts the first game. A nil rng selects a source seeded from the OS, or
// from config.Seed when the config fixes one.
func NewEngine(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = sourceForConfig(config)
	}

	e := &GameEngine{
		config:  config,
		spawner: NewSpawner(rng),
		state: &GameState{
			MoveHistory:  []MoveHistoryEntry{},
			CurrentMoves: []MoveHistoryEntry{},
		},
	}
	e.NewGame()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults(rng RandomSource) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), rng)
	if err != nil {
		// The default config always validates
		panic(err)
	}
	return e
}

func sourceForConfig(config *GameConfig) RandomSource {
	if config.Seed != nil {
		return NewRandomSource(*config.Seed)
	}
	return NewSeededRandomSource()
}

// NewGame replaces the current game with a fresh one holding two tiles
func (e *GameEngine) NewGame() *GameState {
	grid, err := NewGrid(e.config.GridSize)
	if err != nil {
		// Config was validated on the way in
		panic(err)
	}
	e.grid = grid
	e.score = 0
	e.over = false
	e.spawner.Spawn(e.grid)
	e.spawner.Spawn(e.grid)

	// Preserve cumulative history and totals; clear only the current segment
	e.state.GameID = uuid.NewString()
	e.state.ConfigName = e.config.Name
	e.state.Message = e.config.Messages.Welcome
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.GetState()
}

// GetState returns a snapshot of the current game. It does not modify the
// engine, so concurrent readers only need a read lock.
func (e *GameEngine) GetState() *GameState {
	state := *e.state
	state.GridSize = e.grid.Size()
	state.Grid = e.grid.Rows()
	state.Tiles = valuesToInts(e.grid.Values())
	state.Score = e.score
	state.BestTile = e.grid.BestTileValue()
	state.EmptyCells = e.grid.CountEmpty()
	state.GameOver = e.over
	state.PossibleMoves = e.GetPossibleMoves()
	return &state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.over
}

// Score returns the current score
func (e *GameEngine) Score() uint64 {
	return e.score
}

// BestTile returns the value of the largest tile on the board
func (e *GameEngine) BestTile() uint32 {
	return e.grid.BestTileValue()
}

// Snapshot returns tile values row by row, row 0 on top
func (e *GameEngine) Snapshot() [][]uint32 {
	return e.grid.Values()
}

// Grid returns a copy of the board
func (e *GameEngine) Grid() *Grid {
	return e.grid.Clone()
}

// Move slides the board in the given direction. When the board changes the
// score grows by the merge total, one tile is spawned and the game over
// check runs. Moves on a finished game are ignored.
func (e *GameEngine) Move(direction Direction) (bool, error) {
	if !direction.Valid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidDirection, int(direction))
	}
	if e.over {
		return false, nil
	}

	changed, delta, err := e.grid.Slide(direction)
	if err != nil {
		return false, err
	}

	var spawned *SpawnedTile
	if changed {
		e.score += delta
		if tile, ok := e.spawner.Spawn(e.grid); ok {
			spawned = &tile
		}
		if e.grid.IsTerminal() {
			e.over = true
		}
	}

	e.state.Message = e.moveMessage(changed)
	e.state.addMoveToHistory(MoveHistoryEntry{
		Action:     direction.String(),
		Changed:    changed,
		ScoreDelta: delta,
		Score:      e.score,
		Spawned:    spawned,
		GameOver:   e.over,
	})

	return changed, nil
}

func (e *GameEngine) moveMessage(changed bool) string {
	msgs := e.config.Messages
	switch {
	case e.over:
		return formatScore(msgs.GameOver, e.score)
	case changed:
		return formatScore(msgs.Moved, e.score)
	default:
		return msgs.NoChange
	}
}

func formatScore(format string, score uint64) string {
	if strings.Contains(format, "%d") {
		return fmt.Sprintf(format, score)
	}
	return format
}

// CanMove reports whether moving in direction would change the board
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.over || !direction.Valid() {
		return false
	}
	changed, _, _ := e.grid.Clone().Slide(direction)
	return changed
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir.String())
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state.ConfigName = config.Name
	e.NewGame()
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove executes multiple moves in sequence, returning the changed flag
// for each. It stops at the first invalid direction or when the game ends.
func (e *GameEngine) BulkMove(moves []Direction) ([]bool, error) {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		changed, err := e.Move(direction)
		if err != nil {
			return results, err
		}
		results = append(results, changed)
	}

	return results, nil
}
