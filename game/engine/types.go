package engine

// Exponent is the base-2 logarithm of a tile value. Zero marks an empty cell.
type Exponent uint8

const (
	// Validation constants
	MinGridSize         = 2
	MaxGridSize         = 8
	DefaultGridSize     = 4
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256

	// WinningExponent is the traditional 2048 tile. The engine reports it but
	// never ends a game because of it.
	WinningExponent Exponent = 11

	// MaxTileExponent is the largest exponent whose tile value fits a
	// uint32. Tiles at this exponent do not merge further.
	MaxTileExponent Exponent = 31

	// Spawn distribution: one draw in SpawnOdds yields a 4, the rest a 2.
	SpawnOdds              = 10
	SpawnFourDraw          = 9
	SpawnTwoExp   Exponent = 1
	SpawnFourExp  Exponent = 2
)

// Position represents x,y coordinates. X is the column, Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpawnedTile describes a tile placed by the spawner
type SpawnedTile struct {
	Position Position `json:"position"`
	Exponent Exponent `json:"exponent"`
	Value    uint32   `json:"value"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GridSize    int     `json:"grid_size"`
	Seed        *uint64 `json:"seed,omitempty"` // Fixed seed for reproducible games
	Messages    struct {
		Welcome  string `json:"welcome"`
		Moved    string `json:"moved"`
		NoChange string `json:"no_change"`
		GameOver string `json:"game_over"`
	} `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	GameID     string  `json:"game_id"`
	GridSize   int     `json:"grid_size"`
	Grid       [][]int `json:"grid"`  // Exponents, row-major, row 0 on top
	Tiles      [][]int `json:"tiles"` // Tile values, 0 for empty cells
	Score      uint64  `json:"score"`
	BestTile   uint32  `json:"best_tile"`
	EmptyCells int     `json:"empty_cells"`
	GameOver   bool    `json:"game_over"`
	Message    string  `json:"message"`
	ConfigName string  `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves of the current game. MoveHistory
	// stays cumulative across new games.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     string       `json:"action"`
	Changed    bool         `json:"changed"`
	ScoreDelta uint64       `json:"score_delta"`
	Score      uint64       `json:"score"`
	Spawned    *SpawnedTile `json:"spawned,omitempty"`
	GameOver   bool         `json:"game_over"`
	Timestamp  int64        `json:"timestamp"`
	MoveNumber int          `json:"move_number"`
}
