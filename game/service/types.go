package service

import (
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Event types emitted by game operations
const (
	EventMove     = "move"
	EventNoChange = "no_change"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventGameOver = "game_over"
	EventNewGame  = "new_game"
	EventWinTile  = "win_tile"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation. Success mirrors
// Changed: a move that leaves the board untouched did not succeed.
type MoveResult struct {
	Success    bool                `json:"success"`
	Changed    bool                `json:"changed"`
	Direction  string              `json:"direction"`
	ScoreDelta uint64              `json:"score_delta"`
	Spawned    *engine.SpawnedTile `json:"spawned,omitempty"`
	GameState  *engine.GameState   `json:"game_state"`
	Message    string              `json:"message"`
	Events     []GameEvent         `json:"events,omitempty"`
	Step       *StepInfo           `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	ChangedMoves   int               `json:"changed_moves"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // Machine-friendly code: invalid_direction|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore    uint64 `json:"start_score"`
	EndScore      uint64 `json:"end_score"`
	ScoreDelta    uint64 `json:"score_delta"`
	StartBestTile uint32 `json:"start_best_tile"`
	EndBestTile   uint32 `json:"end_best_tile"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int                 `json:"idx"`
	Dir         string              `json:"dir"`
	Changed     bool                `json:"changed"`
	ScoreBefore uint64              `json:"score_before"`
	ScoreAfter  uint64              `json:"score_after"`
	Merges      int                 `json:"merges"`
	Spawned     *engine.SpawnedTile `json:"spawned,omitempty"`
	GameOver    bool                `json:"game_over,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // see the Event* constants
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     uint32           `json:"value,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
}

// ScoreEntry is one finished or abandoned game on the leaderboard
type ScoreEntry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	GameID     string    `json:"game_id"`
	ConfigName string    `json:"config_name"`
	GridSize   int       `json:"grid_size"`
	Score      uint64    `json:"score"`
	BestTile   uint32    `json:"best_tile"`
	Moves      int       `json:"moves"`
	Finished   bool      `json:"finished"` // false when the game was abandoned
	RecordedAt time.Time `json:"recorded_at"`
}
