package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var (
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrSessionNotFound = errors.New("session not found")
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   ScoreStore
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithScoreStore records finished and abandoned games in store
func WithScoreStore(store ScoreStore) Option {
	return func(s *gameServiceImpl) {
		s.scores = store
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: config '%s' not found. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: config '%s' not found. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the input configName if provided, otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", session.ID).Str("config", configID).Msg("session created")
	return s.sessionInfo(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// Touching the session writes LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session, s.getConfigID(session.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session. An unfinished game with moves goes to
// the leaderboard as abandoned.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		s.recordScore(ctx, sess)
	}
	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, newGame bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if newGame {
		events = append(events, s.startNewGame(ctx, sess))
	}

	step, stepEvents, err := s.applyMove(ctx, sess, dir, 1)
	if err != nil {
		return nil, err
	}
	events = append(events, stepEvents...)

	state := sess.Engine.GetState()
	log.Debug().
		Str("session", sessionID).
		Str("dir", dir.String()).
		Bool("changed", step.Changed).
		Uint64("score", state.Score).
		Bool("game_over", state.GameOver).
		Msg("move")

	return &MoveResult{
		Success:    step.Changed,
		Changed:    step.Changed,
		Direction:  dir.String(),
		ScoreDelta: step.ScoreAfter - step.ScoreBefore,
		Spawned:    step.Spawned,
		GameState:  state,
		Message:    state.Message,
		Events:     events,
		Step:       &step,
	}, nil
}

// BulkMove executes multiple moves in sequence. Moves that leave the board
// unchanged are executed and reported; the sequence stops at an invalid
// direction or when the game ends.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, newGame bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if newGame {
		result.Events = append(result.Events, s.startNewGame(ctx, sess))
	}

	startState := sess.Engine.GetState()
	result.StartScore = startState.Score
	result.StartBestTile = startState.BestTile

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = fmt.Sprintf("game over before move %d", i+1)
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}

		step, events, err := s.applyMove(ctx, sess, dir, i+1)
		if err != nil {
			return nil, err
		}
		result.MovesExecuted++
		if step.Changed {
			result.ChangedMoves++
		}
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, events...)
	}

	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndScore = endState.Score
	result.EndBestTile = endState.BestTile
	result.ScoreDelta = endState.Score - result.StartScore
	result.GameOver = endState.GameOver
	result.Message = endState.Message
	result.PossibleMoves = endState.PossibleMoves

	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = "game_over"
	}

	log.Debug().
		Str("session", sessionID).
		Int("requested", result.RequestedMoves).
		Int("executed", result.MovesExecuted).
		Int("changed", result.ChangedMoves).
		Uint64("score", result.EndScore).
		Str("stop", result.StopReasonCode).
		Msg("bulk_move")

	return result, nil
}

// NewGame replaces the session's game with a fresh one
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	s.startNewGame(ctx, sess)
	return sess.Engine.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of moves
	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	// Ensure moves is not nil
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Leaderboard returns the best recorded games, highest score first
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*ScoreEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if s.scores == nil {
		return []*ScoreEntry{}, nil
	}

	entries, err := s.scores.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// startNewGame records the current game if it was played and starts a new one
func (s *gameServiceImpl) startNewGame(ctx context.Context, sess *Session) GameEvent {
	s.recordScore(ctx, sess)
	state := sess.Engine.NewGame()
	return GameEvent{
		Type:      EventNewGame,
		Message:   fmt.Sprintf("New %dx%d game started", state.GridSize, state.GridSize),
		Timestamp: time.Now(),
	}
}

// applyMove runs one move and derives its step record and events
func (s *gameServiceImpl) applyMove(ctx context.Context, sess *Session, dir engine.Direction, idx int) (StepInfo, []GameEvent, error) {
	scoreBefore := sess.Engine.Score()
	bestBefore := sess.Engine.BestTile()
	tilesBefore := engine.CountTiles(sess.Engine.Grid())

	changed, err := sess.Engine.Move(dir)
	if err != nil {
		return StepInfo{}, nil, err
	}

	step := StepInfo{
		Idx:         idx,
		Dir:         dir.String(),
		Changed:     changed,
		ScoreBefore: scoreBefore,
		ScoreAfter:  sess.Engine.Score(),
		GameOver:    sess.Engine.IsGameOver(),
	}

	now := time.Now()
	if !changed {
		return step, []GameEvent{{
			Type:      EventNoChange,
			Message:   fmt.Sprintf("Moving %s changed nothing", dir),
			Timestamp: now,
		}}, nil
	}

	if last := sess.Engine.GetLastMove(); last != nil {
		step.Spawned = last.Spawned
	}

	tilesAfter := engine.CountTiles(sess.Engine.Grid())
	if step.Spawned != nil {
		tilesAfter--
	}
	step.Merges = tilesBefore - tilesAfter

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s", dir),
		Timestamp: now,
	}}
	if step.Merges > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("%d merge(s) for %d points", step.Merges, step.ScoreAfter-step.ScoreBefore),
			Timestamp: now,
		})
	}
	if step.Spawned != nil {
		pos := step.Spawned.Position
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d tile at (%d,%d)", step.Spawned.Value, pos.X, pos.Y),
			Timestamp: now,
			Position:  &pos,
			Value:     step.Spawned.Value,
		})
	}
	winValue := engine.TileValue(engine.WinningExponent)
	if best := sess.Engine.BestTile(); bestBefore < winValue && best >= winValue {
		events = append(events, GameEvent{
			Type:      EventWinTile,
			Message:   fmt.Sprintf("Reached the %d tile!", best),
			Timestamp: now,
			Value:     best,
		})
	}
	if step.GameOver {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   sess.Engine.GetState().Message,
			Timestamp: now,
		})
		s.recordScore(ctx, sess)
	}

	return step, events, nil
}

// recordScore stores the session's current game on the leaderboard once.
// Games without moves are skipped. Store failures are logged and never
// fail the calling operation.
func (s *gameServiceImpl) recordScore(ctx context.Context, sess *Session) {
	if s.scores == nil {
		return
	}
	state := sess.Engine.GetState()
	if state.CurrentMovesCount == 0 || sess.RecordedGameID == state.GameID {
		return
	}
	sess.RecordedGameID = state.GameID

	entry := &ScoreEntry{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		GameID:     state.GameID,
		ConfigName: sess.Config.Name,
		GridSize:   state.GridSize,
		Score:      state.Score,
		BestTile:   state.BestTile,
		Moves:      state.CurrentMovesCount,
		Finished:   state.GameOver,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.scores.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Str("game", state.GameID).Msg("record score")
		return
	}
	log.Info().
		Str("session", sess.ID).
		Uint64("score", entry.Score).
		Uint32("best_tile", entry.BestTile).
		Bool("finished", entry.Finished).
		Msg("score recorded")
}
