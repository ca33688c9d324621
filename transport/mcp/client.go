package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/render"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Merge Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Merge Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the board up, down, left or right. Equal tiles that collide merge into
one tile worth their sum, and the merged value is added to your score. After
every move that changes the board a new 2 (90%) or 4 (10%) appears. Reach the
2048 tile and keep going until no move is left.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions / get_session / delete_session: Manage sessions
- game_state: Board, score and possible moves
- move: Slide the board once
- bulk_move: Up to 50 moves at once
- new_game: Start a fresh game in the same session
- move_history: View past moves of the session, all games included
- board_image: Board rendered as PNG
- list_configs: List available configurations
- leaderboard: Best recorded games
- game_instructions: Rules and strategy notes

Pass an intent with move and bulk_move: a sentence on what you expect the move to achieve.`),
	)

	c.registerTools()
}

var directionEnum = []string{"up", "down", "left", "right"}

func withSessionID() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func withNewGame() mcp.ToolOption {
	return mcp.WithBoolean("new_game", mcp.Description("Start a new game before moving"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional config selection"),
		mcp.WithString("config_id", mcp.Description("Config to use, see list_configs (optional, defaults to classic)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		withSessionID(),
	), c.handleGetSession)

	c.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session. An unfinished game with moves is recorded on the leaderboard as abandoned."),
		withSessionID(),
	), c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current board, score and possible moves"),
		withSessionID(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("move",
		mcp.WithDescription("Slide every tile in a direction"),
		withSessionID(),
		mcp.WithString("direction", mcp.Required(), mcp.Enum(directionEnum...), mcp.Description("Direction to slide")),
		mcp.WithString("intent", mcp.Description("A sentence on why you chose this move")),
		withNewGame(),
	), c.handleMove)

	c.mcpServer.AddTool(mcp.NewTool("bulk_move",
		mcp.WithDescription(fmt.Sprintf("Execute up to %d moves in sequence. Stops early when the game ends.", engine.MaxBulkMoves)),
		withSessionID(),
		mcp.WithArray("moves",
			mcp.Required(),
			mcp.Description("Directions in the order to play them"),
			mcp.Items(map[string]interface{}{"type": "string", "enum": directionEnum}),
		),
		mcp.WithString("intent", mcp.Description("The plan behind the sequence, in a sentence or two")),
		withNewGame(),
	), c.handleBulkMove)

	c.mcpServer.AddTool(mcp.NewTool("new_game",
		mcp.WithDescription("Start a new game in the session. A game in progress is recorded as abandoned."),
		withSessionID(),
	), c.handleNewGame)

	c.mcpServer.AddTool(mcp.NewTool("move_history",
		mcp.WithDescription("Moves made in the session across every game it has played, newest first. Move numbers keep counting across games."),
		withSessionID(),
		mcp.WithNumber("page", mcp.Description("Page number, from 1"), mcp.Min(1)),
		mcp.WithNumber("limit", mcp.Description("Moves per page"), mcp.Min(1)),
	), c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.NewTool("board_image",
		mcp.WithDescription("Render the current board as a PNG image"),
		withSessionID(),
	), c.handleBoardImage)

	// Configuration and scores
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("Board sizes and rules that create_session accepts"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("leaderboard",
		mcp.WithDescription("Show the best recorded games"),
		mcp.WithNumber("limit", mcp.Description("Number of entries (default 10, max 100)"), mcp.Min(1), mcp.Max(100)),
	), c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Rules of the game and tips for playing it well"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score := uint64(0)
		if s.GameState != nil {
			score = s.GameState.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	newGame, _ := args["new_game"].(bool)

	// intent is for the caller's benefit only

	body := map[string]interface{}{
		"direction": direction,
		"new_game":  newGame,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	newGame, _ := args["new_game"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	body := map[string]interface{}{
		"moves":    moves,
		"new_game": newGame,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/new-game"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleBoardImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	resp, err := c.do(ctx, "GET", sessionPath(sessionID, "/board.png"), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read board image: %v", err)), nil
	}

	return mcp.NewToolResultImage(
		fmt.Sprintf("Board for session %s", sessionID),
		base64.StdEncoding.EncodeToString(data),
		"image/png",
	), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/leaderboard"
	if limit, ok := arguments(request)["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Count  int                   `json:"count"`
		Scores []*service.ScoreEntry `json:"scores"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(response.Scores)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tile Merge Game - Complete Instructions

GAME OBJECTIVE:
Merge equal tiles to build bigger ones. The classic target is the 2048 tile,
but the game continues past it until the board locks up.

GAME MECHANICS:
• A move slides every tile as far as it goes in one direction
• Two equal tiles that meet merge into one tile with double the value
• A tile merges at most once per move: [2,2,2,2] left becomes [4,4,.,.]
• With three in a row the pair nearest the wall merges first: [2,2,2,.] left becomes [4,2,.,.]
• Every merge adds the new tile's value to the score
• A move that changes nothing is allowed but does not spawn a tile
• After each changing move a 2 (90%) or 4 (10%) appears in a random empty cell
• Game Over: the board is full and no two neighbours are equal

BOARD LEGEND:
• Numbers are tile values, '.' is an empty cell
• Row 0 is printed first; "up" moves tiles toward it

MOVEMENT COMMANDS:
• up / down / left / right (w / s / a / d also work)
• bulk_move takes up to 50 moves and stops early when the game ends

STRATEGY NOTES:
• Keep the biggest tile in a corner and build along one edge
• Prefer two directions that keep that corner anchored (for example left and up)
• Use the third direction when stuck; avoid the fourth unless forced
• Check possible_moves in game_state before committing to a long bulk_move

LEADERBOARD:
• Finished games are recorded automatically
• Starting a new game or deleting a session records the old game as abandoned

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d | Moves: %d | Empty cells: %d\n", state.GridSize, state.GridSize, state.CurrentMovesCount, state.EmptyCells)
	b.WriteString(render.Text(state))

	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(state.PossibleMoves, ","))
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s", state.Message)
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Changed {
		fmt.Fprintf(&b, "✓ Moved %s (+%d)\n", result.Direction, result.ScoreDelta)
	} else {
		fmt.Fprintf(&b, "✗ Moving %s changed nothing\n", result.Direction)
	}

	if result.Spawned != nil {
		fmt.Fprintf(&b, "Spawned %d at (%d,%d)\n", result.Spawned.Value, result.Spawned.Position.X, result.Spawned.Position.Y)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	gridSize := 0
	configName := ""
	if result.GameState != nil {
		gridSize = result.GameState.GridSize
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, gridSize, gridSize)

	fmt.Fprintf(&b, "Executed %d/%d moves (%d changed the board)\n", result.MovesExecuted, result.RequestedMoves, result.ChangedMoves)
	fmt.Fprintf(&b, "Score: %d → %d (+%d) | Best tile: %d → %d\n",
		result.StartScore, result.EndScore, result.ScoreDelta, result.StartBestTile, result.EndBestTile)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	status := "✓"
	if !s.Changed {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s %s score=%d", s.Idx, s.Dir, status, s.ScoreAfter)
	if s.Merges > 0 {
		line += fmt.Sprintf(" merges=%d", s.Merges)
	}
	if s.Spawned != nil {
		line += fmt.Sprintf(" spawn=%d@(%d,%d)", s.Spawned.Value, s.Spawned.Position.X, s.Spawned.Position.Y)
	}
	if s.GameOver {
		line += " GAME OVER"
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total: %d\n\n", history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Changed {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s +%d [Score: %d]\n", move.MoveNumber, move.Action, status, move.ScoreDelta, move.Score)
	}

	return b.String()
}

func formatLeaderboard(entries []*service.ScoreEntry) string {
	if len(entries) == 0 {
		return "No games recorded yet"
	}

	var b strings.Builder
	b.WriteString("Leaderboard:\n\n")
	for i, e := range entries {
		status := "finished"
		if !e.Finished {
			status = "abandoned"
		}
		fmt.Fprintf(&b, "%d. %d points, best tile %d, %d moves (%s, %dx%d, %s)\n",
			i+1, e.Score, e.BestTile, e.Moves, e.ConfigName, e.GridSize, e.GridSize, status)
	}
	return b.String()
}
