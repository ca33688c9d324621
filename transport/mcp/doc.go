// Package mcp provides a Model Context Protocol server for the Tile Merge Game.
//
// The server is a thin proxy: every tool call becomes a request against the
// REST API, so MCP agents, HTTP clients and WebSocket viewers all share the
// same sessions.
//
// MCP Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - game_state: Board as text with score and possible moves
//   - move: Single slide with an optional new_game flag
//   - bulk_move: Up to 50 slides in one call
//   - new_game: Start over in the same session
//   - move_history: Paginated past moves
//   - board_image: The board as a PNG image
//   - list_configs, leaderboard, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the main server, handled by HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Tool failures, including API errors, are returned as error results rather
// than protocol errors so agents can read the message and retry.
package mcp
