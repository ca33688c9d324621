// Package websocket provides WebSocket transport for the Tile Merge Game.
//
// The websocket package implements:
//   - Session-aware live viewers of a game
//   - State and event broadcasting after every change
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a pair of
// goroutines for reading and writing. Only the hub's Run goroutine touches
// the client registry.
//
// Message Protocol:
//
// Clients are read-only. Every frame sent to them is one JSON Message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "move", "data": {...MoveResult}}
//
// Session Integration:
//
// Clients pick their session with the ?session=ab12 query parameter.
// Messages are delivered only to clients watching the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Backpressure:
//
// Broadcasts never block the caller. When the hub queue is full the message
// is dropped and logged; a viewer whose own buffer is full is disconnected.
package websocket
