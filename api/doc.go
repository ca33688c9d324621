// Package api provides HTTP REST API handlers for the Tile Merge Game.
//
// The api package implements:
//   - Session management endpoints
//   - Move, bulk move and new game endpoints
//   - Configuration listing, lookup and creation
//   - The leaderboard
//   - Board rendering as PNG
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions        - Create a session ({"config_id": "mini"})
//   - GET    /api/sessions        - List sessions (?sort=created|accessed|score&order=asc|desc&limit=n)
//   - GET    /api/sessions/{id}   - Get a session
//   - DELETE /api/sessions/{id}   - Delete a session, recording an unfinished game
//
// Game Operations:
//   - GET  /api/sessions/{id}/state     - Current game state
//   - POST /api/sessions/{id}/move      - {"direction": "up", "new_game": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"], "new_game": false}
//   - POST /api/sessions/{id}/new-game  - Start over in the same session
//   - GET  /api/sessions/{id}/history   - Paginated moves (?page=1&limit=20&order=desc)
//   - GET  /api/sessions/{id}/board.png - Rendered board
//
// Configuration:
//   - GET  /api/configs        - List available configurations
//   - GET  /api/configs/{name} - Get one configuration
//   - POST /api/configs        - Validate and save a configuration
//
// Other:
//   - GET /api/leaderboard?limit=10 - Best recorded games
//   - GET /healthz                  - Liveness
//   - GET /ws?session={id}          - Live updates for one session
//
// Directions accept up, down, left and right, or the w, s, a and d keys.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
// unknown sessions and configs map to 404, bad directions and invalid
// configs to 400, anything else to 500.
//
//	{"error": "session ab12: session not found"}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
