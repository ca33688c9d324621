// Package service provides the business logic layer for the Tile Merge Game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Move processing with per-step traces and events
//   - Leaderboard recording of finished and abandoned games
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// ScoreStore persists score records for the leaderboard.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session maintains its own game engine
// instance with independent state; the service serializes access to them.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	store, _ := scores.NewSQLiteStore("scores.db")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithScoreStore(store))
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Execute moves
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left", false)
//
// Scores:
//
// A game is recorded once: when it ends, or when it is abandoned by starting
// a new game or deleting the session after at least one move.
package service
