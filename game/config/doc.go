// Package config provides configuration management for the Tile Merge Game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//   - Process settings read from the environment
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines the board size, an optional fixed seed for
// reproducible games, and the messages shown to the player:
//
//	{
//	  "name": "Classic",
//	  "description": "The original 4x4 board",
//	  "grid_size": 4,
//	  "messages": {
//	    "welcome": "Join the tiles and get to 2048!",
//	    "moved": "Score: %d",
//	    "no_change": "Nothing moved. Try another direction.",
//	    "game_over": "No moves left. Final score: %d"
//	  }
//	}
//
// Available Configurations:
//   - classic: the 4x4 board
//   - mini: a 3x3 board that fills up fast
//   - big: a roomy 6x6 board
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("mini")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Settings:
//
// LoadSettings reads CONFIG_DIR, SCORES_DB, REDIS_ADDR, REDIS_KEY, LOG_LEVEL,
// SESSION_TTL and the NGROK_* variables into a Settings value.
package config
