package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("config validation")

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d", ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidConfig)
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("%w: messages.game_over is required", ErrInvalidConfig)
	}

	// Validate format strings
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("%w: messages.game_over must contain %%d for the final score", ErrInvalidConfig)
	}
	if config.Messages.Moved != "" && strings.Count(config.Messages.Moved, "%") != strings.Count(config.Messages.Moved, "%d") {
		return fmt.Errorf("%w: messages.moved may only use %%d for the score", ErrInvalidConfig)
	}
	if strings.Contains(config.Messages.NoChange, "%") {
		return fmt.Errorf("%w: messages.no_change must not contain format verbs", ErrInvalidConfig)
	}

	return nil
}

// DefaultGameConfig returns the built-in classic 4x4 configuration
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Classic",
		Description: "The classic 4x4 board",
		GridSize:    DefaultGridSize,
	}
	config.Messages.Welcome = "Join the tiles, get to 2048! Use up, down, left or right."
	config.Messages.Moved = "Score: %d"
	config.Messages.NoChange = "Nothing moved, try another direction"
	config.Messages.GameOver = "No moves left! Game over with %d points."
	return config
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configDir := "configs"
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		configDir = dir
	}
	configPath := filepath.Join(configDir, configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configName, err)
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}

	return config, nil
}
