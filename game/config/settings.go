package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds process level options read from the environment. Game
// rules live in the JSON files under ConfigDir.
type Settings struct {
	ConfigDir     string        `env:"CONFIG_DIR" envDefault:"configs"`
	DefaultConfig string        `env:"DEFAULT_CONFIG"` // overrides classic.json as the default
	ScoresDB      string        `env:"SCORES_DB" envDefault:"scores.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisKey      string        `env:"REDIS_KEY" envDefault:"tilemerge:leaderboard"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &s, nil
}
