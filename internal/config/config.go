package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Stats   StatsConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"3000"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// GameConfig holds phase timing and catalog configuration
type GameConfig struct {
	VotingSeconds  int    `env:"VOTING_SECONDS" envDefault:"30"`
	PlayingSeconds int    `env:"PLAYING_SECONDS" envDefault:"240"`
	RatingSeconds  int    `env:"RATING_SECONDS" envDefault:"30"`
	GraceSeconds   int    `env:"GRACE_SECONDS" envDefault:"2"`
	MusicFile      string `env:"MUSIC_FILE"` // empty means the embedded catalog
}

// StatsConfig holds stats store configuration
type StatsConfig struct {
	DBPath string `env:"STATS_DB" envDefault:"auxwheel.db"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load parses configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// VotingDuration returns the voting window length
func (c *GameConfig) VotingDuration() time.Duration {
	return time.Duration(c.VotingSeconds) * time.Second
}

// PlayingDuration returns the playback window length
func (c *GameConfig) PlayingDuration() time.Duration {
	return time.Duration(c.PlayingSeconds) * time.Second
}

// RatingDuration returns the rating window length
func (c *GameConfig) RatingDuration() time.Duration {
	return time.Duration(c.RatingSeconds) * time.Second
}

// GraceDelay returns the pause before delayed transitions
func (c *GameConfig) GraceDelay() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}
