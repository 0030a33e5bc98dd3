// internal/config/config.go
//
// Typed service configuration.
// Sources, later ones win:
//   1. built-in defaults (DefaultConfig)
//   2. optional YAML file (path argument, usually $WEDDING_CONFIG)
//   3. environment variables (.env is loaded by main via godotenv)

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Game     GameConfig     `yaml:"game"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Env          string `yaml:"env"` // "development" or "production"
	ClientOrigin string `yaml:"client_origin"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GameConfig holds word-search settings.
type GameConfig struct {
	WordsFile     string        `yaml:"words_file"` // empty: embedded list
	GridSize      int           `yaml:"grid_size"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AdminConfig holds the moderation console credentials and token settings.
type AdminConfig struct {
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	JWTSecret  string        `yaml:"jwt_secret"`
	JWTExpiry  time.Duration `yaml:"jwt_expiry"`
	CookieName string        `yaml:"cookie_name"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "5001",
			Env:          "development",
			ClientOrigin: "http://localhost:5173",
		},
		Database: DatabaseConfig{Path: "data/wedding.db"},
		Game: GameConfig{
			GridSize:      15,
			SessionTTL:    2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Admin: AdminConfig{
			Username:   "admin",
			Password:   "admin123",
			JWTSecret:  "dev_secret_change_me",
			JWTExpiry:  12 * time.Hour,
			CookieName: "wedding_admin",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty and the file exists) and the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Env = getEnv("ENV", c.Server.Env)
	c.Server.ClientOrigin = getEnv("CLIENT_ORIGIN", c.Server.ClientOrigin)

	c.Database.Path = getEnv("DB_PATH", c.Database.Path)

	c.Game.WordsFile = getEnv("WORDS_FILE", c.Game.WordsFile)
	c.Game.GridSize = getEnvInt("GRID_SIZE", c.Game.GridSize)
	c.Game.SessionTTL = getEnvDuration("GAME_TTL", c.Game.SessionTTL)
	c.Game.SweepInterval = getEnvDuration("SWEEP_INTERVAL", c.Game.SweepInterval)

	c.Admin.Username = getEnv("ADMIN_USERNAME", c.Admin.Username)
	c.Admin.Password = getEnv("ADMIN_PASSWORD", c.Admin.Password)
	c.Admin.JWTSecret = getEnv("JWT_SECRET", c.Admin.JWTSecret)
	c.Admin.JWTExpiry = getEnvDuration("JWT_EXPIRY", c.Admin.JWTExpiry)
	c.Admin.CookieName = getEnv("COOKIE_NAME", c.Admin.CookieName)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return errors.New("config: server port is empty")
	case c.Game.GridSize < 1:
		return fmt.Errorf("config: grid size %d must be positive", c.Game.GridSize)
	case c.Game.SessionTTL <= 0:
		return errors.New("config: session ttl must be positive")
	case c.Game.SweepInterval <= 0:
		return errors.New("config: sweep interval must be positive")
	case c.Admin.Username == "" || c.Admin.Password == "":
		return errors.New("config: admin credentials are empty")
	case c.Admin.JWTSecret == "":
		return errors.New("config: jwt secret is empty")
	}
	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value.
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getEnvInt returns an environment variable as an integer or a default value.
func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90m") or plain seconds ("5400").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
