// Package config provides YAML configuration loading for the graph engine
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ali01/graphd/internal/auth"
	"github.com/ali01/graphd/internal/db"
	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration loaded from YAML
type Config struct {
	Server   ServerConfig   `yaml:"server"`   // HTTP admin surface settings
	Database DatabaseConfig `yaml:"database"` // PostgreSQL connection
	Engine   EngineConfig   `yaml:"engine"`   // session/query limits
	Auth     AuthConfig     `yaml:"auth"`     // authenticator settings
}

// ServerConfig holds HTTP admin-surface configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// EngineConfig holds session manager and query execution limits
type EngineConfig struct {
	MaxConnections     int           `yaml:"max_connections"`      // session manager connection cap
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"` // idle session reclamation
	MaxQueryMemory     int64         `yaml:"max_query_memory"`     // per-query memory tracker limit, bytes
	SpillThreshold     int           `yaml:"spill_threshold"`      // percent of MaxQueryMemory that triggers spill
	MaxSequenceStmts   int           `yaml:"max_sequence_stmts"`   // max statements per `;`-sequence
}

// AuthConfig holds authenticator configuration, mirroring auth.Config's
// yaml-facing shape.
type AuthConfig struct {
	EnableAuthorize            bool   `yaml:"enable_authorize"`
	FailedLoginAttempts        uint32 `yaml:"failed_login_attempts"`
	DefaultUsername            string `yaml:"default_username"`
	DefaultPassword            string `yaml:"default_password"`
	ForceChangeDefaultPassword bool   `yaml:"force_change_default_password"`
}

// ToAuthConfig converts the YAML-facing AuthConfig into auth.Config,
// threading the engine's session idle timeout through since the source
// keeps both settings on one AuthConfig struct.
func (a AuthConfig) ToAuthConfig(sessionIdleTimeout time.Duration) auth.Config {
	return auth.Config{
		EnableAuthorize:            a.EnableAuthorize,
		FailedLoginAttempts:        a.FailedLoginAttempts,
		SessionIdleTimeoutSecs:     uint32(sessionIdleTimeout.Seconds()),
		DefaultUsername:            a.DefaultUsername,
		DefaultPassword:            a.DefaultPassword,
		ForceChangeDefaultPassword: a.ForceChangeDefaultPassword,
	}
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "graphd",
			Password: "graphd",
			DBName:   "graphd",
			SSLMode:  "disable",
		},
		Engine: EngineConfig{
			MaxConnections:     1000,
			SessionIdleTimeout: 30 * time.Minute,
			MaxQueryMemory:     256 * 1024 * 1024, // 256MB
			SpillThreshold:     80,
			MaxSequenceStmts:   100,
		},
		Auth: AuthConfig{
			EnableAuthorize:            true,
			FailedLoginAttempts:        3,
			DefaultUsername:            "root",
			DefaultPassword:            "graphd",
			ForceChangeDefaultPassword: true,
		},
	}
}

// LoadFromYAML loads configuration from a YAML file with defaults
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is controlled by application
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, overlay YAML values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Load is an alias for LoadFromYAML, matching SPEC_FULL's
// config.Load(path string) (*Config, error) naming.
func Load(path string) (*Config, error) {
	return LoadFromYAML(path)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Engine.MaxConnections <= 0 {
		return fmt.Errorf("engine max connections must be positive")
	}

	if c.Engine.MaxQueryMemory <= 0 {
		return fmt.Errorf("engine max query memory must be positive")
	}

	if c.Engine.SpillThreshold <= 0 || c.Engine.SpillThreshold > 100 {
		return fmt.Errorf("engine spill threshold must be in (0, 100]")
	}

	if c.Engine.MaxSequenceStmts <= 0 {
		return fmt.Errorf("engine max sequence statements must be positive")
	}

	return nil
}

// GetDBConfig converts database config to db.Config
func (c *Config) GetDBConfig() db.Config {
	return db.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		DBName:   c.Database.DBName,
		SSLMode:  c.Database.SSLMode,
	}
}
