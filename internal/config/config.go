package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read once at startup by ApplyEnv.
const (
	EnvDatabaseURL = "TURSO_DATABASE_URL"
	EnvAuthToken   = "TURSO_AUTH_TOKEN"
	EnvDBPath      = "SAMRUDDHI_DB_PATH"
	EnvLogLevel    = "SAMRUDDHI_LOG_LEVEL"
	EnvStaticDir   = "SAMRUDDHI_STATIC_DIR"
	EnvPort        = "PORT"
	EnvConfigPath  = "SAMRUDDHI_CONFIG_PATH"
)

// DefaultDBPath is the conventional local database file.
const DefaultDBPath = "database.db"

var validate = validator.New()

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" validate:"required"`
	Server   ServerConfig   `yaml:"server"   validate:"required"`
	Logging  LoggingConfig  `yaml:"logging"  validate:"required"`
	Health   HealthConfig   `yaml:"health"`
}

// DatabaseConfig selects and tunes the persistence backend.
// URL and AuthToken both non-empty means the hosted database is used.
type DatabaseConfig struct {
	Path           string        `yaml:"path"                 validate:"required"`
	URL            string        `yaml:"url,omitempty"`
	AuthToken      string        `yaml:"auth_token,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"      validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host      string  `yaml:"host"       validate:"required"`
	Port      int     `yaml:"port"       validate:"required,min=1,max=65535"`
	StaticDir string  `yaml:"static_dir"`
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"       validate:"required,oneof=debug info warning warn error"`
	Format     string `yaml:"format"      validate:"required,oneof=console json"`
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size"    validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age"     validate:"gte=0"`
}

// HealthConfig controls the periodic backend check. An empty schedule disables it.
type HealthConfig struct {
	Schedule string `yaml:"schedule"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           DefaultDBPath,
			ConnectTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      5002,
			StaticDir: "static",
			RateLimit: 20,
			RateBurst: 40,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
		Health: HealthConfig{
			Schedule: "@every 30s",
		},
	}
}

// Load reads a yaml file on top of DefaultConfig
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment values onto c. It is meant to be called
// once at process start; nothing else in the module reads the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvDatabaseURL); ok {
		c.Database.URL = v
	}
	if v, ok := lookup(EnvAuthToken); ok {
		c.Database.AuthToken = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvStaticDir); ok && v != "" {
		c.Server.StaticDir = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfigPath returns the config file path: $SAMRUDDHI_CONFIG_PATH,
// otherwise samruddhi.yaml in the working directory.
func GetConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return "samruddhi.yaml"
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
