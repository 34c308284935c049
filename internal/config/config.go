package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToolConfig holds the generator's configuration settings.
type ToolConfig struct {
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Database   DatabaseConfig   `yaml:"database"`
	Stream     StreamConfig     `yaml:"stream"`
}

// GenerationConfig selects what to generate and how hard to try.
type GenerationConfig struct {
	// DataDir is the root of the maps/ and tiles/ definition layout.
	DataDir string `yaml:"data_dir"`

	// Map is the map descriptor name under DataDir/maps.
	Map string `yaml:"map"`

	// Seed for the first attempt. 0 picks a seed from the clock.
	Seed int64 `yaml:"seed"`

	// MaxAttempts is how many seeds to try before giving up.
	MaxAttempts int `yaml:"max_attempts"`
}

// OutputConfig controls how a finished map is written.
type OutputConfig struct {
	// Format is "text" or "yaml".
	Format string `yaml:"format"`

	// Path to write to. Empty writes to stdout.
	Path string `yaml:"path"`
}

// DatabaseConfig holds run history storage settings.
type DatabaseConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// StreamConfig holds settings for the live generation feed.
type StreamConfig struct {
	Enabled bool `yaml:"enabled"`

	// Address to listen on, e.g. ":8080".
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// Connection limits; 0 means unlimited.
	MaxClients int `yaml:"max_clients"`
	MaxPerIP   int `yaml:"max_per_ip"`
}

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// DefaultConfig returns a ToolConfig with defaults that work out of the box.
func DefaultConfig() *ToolConfig {
	return &ToolConfig{
		Generation: GenerationConfig{
			DataDir:     "data",
			Map:         "meadow",
			MaxAttempts: 10,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Database: DatabaseConfig{
			Enabled:    false,
			Driver:     "sqlite",
			SQLitePath: "data/runs.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Stream: StreamConfig{
			Enabled:        false,
			Address:        ":8080",
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 4096,
			MaxClients:     64,
			MaxPerIP:       4,
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, returns default config.
func LoadConfig(path string) (*ToolConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return config, err
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	if err := config.applyEnv(); err != nil {
		return config, err
	}

	return config, nil
}

// applyEnv overrides file settings from TILEGEN_* environment variables
func (c *ToolConfig) applyEnv() error {
	if v := os.Getenv("TILEGEN_DATA_DIR"); v != "" {
		c.Generation.DataDir = v
	}
	if v := os.Getenv("TILEGEN_MAP"); v != "" {
		c.Generation.Map = v
	}
	if v := os.Getenv("TILEGEN_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TILEGEN_SEED %q: %w", v, err)
		}
		c.Generation.Seed = seed
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c *ToolConfig) Validate() error {
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", c.Generation.MaxAttempts)
	}
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatText, FormatYAML, c.Output.Format)
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
		}
	}
	return nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *StreamConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
