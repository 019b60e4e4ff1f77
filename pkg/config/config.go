package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL        = "http://localhost:8000"
	DefaultMarkdownStyle = "dark"
)

// Environment variables that override values read from the config file.
const (
	EnvAPIURL     = "TWINCHAT_API_URL"
	EnvAPITimeout = "TWINCHAT_API_TIMEOUT"
	EnvLogLevel   = "TWINCHAT_LOG_LEVEL"
	EnvAuthFile   = "TWINCHAT_AUTH_FILE"
)

// Config represents the application configuration
type Config struct {
	API           APIConfig `json:"api"`
	AuthFile      string    `json:"auth_file"`
	MarkdownStyle string    `json:"markdown_style"`
	LogLevel      string    `json:"log_level"`
	LogFormat     string    `json:"log_format"`
	LogFile       string    `json:"log_file"`
}

// APIConfig holds the Digital Twin backend settings
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        DefaultAPIURL,
			TimeoutSeconds: 60,
		},
		AuthFile:      "",
		MarkdownStyle: DefaultMarkdownStyle,
		LogLevel:      "info",
		LogFormat:     "json",
		LogFile:       "",
	}
}

// Load loads configuration from the specified path.
// If the file doesn't exist, creates one with default values.
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Start from defaults so fields missing in older files keep sane values.
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if strings.TrimSpace(c.MarkdownStyle) == "" {
		c.MarkdownStyle = def.MarkdownStyle
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = def.LogFormat
	}
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Existing variables are not overwritten. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values from TWINCHAT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPITimeout)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvAPITimeout, v, err)
		}
		c.API.TimeoutSeconds = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAuthFile)); v != "" {
		c.AuthFile = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return fmt.Errorf("api base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url must be an absolute URL, got: %q", base)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url must use http or https, got: %q", u.Scheme)
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api timeout_seconds must be positive, got: %d", c.API.TimeoutSeconds)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error, got: %q", c.LogLevel)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got: %q", c.LogFormat)
	}

	switch strings.ToLower(strings.TrimSpace(c.MarkdownStyle)) {
	case "", "dark", "light", "notty", "ascii":
	default:
		return fmt.Errorf("markdown_style must be one of dark, light, notty, ascii, got: %q", c.MarkdownStyle)
	}

	return nil
}

// ResolvedAuthFile returns the credential file path, falling back to the default.
func (c Config) ResolvedAuthFile() string {
	if p := strings.TrimSpace(c.AuthFile); p != "" {
		return p
	}
	return filepath.Join(Dir(), "auth.json")
}

// Dir returns the per-user application directory.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return ".twinchat"
	}
	return filepath.Join(homeDir, ".twinchat")
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}
