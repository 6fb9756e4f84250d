// Package config handles loading, parsing, and validating application
// configuration. It defines the structure for configuration settings,
// provides default values, loads settings from YAML files, and applies
// overrides from environment variables.
// file: internal/config/config.go.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/alexchoi0/swissknife-mcp/internal/logging"
)

// ServerConfig contains settings for the MCP server itself.
type ServerConfig struct {
	// Name is the server name reported to clients during initialization.
	Name string `yaml:"name"`
	// Version is the server version reported to clients; when empty the
	// build version is used.
	Version string `yaml:"version,omitempty"`
	// Transport selects the wire transport, "stdio" or "sse".
	Transport string `yaml:"transport"`
	// Port is the network port the server listens on when using the SSE
	// transport. Ignored for stdio.
	Port int `yaml:"port"`
	// Instructions is optional usage guidance returned to clients during
	// initialization.
	Instructions string `yaml:"instructions,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// WebSearchConfig configures the web search tool provider.
type WebSearchConfig struct {
	// Enabled turns the provider on. It also requires an API key, from
	// here, the environment, or the secret store.
	Enabled bool `yaml:"enabled"`
	// APIKey authenticates against the search API. Prefer supplying it
	// via TAVILY_API_KEY or the secret store over the config file.
	APIKey string `yaml:"api_key,omitempty"`
	// BaseURL overrides the search API endpoint, mainly for tests.
	BaseURL string `yaml:"base_url,omitempty"`
}

// MemoryConfig configures the persistent memory provider.
type MemoryConfig struct {
	// Enabled turns the provider on.
	Enabled bool `yaml:"enabled"`
	// DBPath is the SQLite database file. Supports '~' expansion.
	DBPath string `yaml:"db_path"`
}

// FilesConfig configures the file resource provider.
type FilesConfig struct {
	// Enabled turns the provider on.
	Enabled bool `yaml:"enabled"`
	// Root is the directory exposed as file resources. Supports '~'
	// expansion.
	Root string `yaml:"root"`
	// Ignore lists glob patterns (doublestar syntax) for paths that are
	// never exposed.
	Ignore []string `yaml:"ignore,omitempty"`
}

// ProvidersConfig aggregates the per-provider sections.
type ProvidersConfig struct {
	WebSearch WebSearchConfig `yaml:"websearch"`
	Memory    MemoryConfig    `yaml:"memory"`
	Files     FilesConfig     `yaml:"files"`
}

// SecretsConfig controls where credentials are stored when the OS keyring
// is unavailable.
type SecretsConfig struct {
	// FallbackPath is the file used when no keyring is available.
	// Supports '~' expansion.
	FallbackPath string `yaml:"fallback_path"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Providers ProvidersConfig `yaml:"providers"`
	Secrets   SecretsConfig   `yaml:"secrets"`
}

// DefaultConfig returns a configuration populated with default values and
// initial environment-supplied credentials.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Name:      "swissknife",
			Transport: "stdio",
			Port:      8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Providers: ProvidersConfig{
			WebSearch: WebSearchConfig{
				Enabled: true,
				APIKey:  os.Getenv("TAVILY_API_KEY"),
			},
			Memory: MemoryConfig{
				Enabled: true,
				DBPath:  defaultStatePath("memory.db"),
			},
			Files: FilesConfig{
				Enabled: false,
				Ignore:  []string{"**/.git/**", "**/node_modules/**"},
			},
		},
		Secrets: SecretsConfig{
			FallbackPath: defaultStatePath("secrets.json"),
		},
	}
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

// defaultStatePath returns a path under the user's config directory, or a
// bare filename when the home directory is unknown.
func defaultStatePath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, ".config", "swissknife", name)
}

// LoadFromFile loads configuration from the specified YAML file path. It
// starts with default values, merges the values from the YAML file, then
// applies environment variable overrides. Supports '~' expansion.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path comes from a command-line flag or default.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(config, logging.GetLogger("config_load"))
	return config, nil
}

// Validate checks settings that would make the server unable to start.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "sse":
	default:
		return errors.Newf("unsupported transport %q (want stdio or sse)", c.Server.Transport)
	}
	if c.Server.Port <= 0 || c.Server.Port >= 65536 {
		return errors.Newf("invalid server port %d", c.Server.Port)
	}
	if c.Providers.Files.Enabled && c.Providers.Files.Root == "" {
		return errors.New("files provider enabled but no root directory configured")
	}
	return nil
}

// ExpandPath expands a leading '~' to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory to expand path")
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// applyEnvironmentOverrides applies configuration overrides from
// environment variables, which take precedence over values from defaults
// or the config file.
func applyEnvironmentOverrides(config *Config, logger logging.Logger) {
	if name := os.Getenv("SWISSKNIFE_SERVER_NAME"); name != "" {
		logger.Debug("Overriding server name from environment.", "envVar", "SWISSKNIFE_SERVER_NAME", "value", name)
		config.Server.Name = name
	}
	if transportEnv := os.Getenv("SWISSKNIFE_TRANSPORT"); transportEnv != "" {
		logger.Debug("Overriding transport from environment.", "envVar", "SWISSKNIFE_TRANSPORT", "value", transportEnv)
		config.Server.Transport = transportEnv
	}
	if portStr := os.Getenv("SWISSKNIFE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			logger.Debug("Overriding server port from environment.", "envVar", "SWISSKNIFE_PORT", "value", port)
			config.Server.Port = port
		} else {
			logger.Warn("Invalid SWISSKNIFE_PORT environment variable ignored.", "value", portStr, "error", err)
		}
	}

	if level := os.Getenv("SWISSKNIFE_LOG_LEVEL"); level != "" {
		logger.Debug("Overriding log level from environment.", "envVar", "SWISSKNIFE_LOG_LEVEL", "value", level)
		config.Logging.Level = level
	}
	if format := os.Getenv("SWISSKNIFE_LOG_FORMAT"); format != "" {
		logger.Debug("Overriding log format from environment.", "envVar", "SWISSKNIFE_LOG_FORMAT", "value", format)
		config.Logging.Format = format
	}

	if apiKey := os.Getenv("TAVILY_API_KEY"); apiKey != "" {
		config.Providers.WebSearch.APIKey = apiKey
	}
	if config.Providers.WebSearch.Enabled && config.Providers.WebSearch.APIKey == "" {
		logger.Debug("Web search API key not set in environment or config file; will fall back to the secret store.")
	}

	if dbPath := os.Getenv("SWISSKNIFE_MEMORY_DB"); dbPath != "" {
		if expanded, err := ExpandPath(dbPath); err == nil {
			logger.Debug("Overriding memory DB path from environment.", "envVar", "SWISSKNIFE_MEMORY_DB", "value", expanded)
			config.Providers.Memory.DBPath = expanded
		} else {
			logger.Warn("Could not expand '~' in SWISSKNIFE_MEMORY_DB env var.", "error", err)
		}
	}

	if root := os.Getenv("SWISSKNIFE_FILES_ROOT"); root != "" {
		if expanded, err := ExpandPath(root); err == nil {
			logger.Debug("Overriding files root from environment.", "envVar", "SWISSKNIFE_FILES_ROOT", "value", expanded)
			config.Providers.Files.Root = expanded
			config.Providers.Files.Enabled = true
		} else {
			logger.Warn("Could not expand '~' in SWISSKNIFE_FILES_ROOT env var.", "error", err)
		}
	}
}
