// file: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_ProvidesUsableDefaults(t *testing.T) {
	t.Setenv("SWISSKNIFE_TRANSPORT", "")
	t.Setenv("SWISSKNIFE_PORT", "")

	cfg := DefaultConfig()

	assert.Equal(t, "swissknife", cfg.Server.Name, "The default server name should be set.")
	assert.Equal(t, "stdio", cfg.Server.Transport, "The default transport should be stdio.")
	assert.Equal(t, 8080, cfg.Server.Port, "The default port should be set.")
	assert.Equal(t, "info", cfg.Logging.Level, "The default log level should be info.")
	assert.True(t, cfg.Providers.Memory.Enabled, "The memory provider should be enabled by default.")
	assert.False(t, cfg.Providers.Files.Enabled, "The files provider should be disabled until a root is configured.")
	assert.NoError(t, cfg.Validate(), "The default configuration should validate.")
}

func TestLoadFromFile_MergesFileOverDefaults(t *testing.T) {
	t.Setenv("SWISSKNIFE_SERVER_NAME", "")
	t.Setenv("SWISSKNIFE_TRANSPORT", "")
	t.Setenv("SWISSKNIFE_PORT", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  name: test-server
  transport: sse
  port: 9090
logging:
  level: debug
providers:
  memory:
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "Writing the test config file should succeed.")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err, "Loading a valid config file should succeed.")

	assert.Equal(t, "test-server", cfg.Server.Name, "The file value should override the default name.")
	assert.Equal(t, "sse", cfg.Server.Transport, "The file value should override the default transport.")
	assert.Equal(t, 9090, cfg.Server.Port, "The file value should override the default port.")
	assert.Equal(t, "debug", cfg.Logging.Level, "The file value should override the default log level.")
	assert.False(t, cfg.Providers.Memory.Enabled, "The file should be able to disable a provider.")
	assert.True(t, cfg.Providers.WebSearch.Enabled, "Sections absent from the file should keep their defaults.")
}

func TestLoadFromFile_ReportsMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "Loading a nonexistent config file should fail.")
	assert.Contains(t, err.Error(), "failed to read config file", "The error should name the failing step.")
}

func TestLoadFromFile_ReportsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600),
		"Writing the test config file should succeed.")

	_, err := LoadFromFile(path)
	require.Error(t, err, "Malformed YAML should fail to load.")
	assert.Contains(t, err.Error(), "failed to parse config file YAML", "The error should name the failing step.")
}

func TestEnvironmentOverrides_TakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600),
		"Writing the test config file should succeed.")

	t.Setenv("SWISSKNIFE_PORT", "7070")
	t.Setenv("SWISSKNIFE_SERVER_NAME", "env-server")
	t.Setenv("SWISSKNIFE_LOG_LEVEL", "error")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err, "Loading the config file should succeed.")

	assert.Equal(t, 7070, cfg.Server.Port, "The environment should override the file port.")
	assert.Equal(t, "env-server", cfg.Server.Name, "The environment should override the server name.")
	assert.Equal(t, "error", cfg.Logging.Level, "The environment should override the log level.")
}

func TestEnvironmentOverrides_IgnoreInvalidPort(t *testing.T) {
	t.Setenv("SWISSKNIFE_PORT", "not-a-port")

	cfg := DefaultConfig()
	assert.Equal(t, 8080, cfg.Server.Port, "An unparsable port override should be ignored.")
}

func TestConfig_Validate_RejectsBadSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Transport = "carrier-pigeon"
	assert.Error(t, cfg.Validate(), "An unknown transport should fail validation.")

	cfg = DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate(), "A zero port should fail validation.")

	cfg = DefaultConfig()
	cfg.Providers.Files.Enabled = true
	cfg.Providers.Files.Root = ""
	assert.Error(t, cfg.Validate(), "Enabling the files provider without a root should fail validation.")
}

func TestExpandPath_ExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err, "The home directory should be resolvable in tests.")

	got, err := ExpandPath("~/x/config.yaml")
	require.NoError(t, err, "Expanding a tilde path should succeed.")
	assert.Equal(t, filepath.Join(home, "x", "config.yaml"), got, "The tilde should expand to the home directory.")

	got, err = ExpandPath("/absolute/path")
	require.NoError(t, err, "A non-tilde path should pass through.")
	assert.Equal(t, "/absolute/path", got, "A non-tilde path should be unchanged.")
}
