// ABOUTME: Tests for YAML configuration loading
// ABOUTME: Covers defaults, env var expansion, and validation failures

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/pressbook-test.db
logging:
  level: debug
  format: json
seed:
  username: root
  password: hunter2
  display_name: Root
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pressbook-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "root", cfg.Seed.Username)
	assert.Equal(t, "hunter2", cfg.Seed.Password)
	assert.Equal(t, "Root", cfg.Seed.DisplayName)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("PRESSBOOK_TEST_DB", "/tmp/from-env.db")

	path := writeConfig(t, `
database:
  path: ${PRESSBOOK_TEST_DB}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
database:
  path: ${PRESSBOOK_DEFINITELY_UNSET}
`)

	// Empty path fails validation.
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"

	assert.Error(t, cfg.Validate())
}

func TestValidate_AcceptsKnownFormats(t *testing.T) {
	for _, format := range []string{"", "text", "json"} {
		cfg := Default()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q", format)
	}
}
