package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
connection:
  host: db.internal
  port: 5433
  database: appdb
  username: app
  password: secret
schemas:
  - public
  - audit
output_dir: out/schema
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "appdb", cfg.Connection.Database)
	assert.Equal(t, "app", cfg.Connection.Username)
	assert.Equal(t, "secret", cfg.Connection.Password)
	assert.Equal(t, []string{"public", "audit"}, cfg.Schemas)
	assert.Equal(t, "out/schema", cfg.OutputDir)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
connection:
  database: appdb
  username: app
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "schema", cfg.OutputDir)
	assert.Empty(t, cfg.Schemas)
}

func TestLoad_PasswordFromEnvironment(t *testing.T) {
	t.Setenv("PGPASSWORD", "from-env")

	path := writeConfig(t, `
connection:
  database: appdb
  username: app
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Connection.Password)
}

func TestLoad_ExplicitPasswordWinsOverEnvironment(t *testing.T) {
	t.Setenv("PGPASSWORD", "from-env")

	path := writeConfig(t, `
connection:
  database: appdb
  username: app
  password: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Connection.Password)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "schema", cfg.OutputDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "connection: [not a mapping")

	_, err := Load(path)
	assert.ErrorIs(t, err, pgsplit.ErrInvalidConfig)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		path := writeConfig(t, `
connection:
  username: app
`)
		_, err := Load(path)
		require.ErrorIs(t, err, pgsplit.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "connection.database")
	})

	t.Run("missing username", func(t *testing.T) {
		path := writeConfig(t, `
connection:
  database: appdb
`)
		_, err := Load(path)
		require.ErrorIs(t, err, pgsplit.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "connection.username")
	})
}
