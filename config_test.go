package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"SECRET_KEY", "DATABASE", "DB_DRIVER", "ADDR", "TEMPLATE_DIR", "LOG_LEVEL", "LOG_FORMAT", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()
	assert.Equal(t, "dev", cfg.SecretKey)
	assert.Equal(t, filepath.Join("instance", "blog.sqlite"), cfg.Database)
	assert.Equal(t, driverSQLite, cfg.Driver)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "templates", cfg.TemplateDir)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadConfigDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	// t.Setenv restores the original value; unset so .env can fill it in.
	t.Setenv("SECRET_KEY", "")
	require.NoError(t, os.Unsetenv("SECRET_KEY"))
	t.Setenv("ADDR", ":9000")
	require.NoError(t, os.WriteFile(".env", []byte("SECRET_KEY=from-dotenv\nADDR=:1234\n"), 0o600))

	cfg := loadConfig()
	assert.Equal(t, "from-dotenv", cfg.SecretKey)
	// the real environment wins over .env
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestEnsureInstanceDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "instance", "nested")
	cfg := Config{Driver: driverSQLite, Database: filepath.Join(dir, "blog.sqlite")}
	require.NoError(t, cfg.ensureInstanceDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	pg := Config{Driver: driverPostgres, Database: "postgres://localhost/blog"}
	assert.NoError(t, pg.ensureInstanceDir())
}
