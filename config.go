package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds everything the app needs at startup.
type Config struct {
	SecretKey    string
	Database     string
	Driver       string
	Addr         string
	TemplateDir  string
	LogLevel     string
	LogFormat    string
	CookieSecure bool
}

// loadConfig reads .env (if present) and then the process environment.
// Values already set in the environment are not overridden by .env.
func loadConfig() Config {
	_ = godotenv.Load()

	return Config{
		// A default secret that should be overridden in production.
		SecretKey:    getenv("SECRET_KEY", "dev"),
		Database:     getenv("DATABASE", filepath.Join("instance", "blog.sqlite")),
		Driver:       getenv("DB_DRIVER", driverSQLite),
		Addr:         getenv("ADDR", ":5000"),
		TemplateDir:  getenv("TEMPLATE_DIR", "templates"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    getenv("LOG_FORMAT", "text"),
		CookieSecure: strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// ensureInstanceDir creates the directory holding a sqlite database file.
func (c Config) ensureInstanceDir() error {
	if c.Driver != driverSQLite || c.Database == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.Database)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create instance dir %s", dir)
	}
	return nil
}
