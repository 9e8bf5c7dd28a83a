package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override config file values.
const (
	EnvBackend     = "SKIPTRACK_BACKEND"
	EnvDBPath      = "SKIPTRACK_DB"
	EnvRedisURL    = "SKIPTRACK_REDIS_URL"
	EnvRedisPrefix = "SKIPTRACK_REDIS_PREFIX"
	EnvPostgresURL = "SKIPTRACK_POSTGRES_URL"
	EnvKey         = "SKIPTRACK_KEY"
	EnvLogLevel    = "SKIPTRACK_LOG_LEVEL"
	EnvLogFormat   = "SKIPTRACK_LOG_FORMAT"
	EnvLogFile     = "SKIPTRACK_LOG_FILE"
)

// LoadEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// Env returns the value of key and whether it is set to a non-empty string.
func Env(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
