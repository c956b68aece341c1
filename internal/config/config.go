// Package config loads client configuration from the environment and an
// optional YAML config file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Chat server
	ServerURL string        `yaml:"server_url"`
	Timeout   time.Duration `yaml:"timeout"`

	// Session cookie storage
	SessionFile string `yaml:"session_file"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Raw log level string from file/env, resolved into LogLevel.
	LogLevelName string `yaml:"log_level"`
}

// Load reads configuration in order of increasing precedence: built-in
// defaults, the YAML config file, then environment variables. A .env file
// in the working directory is folded into the environment first.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ServerURL:    "http://localhost:8000",
		Timeout:      5 * time.Minute, // RAG answers can take a while
		SessionFile:  filepath.Join(configDir(), "session.json"),
		LogFile:      filepath.Join(configDir(), "cischat.log"),
		LogLevelName: "WARN",
	}

	if data, err := os.ReadFile(filepath.Join(configDir(), "config.yaml")); err == nil {
		// A broken config file falls back to defaults rather than failing.
		_ = yaml.Unmarshal(data, &cfg)
	}

	cfg.ServerURL = getEnv("CISCHAT_SERVER_URL", cfg.ServerURL)
	cfg.SessionFile = getEnv("CISCHAT_SESSION_FILE", cfg.SessionFile)
	cfg.LogFile = getEnv("CISCHAT_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("CISCHAT_LOG_LEVEL", cfg.LogLevelName)
	if t := os.Getenv("CISCHAT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	return cfg
}

// configDir returns the per-user directory for cischat state.
func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cischat")
	}
	return "."
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
