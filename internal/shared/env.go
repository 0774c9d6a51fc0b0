package shared

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvHost          = "STREAMCATCH_HOST"
	EnvUseCustomHost = "STREAMCATCH_USE_CUSTOM_HOST"
	EnvPort          = "STREAMCATCH_PORT"
	EnvRemoveBR      = "STREAMCATCH_REMOVE_BR"
	EnvDatabase      = "STREAMCATCH_DB"
	EnvLogLevel      = "STREAMCATCH_LOG_LEVEL"
)

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv(logger *log.Logger) {
	if err := godotenv.Load(); err != nil && logger != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
}

// ApplyEnv overrides config values with any STREAMCATCH_* variables that are set.
//
// A custom host implies use_custom_host unless STREAMCATCH_USE_CUSTOM_HOST says otherwise.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvHost); v != "" {
		c.Server.Host = v
		c.Server.UseCustomHost = true
	}
	if v := os.Getenv(EnvUseCustomHost); v != "" {
		c.Server.UseCustomHost = parseBool(v, c.Server.UseCustomHost)
	}
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = ParsePort(v, DefaultPort)
	}
	if v := os.Getenv(EnvRemoveBR); v != "" {
		c.Playback.RemoveBR = parseBool(v, c.Playback.RemoveBR)
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// ParsePort returns s as a port number, or fallback when s is not a plain number in 1-65535.
func ParsePort(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fallback
		}
	}

	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return fallback
	}
	return port
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}
