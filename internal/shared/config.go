package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultPort is used whenever a configured port is missing or not a valid port number.
const DefaultPort = 8080

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Wait     WaitConfig     `toml:"wait"`
	Playback PlaybackConfig `toml:"playback"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains capture server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	UseCustomHost  bool     `toml:"use_custom_host"`
	Port           int      `toml:"port"`
	AcceptTimeout  Duration `toml:"accept_timeout"`
	PollDelay      Duration `toml:"poll_delay"`
	MaxHeaderBytes int      `toml:"max_header_bytes"`
	MaxBodyBytes   int      `toml:"max_body_bytes"`
}

// WaitConfig contains the budget of the polling loop that waits for a capture.
type WaitConfig struct {
	Seconds      int      `toml:"seconds"`
	StepInterval Duration `toml:"step_interval"`
	JoinTimeout  Duration `toml:"join_timeout"`
}

// Steps returns the number of polling steps that fit in the configured wait.
func (w WaitConfig) Steps() int {
	interval := w.StepInterval.Std()
	if interval <= 0 || w.Seconds <= 0 {
		return 0
	}
	return int(time.Duration(w.Seconds) * time.Second / interval)
}

// PlaybackConfig controls how captured request headers are cleaned up for playback.
type PlaybackConfig struct {
	RemoveBR    bool     `toml:"remove_br"`
	DropHeaders []string `toml:"drop_headers"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration is a [time.Duration] that decodes from TOML strings like "500ms".
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Normalize()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Normalize replaces out of range values with their defaults.
func (c *Config) Normalize() {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		c.Server.Port = DefaultPort
	}
	if c.Wait.Seconds <= 0 {
		c.Wait.Seconds = 90
	}
	if c.Wait.StepInterval <= 0 {
		c.Wait.StepInterval = Duration(500 * time.Millisecond)
	}
	if c.Wait.JoinTimeout <= 0 {
		c.Wait.JoinTimeout = Duration(5 * time.Second)
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
