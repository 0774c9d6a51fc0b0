package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Server.AcceptTimeout.Std() != time.Second {
			t.Errorf("expected accept timeout 1s, got %v", config.Server.AcceptTimeout.Std())
		}

		if config.Server.PollDelay.Std() != 200*time.Millisecond {
			t.Errorf("expected poll delay 200ms, got %v", config.Server.PollDelay.Std())
		}

		if config.Wait.Steps() != 180 {
			t.Errorf("expected 180 wait steps, got %d", config.Wait.Steps())
		}

		if config.Database.Path != "./streamcatch.db" {
			t.Errorf("expected database path ./streamcatch.db, got %s", config.Database.Path)
		}

		if len(config.Playback.DropHeaders) != 4 {
			t.Errorf("expected 4 dropped headers, got %v", config.Playback.DropHeaders)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		err = CreateConfigFile(configPath)
		if err == nil {
			t.Fatal("creating config file again should fail")
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "192.168.0.15"
use_custom_host = true
port = 9090
poll_delay = "50ms"

[wait]
seconds = 10
step_interval = "250ms"

[playback]
remove_br = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Host != "192.168.0.15" || !config.Server.UseCustomHost {
			t.Errorf("expected custom host 192.168.0.15, got %s (custom=%v)", config.Server.Host, config.Server.UseCustomHost)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
		if config.Server.PollDelay.Std() != 50*time.Millisecond {
			t.Errorf("expected poll delay 50ms, got %v", config.Server.PollDelay.Std())
		}
		if config.Server.AcceptTimeout.Std() != time.Second {
			t.Errorf("expected default accept timeout to survive, got %v", config.Server.AcceptTimeout.Std())
		}
		if config.Wait.Steps() != 40 {
			t.Errorf("expected 40 steps, got %d", config.Wait.Steps())
		}
		if !config.Playback.RemoveBR {
			t.Error("expected remove_br to be true")
		}
	})

	t.Run("LoadConfig falls back on invalid port", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server]\nport = 70000\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Server.Port != DefaultPort {
			t.Errorf("expected port %d, got %d", DefaultPort, config.Server.Port)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server]\npoll_delay = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Fatal("expected an error for an invalid duration")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv(EnvHost, "10.0.0.2")
		t.Setenv(EnvPort, "9191")
		t.Setenv(EnvRemoveBR, "true")
		t.Setenv(EnvDatabase, "/tmp/captures.db")

		config := DefaultConfig()
		ApplyEnv(config)

		if config.Server.Host != "10.0.0.2" || !config.Server.UseCustomHost {
			t.Errorf("expected custom host from env, got %s (custom=%v)", config.Server.Host, config.Server.UseCustomHost)
		}
		if config.Server.Port != 9191 {
			t.Errorf("expected port 9191, got %d", config.Server.Port)
		}
		if !config.Playback.RemoveBR {
			t.Error("expected remove_br from env")
		}
		if config.Database.Path != "/tmp/captures.db" {
			t.Errorf("expected database path from env, got %s", config.Database.Path)
		}
	})

	t.Run("invalid port falls back to default", func(t *testing.T) {
		t.Setenv(EnvPort, "eighty")

		config := DefaultConfig()
		config.Server.Port = 1234
		ApplyEnv(config)

		if config.Server.Port != DefaultPort {
			t.Errorf("expected port %d, got %d", DefaultPort, config.Server.Port)
		}
	})

	t.Run("explicit use_custom_host wins", func(t *testing.T) {
		t.Setenv(EnvHost, "10.0.0.2")
		t.Setenv(EnvUseCustomHost, "false")

		config := DefaultConfig()
		ApplyEnv(config)

		if config.Server.UseCustomHost {
			t.Error("expected use_custom_host to be false")
		}
	})
}

func TestParsePort(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want int
	}{
		{name: "valid", in: "8081", want: 8081},
		{name: "whitespace", in: " 9000 ", want: 9000},
		{name: "empty", in: "", want: DefaultPort},
		{name: "letters", in: "80a", want: DefaultPort},
		{name: "negative", in: "-1", want: DefaultPort},
		{name: "zero", in: "0", want: DefaultPort},
		{name: "too large", in: "65536", want: DefaultPort},
		{name: "max", in: "65535", want: 65535},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePort(tt.in, DefaultPort); got != tt.want {
				t.Errorf("ParsePort(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
