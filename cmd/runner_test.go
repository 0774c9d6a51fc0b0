package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/streamcatch/internal/shared"
	th "github.com/desertthunder/streamcatch/internal/testing"
	"github.com/urfave/cli/v3"
)

const testPayload = "streamcatcher/1.2\nhttps://cdn.example/live.m3u8\napplication/vnd.apple.mpegurl\n" +
	"Referer=https%3A%2F%2Fexample.com&Cookie=session%3Dabc"

// testConfig returns a config with fast polling and a database in a temp dir.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "streamcatch.db")
	config.Server.AcceptTimeout = shared.Duration(50 * time.Millisecond)
	config.Server.PollDelay = shared.Duration(20 * time.Millisecond)
	config.Wait.StepInterval = shared.Duration(50 * time.Millisecond)
	config.Wait.JoinTimeout = shared.Duration(2 * time.Second)
	config.Log.File = filepath.Join(t.TempDir(), "tui.log")
	return config
}

func testRunner(t *testing.T, config *shared.Config) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
	}), output
}

// runCommand runs one of the runner's commands the way main does.
func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "streamcatch", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"streamcatch"}, args...))
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// sendPayload keeps dialling addr until the catcher accepts, then posts body.
func sendPayload(addr, body string) error {
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err != nil {
			if time.Now().After(deadline) {
				return err
			}
			time.Sleep(20 * time.Millisecond)
			continue
		}
		defer conn.Close()

		req := "POST /" + strconv.Itoa(len(body)) + " HTTP/1.1\r\nHost: " + addr + "\r\n\r\n" + body
		if _, err := io.WriteString(conn, req); err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = io.ReadAll(conn)
		return nil
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &th.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := th.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &th.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := []string{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}
		if got := strings.Join(names, ","); got != "catch,history,play-url,setup" {
			t.Errorf("unexpected commands %q", got)
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("same path keeps the loaded config", func(t *testing.T) {
			config := testConfig(t)
			runner, _ := testRunner(t, config)

			var got *shared.Config
			cmd := &cli.Command{
				Name:  "probe",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var err error
					got, err = runner.loadConfig(cmd)
					return err
				},
			}
			if err := cmd.Run(context.Background(), []string{"probe"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != config {
				t.Error("expected the runner's config")
			}
		})

		t.Run("another path loads that file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "other.toml")
			if err := os.WriteFile(path, []byte("[server]\nport = 9191\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			runner, _ := testRunner(t, testConfig(t))

			var got *shared.Config
			cmd := &cli.Command{
				Name:  "probe",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var err error
					got, err = runner.loadConfig(cmd)
					return err
				},
			}
			if err := cmd.Run(context.Background(), []string{"probe", "--config", path}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Server.Port != 9191 {
				t.Errorf("expected port 9191, got %d", got.Server.Port)
			}
			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
		})

		t.Run("missing file", func(t *testing.T) {
			runner, _ := testRunner(t, testConfig(t))
			err := runCommand(t, runner, "history", "list", "-c", filepath.Join(t.TempDir(), "missing.toml"))
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})
}

func TestCatch(t *testing.T) {
	t.Run("captures a stream and records it", func(t *testing.T) {
		config := testConfig(t)
		runner, output := testRunner(t, config)
		port := freePort(t)
		addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

		sent := make(chan error, 1)
		go func() { sent <- sendPayload(addr, testPayload) }()

		err := runCommand(t, runner, "catch", "--host", "127.0.0.1", "--port", strconv.Itoa(port), "--timeout", "5", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := <-sent; err != nil {
			t.Fatalf("failed to send payload: %v", err)
		}

		var out catchOutput
		if err := json.Unmarshal(output.Bytes(), &out); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if out.Status != "captured" {
			t.Fatalf("expected captured status, got %q (%s)", out.Status, out.Message)
		}
		if out.Reason != "finished" {
			t.Errorf("expected finished reason, got %q", out.Reason)
		}
		if out.Sequence != 1 || out.ID == "" {
			t.Errorf("expected the capture to be saved as #1, got #%d %q", out.Sequence, out.ID)
		}
		if out.Address != addr {
			t.Errorf("expected address %s, got %s", addr, out.Address)
		}
		wantURL := "https://cdn.example/live.m3u8|Referer=https%3A%2F%2Fexample.com"
		if out.PlaybackURL != wantURL {
			t.Errorf("expected playback URL %q, got %q", wantURL, out.PlaybackURL)
		}
		if _, ok := out.Stream.Headers["Cookie"]; ok {
			t.Error("expected Cookie to be dropped from the stream")
		}

		t.Run("history list", func(t *testing.T) {
			output.Reset()
			if err := runCommand(t, runner, "history", "list", "--json"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var captures []captureJSON
			if err := json.Unmarshal(output.Bytes(), &captures); err != nil {
				t.Fatalf("expected JSON output: %v", err)
			}
			if len(captures) != 1 {
				t.Fatalf("expected 1 capture, got %d", len(captures))
			}
			if captures[0].Headers["Cookie"] != "session=abc" {
				t.Errorf("expected the stored headers to be uncleaned, got %v", captures[0].Headers)
			}
		})

		t.Run("history list as markdown", func(t *testing.T) {
			output.Reset()
			if err := runCommand(t, runner, "history", "list", "--format", "markdown"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "# Capture history") {
				t.Errorf("expected markdown output, got %q", output.String())
			}
		})

		t.Run("history show", func(t *testing.T) {
			output.Reset()
			if err := runCommand(t, runner, "history", "show", "#1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			for _, want := range []string{"Capture #1", "https://cdn.example/live.m3u8", "Playback URL:"} {
				if !strings.Contains(output.String(), want) {
					t.Errorf("expected %q in output, got %q", want, output.String())
				}
			}
		})

		t.Run("play-url", func(t *testing.T) {
			output.Reset()
			if err := runCommand(t, runner, "play-url", out.ID[:8]); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := strings.TrimSpace(output.String()); got != wantURL {
				t.Errorf("expected %q, got %q", wantURL, got)
			}

			output.Reset()
			if err := runCommand(t, runner, "play-url", "--raw", "--curl", out.ID); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "'Cookie: session=abc'") {
				t.Errorf("expected raw headers in curl command, got %q", output.String())
			}
		})

		t.Run("history delete", func(t *testing.T) {
			output.Reset()
			if err := runCommand(t, runner, "history", "delete", out.ID); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "Deleted capture #1") {
				t.Errorf("unexpected output %q", output.String())
			}

			err := runCommand(t, runner, "history", "show", out.ID)
			if !errors.Is(err, shared.ErrCaptureNotFound) {
				t.Errorf("expected ErrCaptureNotFound, got %v", err)
			}
		})
	})

	t.Run("times out without a connection", func(t *testing.T) {
		config := testConfig(t)
		config.Wait.StepInterval = shared.Duration(100 * time.Millisecond)
		runner, output := testRunner(t, config)

		err := runCommand(t, runner, "catch", "--host", "127.0.0.1", "--port", strconv.Itoa(freePort(t)), "--timeout", "1", "--no-save")
		if !errors.Is(err, shared.ErrCaptureFailed) {
			t.Fatalf("expected ErrCaptureFailed, got %v", err)
		}
		for _, want := range []string{"Serving on: http://127.0.0.1:", "Capture failed", "No connection established"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output, got %q", want, output.String())
			}
		}
	})

	t.Run("rejects a bad port", func(t *testing.T) {
		for _, port := range []string{"0", "-1", "70000"} {
			t.Run(port, func(t *testing.T) {
				runner, _ := testRunner(t, testConfig(t))
				err := runCommand(t, runner, "catch", "--port", port)
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
			})
		}
	})

	t.Run("rejects a bad timeout", func(t *testing.T) {
		runner, _ := testRunner(t, testConfig(t))
		err := runCommand(t, runner, "catch", "--timeout", "0")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestHistoryErrors(t *testing.T) {
	runner, _ := testRunner(t, testConfig(t))

	if err := runCommand(t, runner, "history", "show"); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
	if err := runCommand(t, runner, "play-url", "#9"); !errors.Is(err, shared.ErrCaptureNotFound) {
		t.Errorf("expected ErrCaptureNotFound, got %v", err)
	}
	if err := runCommand(t, runner, "history", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		runner, output := testRunner(t, testConfig(t))
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := runCommand(t, runner, "setup", "config", "-o", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "[server]") {
			t.Error("expected the example config to be written")
		}
		if !strings.Contains(output.String(), "Config written to") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := runCommand(t, runner, "setup", "config", "-o", path); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for an existing file, got %v", err)
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "setup.db")
		configPath := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(configPath, []byte("[database]\npath = \""+filepath.ToSlash(dbPath)+"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner, output := testRunner(t, testConfig(t))
		if err := runCommand(t, runner, "setup", "database", "-c", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		th.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "schema version 0") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}
