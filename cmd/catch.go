package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/streamcatch/internal/catcher"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/repositories"
	"github.com/desertthunder/streamcatch/internal/shared"
	"github.com/desertthunder/streamcatch/internal/tasks"
	"github.com/desertthunder/streamcatch/internal/ui"
	"github.com/urfave/cli/v3"
)

// catchOutput is the --json rendition of a capture run.
type catchOutput struct {
	Status      string         `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	ID          string         `json:"id,omitempty"`
	Sequence    int            `json:"sequence,omitempty"`
	Address     string         `json:"address"`
	Stream      *models.Stream `json:"stream,omitempty"`
	PlaybackURL string         `json:"playback_url,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// Catch serves one capture run and prints the stream the browser extension sent.
func (r *Runner) Catch(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	server := config.Server
	if cmd.IsSet("host") {
		server.Host = cmd.String("host")
		server.UseCustomHost = true
	}
	if cmd.IsSet("port") {
		port := cmd.Int("port")
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: port %d is out of range", shared.ErrInvalidFlag, port)
		}
		server.Port = port
	}

	wait := config.Wait
	if cmd.IsSet("timeout") {
		seconds := cmd.Int("timeout")
		if seconds <= 0 {
			return fmt.Errorf("%w: timeout must be a positive number of seconds", shared.ErrInvalidFlag)
		}
		wait.Seconds = seconds
	}

	if cmd.Bool("tui") {
		fileLogger, err := shared.NewFileLogger(config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	var store tasks.CaptureStore
	if !cmd.Bool("no-save") {
		repo, closer, err := r.openRepository(config)
		if err != nil {
			r.logger.Warn("capture history disabled", "error", err)
		} else {
			defer closer.Close()
			store = repositories.NewCaptureStoreAdapter(repo)
		}
	}

	host := shared.ResolveHost(server)
	engine := tasks.NewCaptureEngine(engineOptions(host, server, wait, config.Playback), store, r.logger)
	r.logger.Debug("capture engine ready", "host", host, "port", server.Port, "steps", wait.Steps())

	var result *tasks.CaptureRunResult
	if cmd.Bool("tui") {
		result, err = ui.RunWait(ctx, engine)
	} else {
		result, err = r.catchPlain(ctx, engine, cmd.Bool("json") || cmd.Bool("kodi"), wait)
	}
	if err != nil {
		return err
	}

	return r.printCatch(cmd, result)
}

func engineOptions(host string, server shared.ServerConfig, wait shared.WaitConfig, pb shared.PlaybackConfig) tasks.EngineOptions {
	return tasks.EngineOptions{
		Server: catcher.Options{
			Host:           host,
			Port:           server.Port,
			AcceptTimeout:  server.AcceptTimeout.Std(),
			PollDelay:      server.PollDelay.Std(),
			MaxHeaderBytes: server.MaxHeaderBytes,
			MaxBodyBytes:   server.MaxBodyBytes,
		},
		Wait: tasks.WaitOptions{
			Steps:        wait.Steps(),
			StepInterval: wait.StepInterval.Std(),
			JoinTimeout:  wait.JoinTimeout.Std(),
		},
		Playback: pb,
	}
}

// catchPlain runs the engine without the TUI. Ctrl-C cancels ctx, which aborts the wait.
func (r *Runner) catchPlain(ctx context.Context, engine ui.CaptureRunner, quiet bool, wait shared.WaitConfig) (*tasks.CaptureRunResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if quiet {
				r.logger.Debug("capture progress", "phase", update.Phase, "message", update.Message)
				continue
			}
			switch update.Phase {
			case tasks.Listening:
				r.writePlain("%s\n", update.Message)
				r.writePlain("Waiting up to %s for the browser extension (Ctrl-C to cancel)\n", time.Duration(wait.Seconds)*time.Second)
			case tasks.Joining, tasks.Finished:
				r.logger.Debug(update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, nil)
	close(progressCh)
	<-done

	return result, err
}

func (r *Runner) printCatch(cmd *cli.Command, result *tasks.CaptureRunResult) error {
	aborted := result.Wait != nil && result.Wait.Reason == tasks.Aborted && !result.OK()

	if cmd.Bool("kodi") {
		if !result.OK() {
			return result.Err
		}
		return r.writePlain("%s\n", result.PlaybackURL)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(newCatchOutput(result), cmd.Bool("pretty")); err != nil {
			return err
		}
		if result.OK() || aborted {
			return nil
		}
		return result.Err
	}

	if !result.OK() {
		if aborted {
			return r.writePlainln("Capture cancelled")
		}
		r.writePlainln("Capture failed: %v", result.Err)
		return result.Err
	}

	r.writePlainln("")
	r.writePlainHeader("Stream captured")
	r.writePlain("URL:     %s\n", result.Stream.URL)
	r.writePlain("Type:    %s\n", result.Stream.MimeType)
	r.writePlain("Version: %s\n", result.Stream.Version)
	if len(result.Stream.Headers) > 0 {
		r.writePlain("Headers:\n")
		for _, k := range result.Stream.HeaderKeys() {
			r.writePlain("  %s: %s\n", k, result.Stream.Headers[k])
		}
	}
	r.writePlainln("Playback URL:\n%s", result.PlaybackURL)

	if c := result.Capture; c != nil && c.ID() != "" && result.SaveErr == nil {
		r.writePlainln("Saved as #%d (%s)", c.Sequence(), shared.ShortID(c.ID()))
	}
	return nil
}

func newCatchOutput(result *tasks.CaptureRunResult) catchOutput {
	out := catchOutput{Status: string(models.StatusFailed)}
	if result.Wait != nil {
		out.Reason = result.Wait.Reason.String()
	}
	if c := result.Capture; c != nil {
		out.Address = c.Addr()
		if result.SaveErr == nil {
			out.ID = c.ID()
			out.Sequence = c.Sequence()
		}
	}
	if result.OK() {
		out.Status = string(models.StatusCaptured)
		out.Stream = result.Stream
		out.PlaybackURL = result.PlaybackURL
	} else if result.Err != nil {
		out.Message = result.Err.Error()
	}
	return out
}
