package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/streamcatch/internal/formatter"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/playback"
	"github.com/desertthunder/streamcatch/internal/repositories"
	"github.com/desertthunder/streamcatch/internal/shared"
	"github.com/desertthunder/streamcatch/internal/ui"
	"github.com/urfave/cli/v3"
)

// captureJSON is the --json rendition of a saved capture.
type captureJSON struct {
	ID        string            `json:"id"`
	Sequence  int               `json:"sequence"`
	Status    string            `json:"status"`
	Address   string            `json:"address"`
	Message   string            `json:"message,omitempty"`
	Version   string            `json:"version,omitempty"`
	URL       string            `json:"url,omitempty"`
	MimeType  string            `json:"mime_type,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func newCaptureJSON(c *models.Capture) captureJSON {
	return captureJSON{
		ID:        c.ID(),
		Sequence:  c.Sequence(),
		Status:    string(c.Status()),
		Address:   c.Addr(),
		Message:   c.Message(),
		Version:   c.Version(),
		URL:       c.URL(),
		MimeType:  c.MimeType(),
		Headers:   playback.DecodeHeaders(c.HeaderParams()),
		CreatedAt: c.CreatedAt(),
	}
}

// withRepository opens the configured history database for the duration of fn.
func (r *Runner) withRepository(cmd *cli.Command, fn func(*shared.Config, *repositories.CaptureRepository) error) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, closer, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closer.Close()

	return fn(config, repo)
}

// findCapture resolves the command's id argument.
func findCapture(cmd *cli.Command, repo *repositories.CaptureRepository) (*models.Capture, error) {
	ref := cmd.StringArg("id")
	if ref == "" {
		return nil, fmt.Errorf("%w: capture id is required", shared.ErrMissingArgument)
	}
	return repo.Find(ref)
}

// HistoryList prints saved captures, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	return r.withRepository(cmd, func(_ *shared.Config, repo *repositories.CaptureRepository) error {
		captures, err := repo.List(map[string]any{
			"limit":  cmd.Int("limit"),
			"status": cmd.String("status"),
		})
		if err != nil {
			return fmt.Errorf("failed to list captures: %w", err)
		}
		r.logger.Debug("listed captures", "count", len(captures))

		if cmd.Bool("json") {
			out := make([]captureJSON, len(captures))
			for i, c := range captures {
				out[i] = newCaptureJSON(c)
			}
			return r.writeJSON(out, cmd.Bool("pretty"))
		}

		if path := cmd.String("output"); path != "" {
			if err := formatter.WriteExport(captures, cmd.String("format"), path); err != nil {
				return err
			}
			r.logger.Info("exported captures", "path", path, "count", len(captures))
			return nil
		}

		data, err := formatter.Export(captures, cmd.String("format"))
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	})
}

// HistoryShow prints every stored field of one capture.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	return r.withRepository(cmd, func(_ *shared.Config, repo *repositories.CaptureRepository) error {
		capture, err := findCapture(cmd, repo)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(newCaptureJSON(capture), cmd.Bool("pretty"))
		}

		stream, _ := playback.StreamFromCapture(capture)
		if err := r.writePlain("%s", formatter.CaptureDetails(capture, stream)); err != nil {
			return err
		}
		if stream != nil {
			return r.writePlainln("Playback URL:\n%s", playback.PlaybackURL(stream))
		}
		return nil
	})
}

// HistoryDelete removes one capture from the history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	return r.withRepository(cmd, func(_ *shared.Config, repo *repositories.CaptureRepository) error {
		capture, err := findCapture(cmd, repo)
		if err != nil {
			return err
		}
		if err := repo.Delete(capture.ID()); err != nil {
			return err
		}

		r.logger.Info("deleted capture", "id", capture.ID())
		return r.writePlain("✓ Deleted capture #%d (%s)\n", capture.Sequence(), shared.ShortID(capture.ID()))
	})
}

// HistoryUI launches the interactive history browser.
func (r *Runner) HistoryUI(ctx context.Context, cmd *cli.Command) error {
	return r.withRepository(cmd, func(config *shared.Config, repo *repositories.CaptureRepository) error {
		// Redirect logs to file to avoid interfering with TUI rendering
		fileLogger, err := shared.NewFileLogger(config.Log.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)

		return ui.RunHistory(repo, cmd.Int("limit"))
	})
}

// PlayURL prints the playback URL of a saved capture, with the configured header cleanup applied.
func (r *Runner) PlayURL(ctx context.Context, cmd *cli.Command) error {
	return r.withRepository(cmd, func(config *shared.Config, repo *repositories.CaptureRepository) error {
		capture, err := findCapture(cmd, repo)
		if err != nil {
			return err
		}

		stream, err := playback.StreamFromCapture(capture)
		if err != nil {
			return err
		}
		if !cmd.Bool("raw") {
			stream.Headers = playback.CleanHeaders(stream.Headers, config.Playback)
		}

		if cmd.Bool("curl") {
			return r.writePlain("%s\n", playback.CurlCommand(stream))
		}
		return r.writePlain("%s\n", playback.PlaybackURL(stream))
	})
}
