package tasks

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamcatch/internal/catcher"
	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/playback"
	"github.com/desertthunder/streamcatch/internal/shared"
)

// CaptureStore persists finished capture runs. Implemented by repositories.CaptureStoreAdapter.
type CaptureStore interface {
	SaveCapture(capture *models.Capture) error
}

// EngineOptions configures a [CaptureEngine].
type EngineOptions struct {
	Server   catcher.Options       // Host and Port say where to listen
	Wait     WaitOptions           // Message is filled in from Server when empty
	Playback shared.PlaybackConfig // Header cleanup applied to the decoded stream
}

// CaptureRunResult contains everything a capture run produced.
type CaptureRunResult struct {
	Wait        *WaitResult
	Stream      *models.Stream  // Decoded stream with cleaned headers, nil on failure
	PlaybackURL string          // Player URL for Stream, empty on failure
	Capture     *models.Capture // The record handed to the store
	Err         error           // Why the run produced no stream
	SaveErr     error           // Set when the store rejected the capture
}

// OK reports whether a stream was captured and decoded.
func (r *CaptureRunResult) OK() bool { return r.Err == nil && r.Stream != nil }

// CaptureEngine runs one capture session at a time.
type CaptureEngine struct {
	opts   EngineOptions
	store  CaptureStore
	logger *log.Logger
}

// NewCaptureEngine creates a [CaptureEngine]. store may be nil to skip persistence.
func NewCaptureEngine(opts EngineOptions, store CaptureStore, logger *log.Logger) *CaptureEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if opts.Wait.Message == "" {
		opts.Wait.Message = ServingMessage(opts.Server.Host, opts.Server.Port)
	}
	if opts.Server.Logger == nil {
		opts.Server.Logger = logger
	}
	return &CaptureEngine{opts: opts, store: store, logger: logger}
}

// ServingMessage is the line shown while waiting for the browser extension.
func ServingMessage(host string, port int) string {
	return "Serving on: http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Run starts the catcher, waits for it, and decodes and saves whatever it captured.
//
// Cancelling ctx or closing abort stops the wait early. A returned error means the worker could not be
// joined; every other failure is reported in [CaptureRunResult.Err].
func (e *CaptureEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, abort <-chan struct{}) (*CaptureRunResult, error) {
	host, port := e.opts.Server.Host, e.opts.Server.Port
	logger := shared.WithLogger(e.logger, "addr", net.JoinHostPort(host, strconv.Itoa(port)))

	h := catcher.NewHandle(ctx)
	run := catcher.Start(e.opts.Server, h)
	sendProgress(progress, listeningUpdate(e.opts.Wait.Message))

	wr, err := NewWaiter(e.opts.Wait, logger).Wait(ctx, run, h, progress, abort)
	if err != nil {
		return &CaptureRunResult{Wait: wr, Err: err}, err
	}

	result := &CaptureRunResult{Wait: wr}
	if !wr.Result.OK() {
		result.Err = fmt.Errorf("%w: %w", shared.ErrCaptureFailed, wr.Result.Err())
		result.Capture = models.NewFailedCapture(host, port, wr.Result.Message(), nil)
		e.save(logger, result)
		return result, nil
	}

	body := wr.Result.Body()
	stream, err := playback.ParsePayload(body)
	if err != nil {
		logger.Warn("unexpected payload", "error", err, "bytes", len(body))
		result.Err = err
		result.Capture = models.NewFailedCapture(host, port, err.Error(), body)
		e.save(logger, result)
		return result, nil
	}

	result.Capture = models.NewCapturedStream(host, port, stream, playback.EncodeHeaders(stream.Headers), body)
	stream.Headers = playback.CleanHeaders(stream.Headers, e.opts.Playback)
	result.Stream = stream
	result.PlaybackURL = playback.PlaybackURL(stream)
	logger.Info("stream captured", "url", stream.URL, "mime_type", stream.MimeType, "headers", len(stream.Headers))

	e.save(logger, result)
	return result, nil
}

// save hands the capture to the store. Failures are logged and recorded, never fatal to the run.
func (e *CaptureEngine) save(logger *log.Logger, result *CaptureRunResult) {
	if e.store == nil || result.Capture == nil {
		return
	}
	if err := e.store.SaveCapture(result.Capture); err != nil {
		logger.Warn("failed to save capture", "error", err)
		result.SaveErr = err
	}
}
