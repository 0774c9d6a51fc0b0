// Package tasks orchestrates capture sessions with real-time progress reporting.
//
// # Core Operations
//
//  1. [CaptureEngine.Run] : One full capture session
//     - Starts the catcher worker on the configured host and port
//     - Waits for it with a [Waiter]
//     - Decodes the browser extension payload and cleans its headers
//     - Saves the outcome through the optional [CaptureStore]
//
//  2. [Waiter.Wait] : The polling loop around a running worker
//     - One step per StepInterval, Steps in total
//     - Stops early when the worker exits, the context is cancelled or the abort channel closes
//     - Cancels the handle and joins the worker with a bounded timeout
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, time left, messages, and optional data for
// advanced UI rendering. Updates use select with default to prevent blocking.
//
// # Capture Persistence
//
// The optional [CaptureStore] interface records every run, successful or not. Save failures are logged and
// reported on the result without failing the run.
package tasks
