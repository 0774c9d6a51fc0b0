package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Capture errors
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrCaptureFailed      = fmt.Errorf("capture failed")
	ErrUnexpectedPayload  = fmt.Errorf("unexpected browser extension payload")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrCaptureNotFound    = fmt.Errorf("capture not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
