package analysis

import "errors"

var (
	// ErrNotConfigured means the external model credential is absent.
	ErrNotConfigured = errors.New("model client not configured")

	// ErrInvalidInput marks caller mistakes detected before any outbound call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidResult marks model output that does not match the result shape.
	ErrInvalidResult = errors.New("invalid model result")
)

// UpstreamError wraps a failed model call or an unusable model response.
type UpstreamError struct {
	Kind Kind
	Err  error
}

func (e *UpstreamError) Error() string {
	return "analyze " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }
