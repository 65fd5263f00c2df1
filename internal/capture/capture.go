// Package capture owns the camera acquisition lifecycle and single
// still-frame extraction for the verification workflow.
package capture

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Acquire when no camera input can be opened
// (no device, permission denied, no live feed). Callers must treat it as a
// recoverable condition and fall back to manual confirmation.
var ErrUnavailable = errors.New("capture: camera unavailable")

// ErrNoFrame is returned by Still when the live input produced no usable
// frame before the context expired.
var ErrNoFrame = errors.New("capture: no frame available")

// ErrReleased is returned by Still after the stream has been released.
var ErrReleased = errors.New("capture: stream released")

// Stream is one live acquisition. The workflow extracts at most one still
// frame per acquisition and must call Release on every exit path. Release is
// idempotent; the underlying stop happens exactly once.
type Stream interface {
	// Still extracts one JPEG-encoded frame from the live input.
	Still(ctx context.Context) ([]byte, error)

	// Release stops all tracks acquired for this stream.
	Release()
}

// Provider acquires a live video input on demand.
type Provider interface {
	// Acquire opens the camera input for the given device. Acquisition
	// failure surfaces as ErrUnavailable, never as a fatal error.
	Acquire(ctx context.Context, deviceID string) (Stream, error)
}
