// Package vision integrates the hosted generative models used for container
// verification, reference-image synthesis, and assistant replies.
package vision

import (
	"context"
	"errors"

	"github.com/medassist-labs/medassist/internal/domain"
)

// ErrUnavailable is returned by image synthesis when the remote model is not
// reachable or not configured. Callers treat it as "no image yet" and keep
// showing a placeholder.
var ErrUnavailable = errors.New("vision: image synthesis unavailable")

// Classifier judges whether a captured container matches an expected
// description. Implementations never return an error: transport, parse,
// quota, and credential failures all degrade to a deterministic negative
// result so the workflow handles them as ordinary mismatches.
type Classifier interface {
	VerifyContainer(ctx context.Context, image []byte, expectedDescription string) domain.VerificationResult
}

// Synthesizer renders a reference image for a medication container.
type Synthesizer interface {
	GenerateContainerImage(ctx context.Context, name, description string) ([]byte, error)
}

// Assistant produces free-text assistant replies.
type Assistant interface {
	Reply(ctx context.Context, prompt string) string
}

const (
	labelOffline = "API offline"
	labelError   = "Error"
	labelUnknown = "Unknown"

	fallbackReply = "I had trouble connecting to my brain. Please try again."
	offlineReply  = "API Key not configured."
)

func negativeResult(label string) domain.VerificationResult {
	return domain.VerificationResult{Match: false, Confidence: 0, Label: label}
}

// Disabled implements all three collaborator contracts with their
// deterministic offline fallbacks. Used when no API key is configured.
type Disabled struct{}

// VerifyContainer always reports a non-match.
func (Disabled) VerifyContainer(context.Context, []byte, string) domain.VerificationResult {
	return negativeResult(labelOffline)
}

// GenerateContainerImage always reports the synthesizer as unavailable.
func (Disabled) GenerateContainerImage(context.Context, string, string) ([]byte, error) {
	return nil, ErrUnavailable
}

// Reply always returns the offline notice.
func (Disabled) Reply(context.Context, string) string {
	return offlineReply
}
