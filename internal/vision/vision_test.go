package vision

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledClassifierIsDeterministicNegative(t *testing.T) {
	result := Disabled{}.VerifyContainer(context.Background(), []byte("jpeg"), "white bottle with blue cap")

	if result.Match {
		t.Error("offline classifier must never report a match")
	}
	if result.Confidence != 0 {
		t.Errorf("offline confidence should be 0, got %v", result.Confidence)
	}
	if result.Label != labelOffline {
		t.Errorf("expected label %q, got %q", labelOffline, result.Label)
	}
}

func TestDisabledSynthesizerUnavailable(t *testing.T) {
	_, err := Disabled{}.GenerateContainerImage(context.Background(), "Metformin", "white bottle with blue cap")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDisabledAssistantReply(t *testing.T) {
	if got := (Disabled{}).Reply(context.Background(), "hello"); got != offlineReply {
		t.Errorf("expected offline reply, got %q", got)
	}
}

func TestParseVerification(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantMatch      bool
		wantConfidence float64
		wantLabel      string
	}{
		{
			name:           "well formed match",
			text:           `{"match": true, "confidence": 0.92, "label": "white bottle with blue cap"}`,
			wantMatch:      true,
			wantConfidence: 0.92,
			wantLabel:      "white bottle with blue cap",
		},
		{
			name:           "well formed mismatch",
			text:           `{"match": false, "confidence": 0.4, "label": "green box"}`,
			wantMatch:      false,
			wantConfidence: 0.4,
			wantLabel:      "green box",
		},
		{
			name:           "malformed json degrades to negative",
			text:           `not json at all`,
			wantMatch:      false,
			wantConfidence: 0,
			wantLabel:      labelError,
		},
		{
			name:           "missing label normalized",
			text:           `{"match": true, "confidence": 0.8}`,
			wantMatch:      true,
			wantConfidence: 0.8,
			wantLabel:      labelUnknown,
		},
		{
			name:           "confidence clamped high",
			text:           `{"match": true, "confidence": 3.5, "label": "bottle"}`,
			wantMatch:      true,
			wantConfidence: 1,
			wantLabel:      "bottle",
		},
		{
			name:           "confidence clamped low",
			text:           `{"match": false, "confidence": -2, "label": "bottle"}`,
			wantMatch:      false,
			wantConfidence: 0,
			wantLabel:      "bottle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseVerification(tt.text)
			if got.Match != tt.wantMatch {
				t.Errorf("match: expected %v, got %v", tt.wantMatch, got.Match)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence: expected %v, got %v", tt.wantConfidence, got.Confidence)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("label: expected %q, got %q", tt.wantLabel, got.Label)
			}
		})
	}
}
