package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/medassist-labs/medassist/internal/capture"
	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/vision"
)

// defaultVerifyTimeout bounds the still extraction plus classifier round trip.
const defaultVerifyTimeout = 30 * time.Second

// Callbacks report the workflow outcome to its caller. OnConfirm fires
// exactly once per non-cancelled completion; OnCancel fires once on abort
// and means no log entry is written.
type Callbacks struct {
	OnConfirm func(verified bool)
	OnCancel  func()
}

// Workflow drives one verification invocation for one medication. It owns
// its transient state and the acquired capture stream; it never writes to
// the log store itself.
type Workflow struct {
	med           domain.Medication
	deviceID      string
	provider      capture.Provider
	classifier    vision.Classifier
	callbacks     Callbacks
	verifyTimeout time.Duration

	mu      sync.Mutex
	state   State
	message string
	result  *domain.VerificationResult
	stream  capture.Stream
	gen     uint64 // bumped on every terminal event; guards superseded classifier responses
}

// New creates a workflow in the intro state.
func New(med domain.Medication, deviceID string, provider capture.Provider, classifier vision.Classifier, callbacks Callbacks, verifyTimeout time.Duration) *Workflow {
	if verifyTimeout <= 0 {
		verifyTimeout = defaultVerifyTimeout
	}
	return &Workflow{
		med:           med,
		deviceID:      deviceID,
		provider:      provider,
		classifier:    classifier,
		callbacks:     callbacks,
		verifyTimeout: verifyTimeout,
		state:         StateIntro,
		message:       introMessage(med),
	}
}

// Medication returns the medication under verification.
func (w *Workflow) Medication() domain.Medication {
	return w.med
}

// Snapshot is the shell-facing view of the workflow.
type Snapshot struct {
	State      State                      `json:"state"`
	Message    string                     `json:"message"`
	Medication domain.Medication          `json:"medication"`
	Result     *domain.VerificationResult `json:"result,omitempty"`
}

// Snapshot returns the current state, assistant message, and result.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:      w.state,
		Message:    w.message,
		Medication: w.med,
	}
	if w.result != nil {
		r := *w.result
		snap.Result = &r
	}
	return snap
}

// RequestCamera attempts camera acquisition from the intro state. A failed
// acquisition is recoverable: the workflow routes to the manual fallback
// with an explanatory message instead of entering a camera state with no
// usable picture.
func (w *Workflow) RequestCamera(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateIntro {
		return fmt.Errorf("%w: camera request in state %s", ErrInvalidTransition, w.state)
	}

	stream, err := w.provider.Acquire(ctx, w.deviceID)
	if err != nil {
		slog.Info("Camera acquisition failed, falling back to manual confirmation",
			"device_id", w.deviceID, "medication_id", w.med.ID, "error", err)
		next, terr := Next(w.state, EventCameraFailed)
		if terr != nil {
			return terr
		}
		w.state = next
		w.message = cameraFailedMessage(w.med)
		return nil
	}

	next, terr := Next(w.state, EventCameraReady)
	if terr != nil {
		stream.Release()
		return terr
	}
	w.stream = stream
	w.state = next
	w.message = cameraMessage(w.med)
	return nil
}

// SkipToManual bypasses the camera path from the intro state.
func (w *Workflow) SkipToManual() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := Next(w.state, EventSkipToManual)
	if err != nil {
		return err
	}
	w.state = next
	w.message = manualMessage(w.med)
	return nil
}

// Capture extracts one still frame and submits it to the classifier. The
// round trip runs asynchronously; the workflow sits in verifying until the
// judgement arrives or the user cancels.
func (w *Workflow) Capture(_ context.Context) error {
	w.mu.Lock()

	if w.state != StateCamera || w.stream == nil {
		w.mu.Unlock()
		return fmt.Errorf("%w: capture in state %s", ErrInvalidTransition, w.state)
	}
	next, err := Next(w.state, EventCapture)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.state = next
	w.message = verifyingMessage(w.med)
	stream := w.stream
	gen := w.gen
	w.mu.Unlock()

	go w.runVerification(stream, gen)
	return nil
}

// runVerification performs the still extraction and classifier round trip.
// The request context is deliberately not used: the HTTP request that
// triggered the capture completes immediately, while this round trip keeps
// its own deadline.
func (w *Workflow) runVerification(stream capture.Stream, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), w.verifyTimeout)
	defer cancel()

	frame, err := stream.Still(ctx)

	// Resource-release contract: all acquired tracks stop as soon as the
	// frame is extracted (or extraction fails), regardless of classifier
	// outcome.
	stream.Release()
	w.mu.Lock()
	if w.stream == stream {
		w.stream = nil
	}
	w.mu.Unlock()

	var result domain.VerificationResult
	if err != nil {
		slog.Warn("Still frame extraction failed",
			"device_id", w.deviceID, "medication_id", w.med.ID, "error", err)
		result = domain.VerificationResult{Match: false, Confidence: 0, Label: "Error"}
	} else {
		result = w.classifier.VerifyContainer(ctx, frame, w.med.ContainerDescription)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gen != gen || w.state != StateVerifying {
		// Superseded: the user cancelled while the round trip was in
		// flight. The late judgement must not move the workflow or touch
		// any resource.
		return
	}

	next, err := Next(w.state, EventClassified)
	if err != nil {
		return
	}
	w.state = next
	w.result = &result
	if result.Match {
		w.message = matchMessage(w.med, result)
	} else {
		w.message = mismatchMessage(w.med, result)
	}
}

// ConfirmTaken is the single-action confirm offered on a matched result.
func (w *Workflow) ConfirmTaken() error {
	w.mu.Lock()
	if w.state == StateResult && (w.result == nil || !w.result.Match) {
		w.mu.Unlock()
		return fmt.Errorf("%w: confirm_taken requires a matched result", ErrInvalidTransition)
	}
	return w.completeLocked(EventConfirmTaken, true)
}

// ConfirmAnyway is the explicit extra step required on a mismatch. The
// mismatch never blocks completion; it only removes the auto-trusted path.
func (w *Workflow) ConfirmAnyway() error {
	w.mu.Lock()
	if w.state == StateResult && w.result != nil && w.result.Match {
		w.mu.Unlock()
		return fmt.Errorf("%w: confirm_anyway requires a mismatched result", ErrInvalidTransition)
	}
	return w.completeLocked(EventConfirmAnyway, false)
}

// ManualYes confirms the dose without verification.
func (w *Workflow) ManualYes() error {
	w.mu.Lock()
	return w.completeLocked(EventManualYes, false)
}

// ManualNo declines the manual confirmation and aborts with no outcome.
func (w *Workflow) ManualNo() error {
	w.mu.Lock()
	return w.completeLocked(EventManualNo, false)
}

// Cancel aborts from any non-terminal state, releasing any held capture
// resource. The caller receives no outcome and writes no log entry.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	return w.completeLocked(EventCancel, false)
}

// completeLocked applies a terminal event. The caller holds w.mu; the lock
// is released before the outcome callback fires so callbacks may re-enter
// the workflow (e.g. to take a snapshot).
func (w *Workflow) completeLocked(event Event, verified bool) error {
	next, err := Next(w.state, event)
	if err != nil {
		w.mu.Unlock()
		return err
	}

	w.gen++
	if w.stream != nil {
		w.stream.Release()
		w.stream = nil
	}
	w.state = next

	var notify func()
	if next == StateDone {
		onConfirm := w.callbacks.OnConfirm
		notify = func() {
			if onConfirm != nil {
				onConfirm(verified)
			}
		}
	} else {
		onCancel := w.callbacks.OnCancel
		notify = func() {
			if onCancel != nil {
				onCancel()
			}
		}
	}
	w.mu.Unlock()

	notify()
	return nil
}
