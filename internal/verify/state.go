// Package verify implements the dose-verification workflow: a linear state
// machine driving the user from intro through camera capture and remote
// classification to a single confirmed outcome.
package verify

import (
	"errors"
	"fmt"
)

// State identifies one step of the verification workflow.
type State string

const (
	// StateIntro offers camera verification or the manual fallback.
	StateIntro State = "intro"
	// StateCamera exposes the live capture surface. Reached only after a
	// successful acquisition; acquisition failure routes to take_confirm.
	StateCamera State = "camera"
	// StateVerifying is the classifier round trip. No user input accepted.
	StateVerifying State = "verifying"
	// StateResult presents the classifier judgement.
	StateResult State = "result"
	// StateTakeConfirm is the manual yes/no fallback.
	StateTakeConfirm State = "take_confirm"
	// StateDone is the terminal state after the caller was notified.
	StateDone State = "done"
	// StateCancelled is the terminal state after an abort; no outcome.
	StateCancelled State = "cancelled"
)

// Terminal reports whether the state accepts no further events.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// Event is an input to the transition function.
type Event string

const (
	// EventCameraReady reports a successful camera acquisition.
	EventCameraReady Event = "camera_ready"
	// EventCameraFailed reports a failed acquisition; recoverable.
	EventCameraFailed Event = "camera_failed"
	// EventCapture extracts the still frame and starts classification.
	EventCapture Event = "capture"
	// EventClassified reports the classifier judgement.
	EventClassified Event = "classified"
	// EventSkipToManual bypasses the camera path from the intro.
	EventSkipToManual Event = "skip_manual"
	// EventConfirmTaken is the single-action confirm on a matched result.
	EventConfirmTaken Event = "confirm_taken"
	// EventConfirmAnyway is the explicit extra step on a mismatched result.
	EventConfirmAnyway Event = "confirm_anyway"
	// EventManualYes confirms the dose without verification.
	EventManualYes Event = "manual_yes"
	// EventManualNo declines the manual confirmation; aborts.
	EventManualNo Event = "manual_no"
	// EventCancel aborts from any non-terminal state.
	EventCancel Event = "cancel"
)

// ErrInvalidTransition is returned when an event is not legal in the
// current state.
var ErrInvalidTransition = errors.New("verify: invalid transition")

// Next is the pure transition function. It encodes the workflow shape
// without any I/O so the state machine is testable on its own.
func Next(state State, event Event) (State, error) {
	if event == EventCancel {
		if state.Terminal() {
			return state, fmt.Errorf("%w: %s on terminal %s", ErrInvalidTransition, event, state)
		}
		return StateCancelled, nil
	}

	switch state {
	case StateIntro:
		switch event {
		case EventCameraReady:
			return StateCamera, nil
		case EventCameraFailed, EventSkipToManual:
			return StateTakeConfirm, nil
		}
	case StateCamera:
		if event == EventCapture {
			return StateVerifying, nil
		}
	case StateVerifying:
		if event == EventClassified {
			return StateResult, nil
		}
	case StateResult:
		if event == EventConfirmTaken || event == EventConfirmAnyway {
			return StateDone, nil
		}
	case StateTakeConfirm:
		switch event {
		case EventManualYes:
			return StateDone, nil
		case EventManualNo:
			return StateCancelled, nil
		}
	}

	return state, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, state)
}
