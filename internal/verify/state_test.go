package verify

import (
	"errors"
	"testing"
)

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		state State
		event Event
		want  State
	}{
		{StateIntro, EventCameraReady, StateCamera},
		{StateIntro, EventCameraFailed, StateTakeConfirm},
		{StateIntro, EventSkipToManual, StateTakeConfirm},
		{StateCamera, EventCapture, StateVerifying},
		{StateVerifying, EventClassified, StateResult},
		{StateResult, EventConfirmTaken, StateDone},
		{StateResult, EventConfirmAnyway, StateDone},
		{StateTakeConfirm, EventManualYes, StateDone},
		{StateTakeConfirm, EventManualNo, StateCancelled},
	}

	for _, tt := range tests {
		got, err := Next(tt.state, tt.event)
		if err != nil {
			t.Errorf("Next(%s, %s): unexpected error %v", tt.state, tt.event, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Next(%s, %s): expected %s, got %s", tt.state, tt.event, tt.want, got)
		}
	}
}

func TestNextCancelFromEveryNonTerminalState(t *testing.T) {
	for _, state := range []State{StateIntro, StateCamera, StateVerifying, StateResult, StateTakeConfirm} {
		got, err := Next(state, EventCancel)
		if err != nil {
			t.Errorf("cancel from %s: unexpected error %v", state, err)
			continue
		}
		if got != StateCancelled {
			t.Errorf("cancel from %s: expected cancelled, got %s", state, got)
		}
	}
}

func TestNextRejectsCancelOnTerminalStates(t *testing.T) {
	for _, state := range []State{StateDone, StateCancelled} {
		if _, err := Next(state, EventCancel); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("cancel from %s: expected ErrInvalidTransition, got %v", state, err)
		}
	}
}

func TestNextRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		state State
		event Event
	}{
		{StateIntro, EventCapture},
		{StateIntro, EventClassified},
		{StateIntro, EventConfirmTaken},
		{StateCamera, EventCameraReady},
		{StateCamera, EventManualYes},
		{StateVerifying, EventCapture},
		{StateVerifying, EventConfirmTaken},
		{StateResult, EventManualYes},
		{StateTakeConfirm, EventConfirmTaken},
		{StateDone, EventConfirmTaken},
		{StateDone, EventManualYes},
		{StateCancelled, EventCameraReady},
	}

	for _, tt := range tests {
		got, err := Next(tt.state, tt.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(%s, %s): expected ErrInvalidTransition, got %v", tt.state, tt.event, err)
		}
		if got != tt.state {
			t.Errorf("Next(%s, %s): state must not move on invalid event, got %s", tt.state, tt.event, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, state := range []State{StateIntro, StateCamera, StateVerifying, StateResult, StateTakeConfirm} {
		if state.Terminal() {
			t.Errorf("%s should not be terminal", state)
		}
	}
	for _, state := range []State{StateDone, StateCancelled} {
		if !state.Terminal() {
			t.Errorf("%s should be terminal", state)
		}
	}
}
