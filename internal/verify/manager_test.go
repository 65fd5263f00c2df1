package verify

import (
	"errors"
	"testing"

	"github.com/medassist-labs/medassist/internal/capture"
)

func newManagerWorkflow(out *outcome) *Workflow {
	return New(testMedication(), "device-a", &fakeProvider{acquireErr: capture.ErrUnavailable}, &fakeClassifier{}, out.callbacks(), 0)
}

func TestManagerTracksSingleWorkflowPerDevice(t *testing.T) {
	m := NewManager()

	if m.Get("device-a") != nil {
		t.Fatal("expected no workflow before start")
	}

	var out outcome
	w := newManagerWorkflow(&out)
	if err := m.Start("device-a", w); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if m.Get("device-a") != w {
		t.Fatal("expected started workflow to be active")
	}
}

func TestManagerStartRefusesWhileOpen(t *testing.T) {
	m := NewManager()

	var firstOut outcome
	first := newManagerWorkflow(&firstOut)
	if err := m.Start("device-a", first); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var secondOut outcome
	second := newManagerWorkflow(&secondOut)
	if err := m.Start("device-a", second); !errors.Is(err, ErrWorkflowOpen) {
		t.Fatalf("second Start: expected ErrWorkflowOpen, got %v", err)
	}

	// The refused start must not disturb the open workflow.
	if m.Get("device-a") != first {
		t.Fatal("refused start evicted the open workflow")
	}
	if first.Snapshot().State.Terminal() {
		t.Error("refused start must not cancel the open workflow")
	}
	if firstOut.cancelCount() != 0 || firstOut.confirmCount() != 0 {
		t.Error("refused start must not produce an outcome on the open workflow")
	}
}

func TestManagerStartReplacesStaleTerminalWorkflow(t *testing.T) {
	m := NewManager()

	var firstOut outcome
	first := newManagerWorkflow(&firstOut)
	if err := m.Start("device-a", first); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// The workflow completes but its removal raced and never happened.
	if err := first.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	var secondOut outcome
	second := newManagerWorkflow(&secondOut)
	if err := m.Start("device-a", second); err != nil {
		t.Fatalf("Start over terminal workflow: %v", err)
	}
	if m.Get("device-a") != second {
		t.Fatal("expected replacement workflow to be active")
	}
}

func TestManagerRemoveOnlyMatchingWorkflow(t *testing.T) {
	m := NewManager()

	var out1, out2 outcome
	first := newManagerWorkflow(&out1)
	second := newManagerWorkflow(&out2)

	if err := m.Start("device-a", first); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := first.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := m.Start("device-a", second); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	// Removing the stale workflow must not evict the active one.
	m.Remove("device-a", first)
	if m.Get("device-a") != second {
		t.Fatal("stale remove evicted the active workflow")
	}

	m.Remove("device-a", second)
	if m.Get("device-a") != nil {
		t.Fatal("expected no active workflow after remove")
	}
}
