package task

import (
	"errors"
	"testing"
)

func TestLifecycleTransitions(t *testing.T) {
	tk := newTask("id-1", "photos/")

	if s := tk.Snapshot(); s.Status != StatusPending {
		t.Errorf("Expected pending, got %s", s.Status)
	}

	tk.Start()
	if s := tk.Snapshot(); s.Status != StatusRunning {
		t.Errorf("Expected running, got %s", s.Status)
	}
	if tk.Snapshot().StartedAt.IsZero() {
		t.Error("Expected StartedAt to be set after Start")
	}

	tk.SetTotals(3, 60)
	tk.Advance(10)
	tk.Advance(20)

	s := tk.Snapshot()
	if s.ProcessedObjects != 2 || s.ProcessedBytes != 30 {
		t.Errorf("Expected 2 objects / 30 bytes processed, got %d / %d",
			s.ProcessedObjects, s.ProcessedBytes)
	}
	if s.TotalObjects != 3 || s.TotalBytes != 60 {
		t.Errorf("Expected totals 3 / 60, got %d / %d", s.TotalObjects, s.TotalBytes)
	}

	tk.Complete("/tmp/id-1.zip")
	s = tk.Snapshot()
	if s.Status != StatusCompleted {
		t.Errorf("Expected completed, got %s", s.Status)
	}
	if s.ArchivePath != "/tmp/id-1.zip" {
		t.Errorf("Expected archive path recorded, got %q", s.ArchivePath)
	}
	if s.CompletedAt.IsZero() {
		t.Error("Expected CompletedAt to be set after Complete")
	}
}

func TestTerminalStateIsImmutable(t *testing.T) {
	tk := newTask("id-1", "photos/")
	tk.Start()
	tk.Fail(errors.New("boom"))

	tk.Advance(10)
	tk.Complete("/tmp/id-1.zip")
	tk.MarkCancelled()

	s := tk.Snapshot()
	if s.Status != StatusFailed {
		t.Errorf("Expected failed to stick, got %s", s.Status)
	}
	if s.ProcessedObjects != 0 {
		t.Errorf("Expected counters frozen after terminal state, got %d", s.ProcessedObjects)
	}
	if s.Error != "boom" {
		t.Errorf("Expected error message retained, got %q", s.Error)
	}
}

func TestCancelFlag(t *testing.T) {
	tk := newTask("id-1", "photos/")

	if tk.CancelRequested() {
		t.Error("Expected cancel flag unset initially")
	}
	tk.RequestCancel()
	if !tk.CancelRequested() {
		t.Error("Expected cancel flag set after RequestCancel")
	}

	// The flag only requests; the status changes when the worker observes it.
	if s := tk.Snapshot(); s.Status != StatusPending {
		t.Errorf("Expected status unchanged by RequestCancel, got %s", s.Status)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusCancelled, StatusFailed} {
		if !status.Terminal() {
			t.Errorf("Expected %s to be terminal", status)
		}
	}
	for _, status := range []Status{StatusPending, StatusRunning} {
		if status.Terminal() {
			t.Errorf("Expected %s to be non-terminal", status)
		}
	}
}
