package events

import (
	"testing"
	"time"
)

func progressAt(taskID string, processed int, status string) ProgressEvent {
	return ProgressEvent{
		TaskID:           taskID,
		Status:           status,
		ProcessedObjects: processed,
		TotalObjects:     10,
		Timestamp:        time.Now(),
	}
}

func receiveEvent(t *testing.T, ch <-chan ProgressEvent) ProgressEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed before event arrived")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
		return ProgressEvent{}
	}
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	ch := bus.Subscribe("task-1")
	bus.Publish(progressAt("task-1", 1, "running"))
	bus.Publish(progressAt("task-1", 2, "running"))

	first := receiveEvent(t, ch)
	if first.ProcessedObjects != 1 {
		t.Errorf("Expected first event processed=1, got %d", first.ProcessedObjects)
	}
	second := receiveEvent(t, ch)
	if second.ProcessedObjects != 2 {
		t.Errorf("Expected second event processed=2, got %d", second.ProcessedObjects)
	}
}

func TestLateSubscriberGetsLatestSnapshot(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	bus.Publish(progressAt("task-1", 1, "running"))
	bus.Publish(progressAt("task-1", 5, "running"))

	ch := bus.Subscribe("task-1")

	ev := receiveEvent(t, ch)
	if ev.ProcessedObjects != 5 {
		t.Errorf("Expected latest snapshot processed=5, got %d", ev.ProcessedObjects)
	}

	// Events published after subscription still arrive in order.
	bus.Publish(progressAt("task-1", 6, "running"))
	ev = receiveEvent(t, ch)
	if ev.ProcessedObjects != 6 {
		t.Errorf("Expected processed=6 after snapshot, got %d", ev.ProcessedObjects)
	}
}

func TestTerminalEventClosesSubscribers(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	ch := bus.Subscribe("task-1")
	bus.Publish(progressAt("task-1", 10, "completed"))

	ev := receiveEvent(t, ch)
	if !ev.Terminal() {
		t.Errorf("Expected terminal event, got status %q", ev.Status)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected channel closed after terminal event, got another event")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for channel close")
	}
}

func TestSubscribeAfterTerminalEvent(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	bus.Publish(progressAt("task-1", 10, "completed"))

	ch := bus.Subscribe("task-1")
	ev := receiveEvent(t, ch)
	if ev.Status != "completed" {
		t.Errorf("Expected completed snapshot, got %q", ev.Status)
	}
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after terminal snapshot")
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	ch := bus.Subscribe("task-1")
	bus.Publish(progressAt("task-1", 1, "running"))
	bus.Publish(progressAt("task-1", 2, "running"))
	bus.Publish(progressAt("task-1", 3, "running"))

	if bus.DroppedEvents() != 2 {
		t.Errorf("Expected 2 dropped events, got %d", bus.DroppedEvents())
	}

	// The subscriber still holds the first event; publishing never blocked.
	ev := receiveEvent(t, ch)
	if ev.ProcessedObjects != 1 {
		t.Errorf("Expected buffered event processed=1, got %d", ev.ProcessedObjects)
	}
}

func TestTasksAreIndependent(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	chA := bus.Subscribe("task-a")
	chB := bus.Subscribe("task-b")

	bus.Publish(progressAt("task-a", 1, "running"))

	ev := receiveEvent(t, chA)
	if ev.TaskID != "task-a" {
		t.Errorf("Expected event for task-a, got %q", ev.TaskID)
	}

	select {
	case ev := <-chB:
		t.Errorf("Expected no event for task-b, got one for %q", ev.TaskID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	ch := bus.Subscribe("task-1")
	bus.Unsubscribe("task-1", ch)

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(progressAt("task-1", 1, "running"))
}

func TestForgetDropsRetainedSnapshot(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	bus.Publish(progressAt("task-1", 10, "completed"))
	bus.Forget("task-1")

	ch := bus.Subscribe("task-1")
	select {
	case ev, ok := <-ch:
		if ok {
			t.Errorf("Expected no snapshot after Forget, got processed=%d", ev.ProcessedObjects)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseShutsDownAllSubscribers(t *testing.T) {
	bus := NewBus(8)

	ch := bus.Subscribe("task-1")
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after bus Close")
	}

	// Subscribe after close returns a closed channel.
	late := bus.Subscribe("task-2")
	if _, ok := <-late; ok {
		t.Error("Expected closed channel from Subscribe after Close")
	}
}
