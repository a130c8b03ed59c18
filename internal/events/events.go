// Package events delivers per-task progress streams to subscribers.
//
// The bus is written for one producer per task (the task's background
// goroutine) and any number of subscribers. Delivery is best-effort and
// never blocks the producer: a subscriber whose buffer is full loses
// events rather than queueing them unbounded. The latest event per task
// is retained so late subscribers start from a current snapshot.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
)

// ProgressEvent is an immutable snapshot of a task's counters and status,
// emitted whenever counters change or status transitions.
type ProgressEvent struct {
	TaskID           string    `json:"task_id"`
	Status           string    `json:"status"`
	ProcessedObjects int       `json:"processed_objects"`
	TotalObjects     int       `json:"total_objects"`
	ProcessedBytes   int64     `json:"processed_bytes"`
	TotalBytes       int64     `json:"total_bytes"`
	Message          string    `json:"message,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Terminal reports whether this event ends a subscriber's stream.
func (e ProgressEvent) Terminal() bool {
	switch e.Status {
	case "completed", "cancelled", "failed":
		return true
	}
	return false
}

// Bus fans progress events out to per-task subscribers.
type Bus struct {
	mu         sync.Mutex
	subs       map[string][]chan ProgressEvent
	latest     map[string]ProgressEvent
	bufferSize int
	closed     bool
	dropped    atomic.Int64 // events dropped due to full buffers
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &Bus{
		subs:       make(map[string][]chan ProgressEvent),
		latest:     make(map[string]ProgressEvent),
		bufferSize: bufferSize,
	}
}

// Subscribe creates a subscription for one task. If an event for the task
// has already been published, the latest snapshot is delivered first, so
// a late subscriber sees current state immediately. The channel is closed
// after a terminal event is delivered, or on Unsubscribe/Close.
//
// Registration and snapshot delivery happen under the bus lock, so no
// event published afterwards can be missed or reordered.
func (b *Bus) Subscribe(taskID string) <-chan ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan ProgressEvent, b.bufferSize)

	if b.closed {
		close(ch)
		return ch
	}

	if last, ok := b.latest[taskID]; ok {
		ch <- last
		if last.Terminal() {
			// Stream is already over; hand out the snapshot and a
			// finished channel without registering.
			close(ch)
			return ch
		}
	}

	b.subs[taskID] = append(b.subs[taskID], ch)
	return ch
}

// Publish delivers an event to every subscriber of its task,
// non-blocking. Terminal events close and drop all of the task's
// subscriber channels; the terminal snapshot stays available to late
// subscribers until Forget.
func (b *Bus) Publish(event ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.latest[event.TaskID] = event

	for _, ch := range b.subs[event.TaskID] {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full - drop for that subscriber.
			b.dropped.Add(1)
		}
	}

	if event.Terminal() {
		for _, ch := range b.subs[event.TaskID] {
			close(ch)
		}
		delete(b.subs, event.TaskID)
	}
}

// Unsubscribe removes a subscription before its stream has terminated.
// Safe to call with an already-closed channel.
func (b *Bus) Unsubscribe(taskID string, ch <-chan ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subscribers := b.subs[taskID]
	for i, subCh := range subscribers {
		if subCh == ch {
			close(subCh)
			subscribers[i] = subscribers[len(subscribers)-1]
			b.subs[taskID] = subscribers[:len(subscribers)-1]
			break
		}
	}
	if len(b.subs[taskID]) == 0 {
		delete(b.subs, taskID)
	}
}

// Forget drops the retained snapshot for an evicted task.
func (b *Bus) Forget(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.latest, taskID)
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	b.subs = nil
}

// DroppedEvents returns how many events were dropped due to full
// subscriber buffers. Useful for sizing EVENT_BUFFER.
func (b *Bus) DroppedEvents() int64 {
	return b.dropped.Load()
}
