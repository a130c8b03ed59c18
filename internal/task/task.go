// Package task tracks folder-download tasks: the task model, the
// process-wide registry and the lifecycle rules around cancellation,
// retrieval and eviction.
package task

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"   // created, background work not yet running
	StatusRunning   Status = "running"   // enumerating or archiving
	StatusCompleted Status = "completed" // archive finalized and retrievable
	StatusCancelled Status = "cancelled" // stopped by explicit request, no artifact
	StatusFailed    Status = "failed"    // stopped by unrecoverable error, no artifact
)

// Terminal reports whether the status is final. Counters and status never
// change after a terminal status is reached.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Task is one folder-download job. All counter and status mutation is
// performed by exactly one writer, the task's background goroutine; the
// cancel flag is the only field other goroutines set, and it is atomic.
// Readers go through Snapshot for a consistent view.
type Task struct {
	id     string
	prefix string

	mu               sync.RWMutex
	status           Status
	totalObjects     int
	totalBytes       int64
	processedObjects int
	processedBytes   int64
	archivePath      string
	err              error
	createdAt        time.Time
	startedAt        time.Time
	completedAt      time.Time

	// Retrieval/eviction coordination: readers holding the archive open
	// keep it pinned; eviction requested while pinned is deferred until
	// the last reader releases.
	readers      int
	evictPending bool

	cancelRequested atomic.Bool
}

// Snapshot is an internally consistent copy of a task's observable state.
type Snapshot struct {
	ID               string    `json:"id"`
	Prefix           string    `json:"prefix"`
	Status           Status    `json:"status"`
	TotalObjects     int       `json:"total_objects"`
	TotalBytes       int64     `json:"total_bytes"`
	ProcessedObjects int       `json:"processed_objects"`
	ProcessedBytes   int64     `json:"processed_bytes"`
	ArchivePath      string    `json:"-"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	StartedAt        time.Time `json:"started_at,omitzero"`
	CompletedAt      time.Time `json:"completed_at,omitzero"`
}

func newTask(id, prefix string) *Task {
	return &Task{
		id:        id,
		prefix:    prefix,
		status:    StatusPending,
		createdAt: time.Now(),
	}
}

// ID returns the immutable task identifier.
func (t *Task) ID() string { return t.id }

// Prefix returns the immutable requested folder path.
func (t *Task) Prefix() string { return t.prefix }

// Snapshot returns a consistent copy of all observable fields.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		ID:               t.id,
		Prefix:           t.prefix,
		Status:           t.status,
		TotalObjects:     t.totalObjects,
		TotalBytes:       t.totalBytes,
		ProcessedObjects: t.processedObjects,
		ProcessedBytes:   t.processedBytes,
		ArchivePath:      t.archivePath,
		CreatedAt:        t.createdAt,
		StartedAt:        t.startedAt,
		CompletedAt:      t.completedAt,
	}
	if t.err != nil {
		s.Error = t.err.Error()
	}
	return s
}

// Start transitions PENDING -> RUNNING. Writer-only.
func (t *Task) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusPending {
		t.status = StatusRunning
		t.startedAt = time.Now()
	}
}

// SetTotals records the enumeration result. Totals are immutable
// afterwards. Writer-only.
func (t *Task) SetTotals(objects int, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalObjects = objects
	t.totalBytes = bytes
}

// Advance increments the processed counters after one object has been
// fully written to the archive. Writer-only.
func (t *Task) Advance(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.processedObjects++
	t.processedBytes += bytes
}

// Complete transitions RUNNING -> COMPLETED and records the archive
// location. Writer-only.
func (t *Task) Complete(archivePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = StatusCompleted
	t.archivePath = archivePath
	t.completedAt = time.Now()
}

// Fail transitions to FAILED with the given error. Writer-only.
func (t *Task) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = StatusFailed
	t.err = err
	t.completedAt = time.Now()
}

// MarkCancelled transitions to CANCELLED. Writer-only; called by the
// background goroutine once it observes the cancel flag.
func (t *Task) MarkCancelled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return
	}
	t.status = StatusCancelled
	t.completedAt = time.Now()
}

// RequestCancel flips the cancel flag. Safe from any goroutine; the
// background goroutine observes it between objects.
func (t *Task) RequestCancel() {
	t.cancelRequested.Store(true)
}

// CancelRequested reports whether cancellation has been requested.
func (t *Task) CancelRequested() bool {
	return t.cancelRequested.Load()
}
