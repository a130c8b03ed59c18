package task

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown or already-evicted task ids.
	ErrNotFound = errors.New("task not found")

	// ErrNotReady is returned when the archive is requested before the
	// task has completed.
	ErrNotReady = errors.New("archive not ready")
)

// Registry is the process-wide task table. It is the only state shared
// between background goroutines, cancellation callers and progress
// subscribers; everything goes through its accessors.
//
// Thread-safe. Reads return copy-on-read snapshots, never live pointers.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Create allocates a task for the given prefix in PENDING state. Task
// ids are random UUIDs and are never reused.
func (r *Registry) Create(prefix string) *Task {
	t := newTask(uuid.New().String(), prefix)

	r.mu.Lock()
	r.tasks[t.ID()] = t
	r.mu.Unlock()

	return t
}

// Get returns a snapshot of the task, or ErrNotFound.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return t.Snapshot(), nil
}

// RequestCancel flips the task's cancel flag. Cancelling a task that is
// already terminal is a no-op but still succeeds.
func (r *Registry) RequestCancel(id string) error {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	t.RequestCancel()
	return nil
}

// OpenArchive pins the task's archive for reading and returns its path.
// Returns ErrNotFound for unknown ids and ErrNotReady unless the task is
// COMPLETED. Every successful call must be paired with CloseArchive.
//
// While pinned, eviction will not unlink the file; an eviction that
// arrives mid-read is deferred to the final CloseArchive.
func (r *Registry) OpenArchive(id string) (string, error) {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusCompleted {
		return "", ErrNotReady
	}
	if t.evictPending {
		// Eviction already decided; treat as gone.
		return "", ErrNotFound
	}
	t.readers++
	return t.archivePath, nil
}

// CloseArchive releases a pin taken by OpenArchive. If an eviction was
// deferred while readers were active, the last release completes it.
func (r *Registry) CloseArchive(id string) {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return
	}

	t.mu.Lock()
	if t.readers > 0 {
		t.readers--
	}
	finish := t.evictPending && t.readers == 0
	path := t.archivePath
	t.mu.Unlock()

	if finish {
		r.remove(id, path)
	}
}

// Evict removes a task's registry entry and its archive file. If the
// archive is currently open for retrieval, the entry disappears now and
// the file is unlinked once the last reader closes.
func (r *Registry) Evict(id string) {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()

	if !ok {
		return
	}

	t.mu.Lock()
	t.evictPending = true
	deferred := t.readers > 0
	path := t.archivePath
	t.mu.Unlock()

	if deferred {
		return
	}
	r.remove(id, path)
}

// ExpiredTasks returns ids of terminal tasks whose completion is older
// than the retention window.
func (r *Registry) ExpiredTasks(retention time.Duration) []string {
	cutoff := time.Now().Add(-retention)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []string
	for id, t := range r.tasks {
		s := t.Snapshot()
		if s.Status.Terminal() && s.CompletedAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	return expired
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *Registry) remove(id, archivePath string) {
	r.mu.Lock()
	delete(r.tasks, id)
	r.mu.Unlock()

	if archivePath != "" {
		// Best effort; the stale-archive sweep catches leftovers.
		_ = os.Remove(archivePath)
	}
}
