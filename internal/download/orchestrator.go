// Package download coordinates folder-download tasks: it owns the
// enumerate-then-archive pipeline, the concurrency cap, progress
// publishing, cancellation wiring, archive retrieval and eviction.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ashik5757/Minio-Private-Bucket/internal/archive"
	"github.com/ashik5757/Minio-Private-Bucket/internal/config"
	"github.com/ashik5757/Minio-Private-Bucket/internal/events"
	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/task"
)

var (
	// ErrCapacityExceeded is returned synchronously by Start when the
	// concurrent-download cap is reached. Requests are rejected, never
	// queued, so callers get immediate feedback.
	ErrCapacityExceeded = errors.New("too many concurrent folder downloads")

	// ErrEmptyFolder is returned for a prefix with no objects.
	ErrEmptyFolder = errors.New("no objects found under prefix")
)

// Orchestrator is the public face of the folder-archival subsystem. One
// background goroutine per accepted request owns the whole pipeline for
// its task; all shared state lives in the task registry.
type Orchestrator struct {
	store    storage.Store
	registry *task.Registry
	bus      *events.Bus
	builder  *archive.Builder
	log      *logging.Logger

	archiveDir   string
	fetchTimeout time.Duration
	retention    time.Duration
	sweepEvery   time.Duration

	sem *semaphore.Weighted

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewOrchestrator wires the subsystem together. The scratch directory is
// created if missing and swept once for archives orphaned by a previous
// process.
func NewOrchestrator(cfg *config.Config, store storage.Store, registry *task.Registry, bus *events.Bus, logger *logging.Logger) (*Orchestrator, error) {
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Orphans only: archives belonging to live tasks are removed through
	// the registry, which respects in-flight retrievals.
	if _, err := archive.CleanStale(cfg.ArchiveDir, cfg.ArchiveRetention, logger); err != nil {
		logger.Warn().Err(err).Msg("startup archive sweep failed")
	}

	return &Orchestrator{
		store:        store,
		registry:     registry,
		bus:          bus,
		builder:      archive.NewBuilder(logger),
		log:          logger,
		archiveDir:   cfg.ArchiveDir,
		fetchTimeout: cfg.FetchTimeout,
		retention:    cfg.ArchiveRetention,
		sweepEvery:   cfg.SweepInterval,
		sem:          semaphore.NewWeighted(int64(cfg.MaxConcurrentDownloads)),
		stop:         make(chan struct{}),
	}, nil
}

// Start accepts a folder-download request and schedules its background
// work. Repeated calls for the same prefix create distinct tasks.
// Returns ErrCapacityExceeded when the cap is reached.
func (o *Orchestrator) Start(prefix string) (string, error) {
	if !o.sem.TryAcquire(1) {
		return "", ErrCapacityExceeded
	}

	t := o.registry.Create(storage.NormalizePrefix(prefix))
	o.publish(t, "queued")

	o.log.Info().Str("task", t.ID()).Str("prefix", t.Prefix()).Msg("folder download started")

	o.wg.Add(1)
	go o.run(t)

	return t.ID(), nil
}

// run owns the whole pipeline for one task. It is the task's single
// writer; nothing else mutates counters or status.
func (o *Orchestrator) run(t *task.Task) {
	defer o.wg.Done()
	defer o.sem.Release(1)

	ctx := context.Background()

	t.Start()
	o.publish(t, "enumerating objects")

	listing, err := o.store.ListFolder(ctx, t.Prefix())
	if err != nil {
		o.fail(t, err)
		return
	}
	if listing.Count() == 0 {
		o.fail(t, fmt.Errorf("%w %q", ErrEmptyFolder, t.Prefix()))
		return
	}

	t.SetTotals(listing.Count(), listing.TotalBytes)
	o.publish(t, "archiving")

	if t.CancelRequested() {
		o.cancelled(t)
		return
	}

	archivePath := filepath.Join(o.archiveDir, t.ID()+".zip")
	fetcher := &timeoutFetcher{inner: o.store, timeout: o.fetchTimeout}

	err = o.builder.BuildFile(ctx, archivePath, listing, fetcher, func(obj storage.Object) bool {
		t.Advance(obj.Size)
		o.publish(t, "")
		return !t.CancelRequested()
	})

	switch {
	case errors.Is(err, archive.ErrAborted):
		o.cancelled(t)
	case err != nil:
		o.fail(t, err)
	default:
		t.Complete(archivePath)
		o.publish(t, "archive ready")
		o.log.Info().
			Str("task", t.ID()).
			Int("objects", listing.Count()).
			Int64("bytes", listing.TotalBytes).
			Msg("folder download completed")
	}
}

func (o *Orchestrator) fail(t *task.Task, err error) {
	t.Fail(err)
	o.publish(t, err.Error())
	o.log.Error().Str("task", t.ID()).Err(err).Msg("folder download failed")
}

func (o *Orchestrator) cancelled(t *task.Task) {
	t.MarkCancelled()
	o.publish(t, "cancelled by user")
	o.log.Info().Str("task", t.ID()).Msg("folder download cancelled")
}

// publish emits the task's current snapshot to subscribers.
func (o *Orchestrator) publish(t *task.Task, message string) {
	s := t.Snapshot()
	o.bus.Publish(events.ProgressEvent{
		TaskID:           s.ID,
		Status:           string(s.Status),
		ProcessedObjects: s.ProcessedObjects,
		TotalObjects:     s.TotalObjects,
		ProcessedBytes:   s.ProcessedBytes,
		TotalBytes:       s.TotalBytes,
		Message:          message,
		Timestamp:        time.Now(),
	})
}

// Get returns the task snapshot, or task.ErrNotFound.
func (o *Orchestrator) Get(id string) (task.Snapshot, error) {
	return o.registry.Get(id)
}

// Cancel requests cancellation. A no-op (but still a success) when the
// task is already terminal.
func (o *Orchestrator) Cancel(id string) error {
	return o.registry.RequestCancel(id)
}

// Subscribe opens a progress stream for the task. The stream starts with
// the latest snapshot and terminates after a terminal event.
func (o *Orchestrator) Subscribe(id string) (<-chan events.ProgressEvent, error) {
	if _, err := o.registry.Get(id); err != nil {
		return nil, err
	}
	return o.bus.Subscribe(id), nil
}

// Unsubscribe releases a stream before it has terminated.
func (o *Orchestrator) Unsubscribe(id string, ch <-chan events.ProgressEvent) {
	o.bus.Unsubscribe(id, ch)
}

// Archive is a readable finished archive. Closing it releases the
// retrieval pin; a deferred eviction then unlinks the file.
type Archive struct {
	io.ReadCloser
	Size     int64
	Filename string
}

// OpenArchive streams the finished archive for a task. Returns
// task.ErrNotReady unless the task is COMPLETED, task.ErrNotFound for
// unknown or evicted ids. While the returned Archive is open, eviction
// will not remove the underlying file.
func (o *Orchestrator) OpenArchive(id string) (*Archive, error) {
	archivePath, err := o.registry.OpenArchive(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		o.registry.CloseArchive(id)
		return nil, task.ErrNotFound
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		o.registry.CloseArchive(id)
		return nil, task.ErrNotFound
	}

	snap, _ := o.registry.Get(id)

	return &Archive{
		ReadCloser: &pinnedFile{File: f, registry: o.registry, id: id},
		Size:       info.Size(),
		Filename:   archiveFilename(snap.Prefix),
	}, nil
}

// StreamFolder archives a prefix straight to w without creating a task.
// Kept for compatibility with the direct download route: no progress, no
// cancellation beyond ctx, nothing persisted.
func (o *Orchestrator) StreamFolder(ctx context.Context, prefix string, w io.Writer) error {
	listing, err := o.store.ListFolder(ctx, storage.NormalizePrefix(prefix))
	if err != nil {
		return err
	}
	if listing.Count() == 0 {
		return fmt.Errorf("%w %q", ErrEmptyFolder, prefix)
	}
	fetcher := &timeoutFetcher{inner: o.store, timeout: o.fetchTimeout}
	return o.builder.Build(ctx, w, listing, fetcher, nil)
}

// Run starts the eviction sweep and blocks until Close is called.
func (o *Orchestrator) Run() {
	ticker := time.NewTicker(o.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.sweep()
		case <-o.stop:
			return
		}
	}
}

// Close stops the sweep loop and waits for in-flight tasks to reach a
// terminal state.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() { close(o.stop) })
	o.wg.Wait()
}

// sweep evicts terminal tasks older than the retention window, together
// with their archives and retained progress snapshots.
func (o *Orchestrator) sweep() {
	expired := o.registry.ExpiredTasks(o.retention)
	for _, id := range expired {
		o.registry.Evict(id)
		o.bus.Forget(id)
	}
	if len(expired) > 0 {
		o.log.Info().Int("count", len(expired)).Msg("evicted expired tasks")
	}
}

func archiveFilename(prefix string) string {
	name := path.Base(strings.TrimSuffix(prefix, "/"))
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	return name + ".zip"
}

// pinnedFile releases the registry retrieval pin when closed.
type pinnedFile struct {
	*os.File
	registry *task.Registry
	id       string
	once     sync.Once
}

func (p *pinnedFile) Close() error {
	err := p.File.Close()
	p.once.Do(func() { p.registry.CloseArchive(p.id) })
	return err
}

// timeoutFetcher bounds each single-object fetch with its own deadline,
// covering both the open and the subsequent body read. This bounds the
// worst-case latency of a cooperative cancellation.
type timeoutFetcher struct {
	inner   storage.Fetcher
	timeout time.Duration
}

func (f *timeoutFetcher) FetchObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	body, size, err := f.inner.FetchObject(tctx, key)
	if err != nil {
		cancel()
		return nil, 0, err
	}
	return &cancelOnClose{ReadCloser: body, cancel: cancel}, size, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
