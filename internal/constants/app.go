// Package constants centralizes tuning defaults shared across packages.
package constants

import (
	"time"
)

// Archive building
const (
	// CopyBufferSize - size of the pooled buffers used to stream object
	// bytes into the archive (256 KB). Bounds per-object memory: at most
	// one buffer of this size is resident per running task.
	CopyBufferSize = 256 * 1024

	// StoredCompressionThreshold - folders with more objects than this are
	// archived without compression (zip Store) to keep large folder
	// downloads fast. Smaller folders use Deflate.
	StoredCompressionThreshold = 100
)

// Retry configuration
const (
	// MaxRetries - default maximum number of retries for transient errors.
	// A whole-task abort follows exhaustion, so this is deliberately lower
	// than what a resumable transfer could afford.
	MaxRetries = 5

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (15s)
	// Exponential backoff with jitter caps at this value.
	RetryMaxDelay = 15 * time.Second
)

// Task lifecycle
const (
	// DefaultMaxConcurrentDownloads - cap on folder-download tasks running
	// at the same time. Requests beyond the cap are rejected synchronously.
	DefaultMaxConcurrentDownloads = 4

	// DefaultArchiveRetention - how long a terminal task and its archive
	// are kept before eviction.
	DefaultArchiveRetention = 10 * time.Minute

	// DefaultSweepInterval - how often the eviction sweep runs.
	DefaultSweepInterval = time.Minute

	// DefaultFetchTimeout - per-object fetch timeout. Bounds worst-case
	// cancellation latency, since the cancel flag is only checked between
	// objects.
	DefaultFetchTimeout = 5 * time.Minute
)

// Event delivery
const (
	// EventBusDefaultBuffer - per-subscriber channel buffer. A subscriber
	// that falls further behind than this starts dropping events.
	EventBusDefaultBuffer = 64

	// EventBusMaxBuffer - upper bound on configurable buffer size.
	EventBusMaxBuffer = 4096
)

// HTTP transport tuning for object fetches. Determined for sustained
// streaming transfers against S3-compatible endpoints.
const (
	HTTPMaxIdleConns          = 128
	HTTPMaxIdleConnsPerHost   = 32
	HTTPMaxConnsPerHost       = 64
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPResponseHeaderTimeout = 60 * time.Second
)
