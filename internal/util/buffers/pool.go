// Package buffers provides reusable byte buffers to reduce heap
// allocations while streaming object bytes into archives.
package buffers

import (
	"sync"
	"sync/atomic"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
)

// Pool monitoring counters
var (
	allocations atomic.Int64 // new buffer creates
	reuses      atomic.Int64 // buffers served from the pool
)

var copyPool = &sync.Pool{
	New: func() interface{} {
		allocations.Add(1)
		buf := make([]byte, constants.CopyBufferSize)
		return &buf
	},
}

// GetCopyBuffer retrieves a copy buffer from the pool. The buffer must be
// returned with PutCopyBuffer when done to allow reuse.
func GetCopyBuffer() *[]byte {
	buf := copyPool.Get().(*[]byte)
	reuses.Add(1)
	return buf
}

// PutCopyBuffer returns a buffer to the pool. Buffers of the wrong size
// are discarded rather than pooled.
func PutCopyBuffer(buf *[]byte) {
	if buf == nil || len(*buf) != constants.CopyBufferSize {
		return
	}
	copyPool.Put(buf)
}

// Stats returns allocation and reuse counts, for monitoring.
func Stats() (allocs, reused int64) {
	return allocations.Load(), reuses.Load()
}
