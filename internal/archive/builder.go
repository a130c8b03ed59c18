// Package archive builds ZIP archives by streaming object bytes from the
// store, one entry per object, without buffering whole objects in memory.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/util/buffers"
)

// ErrAborted is returned by Build when the per-object callback asked to
// stop. The caller decides what the stop means (cancellation).
var ErrAborted = errors.New("archive build aborted")

// FetchError reports that a single object's byte stream could not be
// read. The offending key is recorded for the task error message.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch object %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports that writing an entry to scratch storage failed
// (disk full, permissions).
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write archive entry %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ObjectDone is called after each object has been fully written. Return
// false to stop before the next object; Build then returns ErrAborted.
// This is the cooperative cancellation checkpoint: an in-flight object
// always completes before a stop takes effect.
type ObjectDone func(obj storage.Object) (cont bool)

// Builder streams listings into ZIP archives.
type Builder struct {
	log *logging.Logger
}

// NewBuilder creates a builder.
func NewBuilder(logger *logging.Logger) *Builder {
	return &Builder{log: logger}
}

// Build writes one ZIP entry per listed object to w, in listing order.
// Entries are named by their prefix-relative paths. Bytes are copied in
// bounded chunks from a pooled buffer, so memory use is independent of
// object and folder size.
//
// Folders above the stored-compression threshold are archived without
// compression to keep large downloads fast; smaller folders use Deflate.
//
// Any fetch or write failure aborts the whole build - there is no
// skip-and-continue. The writer is flushed and finalized only when every
// entry succeeded.
func (b *Builder) Build(ctx context.Context, w io.Writer, listing *storage.Listing, fetcher storage.Fetcher, done ObjectDone) error {
	zw := zip.NewWriter(w)

	method := zip.Deflate
	if listing.Count() > constants.StoredCompressionThreshold {
		method = zip.Store
	}

	buf := buffers.GetCopyBuffer()
	defer buffers.PutCopyBuffer(buf)

	for _, obj := range listing.Objects {
		if err := b.writeEntry(ctx, zw, obj, method, fetcher, *buf); err != nil {
			// Leave the archive unfinalized; the caller removes the
			// partial file.
			return err
		}
		if done != nil && !done(obj) {
			return ErrAborted
		}
	}

	if err := zw.Close(); err != nil {
		return &WriteError{Key: listing.Prefix, Err: err}
	}
	return nil
}

func (b *Builder) writeEntry(ctx context.Context, zw *zip.Writer, obj storage.Object, method uint16, fetcher storage.Fetcher, buf []byte) error {
	body, _, err := fetcher.FetchObject(ctx, obj.Key)
	if err != nil {
		return &FetchError{Key: obj.Key, Err: err}
	}
	defer body.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:   obj.Name,
		Method: method,
	})
	if err != nil {
		return &WriteError{Key: obj.Key, Err: err}
	}

	if _, err := io.CopyBuffer(entry, body, buf); err != nil {
		// Distinguish read-side from write-side failures so the task
		// error names the right subsystem.
		if ctx.Err() != nil {
			return &FetchError{Key: obj.Key, Err: ctx.Err()}
		}
		return &FetchError{Key: obj.Key, Err: err}
	}

	b.log.Debug().Str("key", obj.Key).Int64("size", obj.Size).Msg("archived object")
	return nil
}

// BuildFile builds the archive into path, creating the file and removing
// it again on any failure or abort. On success the finalized file is left
// in place for retrieval.
func (b *Builder) BuildFile(ctx context.Context, path string, listing *storage.Listing, fetcher storage.Fetcher, done ObjectDone) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Key: listing.Prefix, Err: err}
	}

	buildErr := b.Build(ctx, f, listing, fetcher, done)
	closeErr := f.Close()

	if buildErr == nil && closeErr != nil {
		buildErr = &WriteError{Key: listing.Prefix, Err: closeErr}
	}
	if buildErr != nil {
		_ = os.Remove(path)
		return buildErr
	}
	return nil
}
