// Package storage provides access to the S3-compatible object store:
// a thin client wrapper plus the folder enumerator. The rest of the
// service depends on the Lister/Fetcher capabilities, not on the SDK.
package storage

import (
	"context"
	"fmt"
	"io"
)

// Object is one enumerated object under a folder prefix.
type Object struct {
	// Key is the full object key in the bucket.
	Key string `json:"key"`
	// Name is the key with the requested prefix stripped. It becomes the
	// entry path inside an archive.
	Name string `json:"name"`
	// Size is the object size in bytes.
	Size int64 `json:"size"`
}

// Listing is the eagerly materialized result of enumerating a prefix.
// Objects appear in the order the store returned them; totals are fixed
// once the listing is built.
type Listing struct {
	Prefix     string   `json:"prefix"`
	Objects    []Object `json:"objects"`
	TotalBytes int64    `json:"total_bytes"`
}

// Count returns the number of enumerated objects.
func (l *Listing) Count() int {
	return len(l.Objects)
}

// Lister enumerates objects under a prefix.
type Lister interface {
	// ListFolder lists every object under prefix, following pagination
	// until exhausted. Zero-byte directory markers are filtered out and
	// object names are made relative to the prefix.
	ListFolder(ctx context.Context, prefix string) (*Listing, error)
}

// Fetcher opens object byte streams.
type Fetcher interface {
	// FetchObject opens a read stream for the object. The caller owns
	// the returned stream and must close it.
	FetchObject(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// Store combines the capabilities the service needs from the bucket.
type Store interface {
	Lister
	Fetcher
}

// EnumerationError reports that listing a prefix failed after retries.
type EnumerationError struct {
	Prefix string
	Err    error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to list objects under %q: %v", e.Prefix, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// NormalizePrefix ensures a non-empty folder path ends with the
// delimiter, matching how flat keys emulate folders.
func NormalizePrefix(prefix string) string {
	if prefix == "" || prefix == "/" {
		return ""
	}
	if prefix[0] == '/' {
		prefix = prefix[1:]
	}
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return prefix
}
