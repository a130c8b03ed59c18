// Package browse provides the read-only browsing surface over the
// bucket: folder statistics and the key tree.
package browse

import (
	"context"
	"path"
	"strings"

	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/util/format"
)

// Info summarizes a folder: counts, sizes and the distribution of file
// types (by lowercase extension, without the dot).
type Info struct {
	Path             string         `json:"path"`
	FileCount        int            `json:"file_count"`
	TotalSize        int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size"`
	SubfolderCount   int            `json:"subfolder_count"`
	TypeDistribution map[string]int `json:"type_distribution"`
}

// FolderInfo eagerly enumerates the prefix and computes its statistics.
// File counts are recursive; subfolders are the direct children only.
func FolderInfo(ctx context.Context, lister storage.Lister, prefix string) (*Info, error) {
	listing, err := lister.ListFolder(ctx, prefix)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:             strings.TrimSuffix(listing.Prefix, "/"),
		FileCount:        listing.Count(),
		TotalSize:        listing.TotalBytes,
		TotalSizeHuman:   format.Size(listing.TotalBytes),
		TypeDistribution: make(map[string]int),
	}

	subfolders := make(map[string]struct{})
	for _, obj := range listing.Objects {
		if i := strings.IndexByte(obj.Name, '/'); i >= 0 {
			subfolders[obj.Name[:i]] = struct{}{}
		}
		info.TypeDistribution[extensionOf(obj.Name)]++
	}
	info.SubfolderCount = len(subfolders)

	return info, nil
}

func extensionOf(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return "none"
	}
	return ext
}
