package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
)

// fakeLister returns a canned listing per prefix.
type fakeLister struct {
	listings map[string]*storage.Listing
	err      error
}

func (f *fakeLister) ListFolder(ctx context.Context, prefix string) (*storage.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if l, ok := f.listings[prefix]; ok {
		return l, nil
	}
	return &storage.Listing{Prefix: prefix}, nil
}

func listingOf(prefix string, objects ...storage.Object) *storage.Listing {
	l := &storage.Listing{Prefix: prefix, Objects: objects}
	for _, obj := range objects {
		l.TotalBytes += obj.Size
	}
	return l
}

func TestFolderInfo(t *testing.T) {
	lister := &fakeLister{listings: map[string]*storage.Listing{
		"docs/": listingOf("docs/",
			storage.Object{Key: "docs/a.txt", Name: "a.txt", Size: 5},
			storage.Object{Key: "docs/sub/b.txt", Name: "sub/b.txt", Size: 5},
			storage.Object{Key: "docs/img/c.png", Name: "img/c.png", Size: 100},
		),
	}}

	info, err := FolderInfo(context.Background(), lister, "docs/")
	if err != nil {
		t.Fatalf("FolderInfo failed: %v", err)
	}

	if info.Path != "docs" {
		t.Errorf("Expected path docs, got %q", info.Path)
	}
	if info.FileCount != 3 {
		t.Errorf("Expected 3 files, got %d", info.FileCount)
	}
	if info.TotalSize != 110 {
		t.Errorf("Expected total size 110, got %d", info.TotalSize)
	}
	if info.SubfolderCount != 2 {
		t.Errorf("Expected 2 direct subfolders, got %d", info.SubfolderCount)
	}
	if info.TypeDistribution["txt"] != 2 || info.TypeDistribution["png"] != 1 {
		t.Errorf("Expected txt:2 png:1, got %v", info.TypeDistribution)
	}
}

func TestFolderInfoEmptyFolder(t *testing.T) {
	lister := &fakeLister{listings: map[string]*storage.Listing{}}

	info, err := FolderInfo(context.Background(), lister, "empty/")
	if err != nil {
		t.Fatalf("FolderInfo failed: %v", err)
	}
	if info.FileCount != 0 || info.TotalSize != 0 || info.SubfolderCount != 0 {
		t.Errorf("Expected zeroed stats for empty folder, got %+v", info)
	}
}

func TestFolderInfoExtensionBuckets(t *testing.T) {
	lister := &fakeLister{listings: map[string]*storage.Listing{
		"d/": listingOf("d/",
			storage.Object{Key: "d/README", Name: "README", Size: 1},
			storage.Object{Key: "d/photo.JPG", Name: "photo.JPG", Size: 1},
		),
	}}

	info, err := FolderInfo(context.Background(), lister, "d/")
	if err != nil {
		t.Fatalf("FolderInfo failed: %v", err)
	}
	if info.TypeDistribution["none"] != 1 {
		t.Errorf("Expected extensionless files bucketed as none, got %v", info.TypeDistribution)
	}
	if info.TypeDistribution["jpg"] != 1 {
		t.Errorf("Expected lowercase extension buckets, got %v", info.TypeDistribution)
	}
}

func TestFolderInfoPropagatesError(t *testing.T) {
	wantErr := errors.New("listing blew up")
	lister := &fakeLister{err: wantErr}

	if _, err := FolderInfo(context.Background(), lister, "docs/"); !errors.Is(err, wantErr) {
		t.Errorf("Expected listing error to propagate, got %v", err)
	}
}
