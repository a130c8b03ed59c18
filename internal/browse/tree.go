package browse

import (
	"context"
	"sort"
	"strings"

	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/util/format"
)

// File is a leaf in the bucket tree.
type File struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
}

// Node is a folder in the bucket tree.
type Node struct {
	Name    string  `json:"name"`
	Path    string  `json:"path"`
	Folders []*Node `json:"folders,omitempty"`
	Files   []File  `json:"files,omitempty"`
}

// Tree enumerates the whole bucket and folds the flat key space into a
// hierarchy for the presentation layer. Folders and files are sorted by
// name at every level.
func Tree(ctx context.Context, lister storage.Lister) (*Node, error) {
	listing, err := lister.ListFolder(ctx, "")
	if err != nil {
		return nil, err
	}
	return buildTree(listing), nil
}

func buildTree(listing *storage.Listing) *Node {
	root := &Node{Name: "/", Path: ""}
	index := map[string]*Node{"": root}

	for _, obj := range listing.Objects {
		dir, file := splitKey(obj.Name)
		parent := ensureFolder(index, dir)
		parent.Files = append(parent.Files, File{
			Key:       obj.Key,
			Name:      file,
			Size:      obj.Size,
			SizeHuman: format.Size(obj.Size),
		})
	}

	sortTree(root)
	return root
}

func splitKey(key string) (dir, file string) {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// ensureFolder walks (and creates) the folder chain for a `/`-joined
// path, returning the deepest node.
func ensureFolder(index map[string]*Node, dir string) *Node {
	if node, ok := index[dir]; ok {
		return node
	}

	parentPath, name := splitKey(dir)
	parent := ensureFolder(index, parentPath)

	node := &Node{Name: name, Path: dir}
	parent.Folders = append(parent.Folders, node)
	index[dir] = node
	return node
}

func sortTree(node *Node) {
	sort.Slice(node.Folders, func(i, j int) bool {
		return node.Folders[i].Name < node.Folders[j].Name
	})
	sort.Slice(node.Files, func(i, j int) bool {
		return node.Files[i].Name < node.Files[j].Name
	})
	for _, child := range node.Folders {
		sortTree(child)
	}
}
