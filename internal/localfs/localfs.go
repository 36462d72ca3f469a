// Package localfs reads a directory tree from disk into the file-map shape
// the diff-tree builder consumes, so two local checkouts can be compared
// without going through a registry.
package localfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"diffpack/internal/difftree"
	"diffpack/internal/textutil"
)

// DefaultExcludes are base-name prefixes skipped during the walk.
var DefaultExcludes = []string{
	".git", "node_modules", "dist", "build", "out", "target", ".idea", ".vscode", ".DS_Store",
}

// ReadTree walks root and returns its file map. Paths are root-relative
// with forward slashes. Entries whose base name starts with one of the
// exclude prefixes are skipped, subtrees included. Unreadable entries are
// skipped, not fatal.
func ReadTree(root string, exclude []string) (difftree.FileMap, error) {
	if exclude == nil {
		exclude = DefaultExcludes
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(rootAbs); err != nil {
		return nil, err
	}

	files := difftree.FileMap{}
	walkErr := filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == rootAbs {
			return nil
		}

		base := filepath.Base(path)
		for _, prefix := range exclude {
			if strings.HasPrefix(base, prefix) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		rel, err := filepath.Rel(rootAbs, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			files[rel] = difftree.FileMapEntry{Type: difftree.TypeDirectory}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		files[rel] = difftree.FileMapEntry{
			Type:    difftree.TypeFile,
			Content: textutil.ValidUTF8(data),
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}
