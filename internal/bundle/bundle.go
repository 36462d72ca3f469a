// Package bundle exports a built diff as a reproducible zip archive:
// tree.json plus diffs/<name>.patch for every Modified or Renamed file.
//
// Highlights:
//   - Windows-safe patch filenames (sanitization + uniqueness).
//   - Determinism: entries are sorted before writing, names are constructed
//     identically for identical input.
package bundle

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"diffpack/internal/difftree"
	"diffpack/internal/linediff"
	"diffpack/internal/ziputil"
)

// invalidFileCharsRe contains characters that are invalid in Windows filenames.
var invalidFileCharsRe = regexp.MustCompile(`[\\:*?"<>|]`)

// safePatchBase returns a filesystem-safe base name for a patch (without
// the .patch extension): slashes and invalid characters become '_', and
// leading dots and underscores are trimmed.
func safePatchBase(p string) string {
	base := strings.ReplaceAll(p, "/", "_")
	base = invalidFileCharsRe.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, "._")
	if base == "" {
		base = "patch"
	}
	return base
}

// shortHash returns the first 8 hex characters of the SHA-256 hash of s.
// Used as a stable suffix to avoid filename collisions.
func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// uniquePatchName constructs a unique patch filename considering names
// already used.
func uniquePatchName(base string, used map[string]struct{}) string {
	name := base + ".patch"
	if _, ok := used[name]; !ok {
		used[name] = struct{}{}
		return name
	}
	name = base + "-" + shortHash(base) + ".patch"
	for i := 1; ; i++ {
		if _, ok := used[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s-%s-%d.patch", base, shortHash(base), i)
	}
	used[name] = struct{}{}
	return name
}

type patchEntry struct {
	name string
	body string
}

// WriteDiffZip writes tree.json and one patch per Modified/Renamed file of
// the tree into w. from and to are the file maps the tree was built from.
func WriteDiffZip(w io.Writer, tree *difftree.DiffFileEntry, from, to difftree.FileMap) error {
	patches := collectPatches(tree, from, to)

	zw := zip.NewWriter(w)
	if err := ziputil.WriteJSON(zw, "tree.json", tree); err != nil {
		zw.Close()
		return err
	}
	for _, p := range patches {
		if err := ziputil.WriteText(zw, "diffs/"+p.name, []byte(p.body)); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

// collectPatches walks the tree and renders a unified patch for every
// Modified or Renamed file node, in sorted name order. Added and Removed
// files get no patch.
func collectPatches(tree *difftree.DiffFileEntry, from, to difftree.FileMap) []patchEntry {
	var patches []patchEntry
	used := map[string]struct{}{}

	tree.Walk(func(node *difftree.DiffFileEntry) {
		if node.Type != difftree.TypeFile {
			return
		}
		var fromContent, toContent string
		switch node.Status {
		case difftree.StatusModified:
			fromContent = from[node.Path].Content
			toContent = to[node.Path].Content
		case difftree.StatusRenamed:
			fromContent = from[node.OldPath].Content
			toContent = to[node.Path].Content
		default:
			return
		}
		name := uniquePatchName(safePatchBase(node.Path), used)
		patches = append(patches, patchEntry{
			name: name,
			body: linediff.Unified(node.Path, fromContent, toContent),
		})
	})

	sort.Slice(patches, func(i, j int) bool { return patches[i].name < patches[j].name })
	return patches
}
