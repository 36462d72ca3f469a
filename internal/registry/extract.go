package registry

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"diffpack/internal/difftree"
	"diffpack/internal/textutil"
)

// Extract decompresses a gzipped tarball and returns its file map: paths
// normalised, missing parent directories synthesised, and a single common
// top-level directory stripped when one exists.
func Extract(data []byte) (difftree.FileMap, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Gzip decompression failed: %v", err)
	}
	defer gz.Close()

	files := difftree.FileMap{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Tar parsing failed: %v", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			normalized := normalizePath(hdr.Name, true)
			if normalized == "" {
				continue
			}
			files[normalized] = difftree.FileMapEntry{Type: difftree.TypeDirectory}
		case tar.TypeReg:
			normalized := normalizePath(hdr.Name, false)
			if normalized == "" {
				continue
			}
			contents, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("Tar read failed: %v", err)
			}
			files[normalized] = difftree.FileMapEntry{
				Type:    difftree.TypeFile,
				Content: textutil.ValidUTF8(contents),
			}
		}
	}

	ensureDirectories(files)
	return stripCommonRoot(files), nil
}

// normalizePath strips "./" prefixes and leading slashes, and the trailing
// slash on directory entries. Returns "" for paths that normalise away.
func normalizePath(path string, isDirectory bool) string {
	trimmed := path
	for strings.HasPrefix(trimmed, "./") {
		trimmed = trimmed[2:]
	}
	trimmed = strings.TrimLeft(trimmed, "/")
	if trimmed == "" || trimmed == "." {
		return ""
	}
	if isDirectory {
		trimmed = strings.TrimRight(trimmed, "/")
	}
	return trimmed
}

// ensureDirectories synthesises directory entries for every ancestor of
// every path, since tarballs do not always carry explicit directory
// entries.
func ensureDirectories(files difftree.FileMap) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	for _, p := range paths {
		current := ""
		for _, part := range strings.Split(p, "/") {
			if part == "" {
				continue
			}
			if current != "" {
				current += "/"
			}
			current += part
			if _, ok := files[current]; !ok {
				files[current] = difftree.FileMapEntry{Type: difftree.TypeDirectory}
			}
		}
	}
}

// stripCommonRoot removes a single shared top-level directory (the usual
// "package/" or "<repo>-<ref>/" wrapper) so both revisions diff at the same
// root. The map is returned as-is when there are several top-level entries
// or the sole one is not a directory.
func stripCommonRoot(files difftree.FileMap) difftree.FileMap {
	if len(files) == 0 {
		return files
	}

	topLevel := map[string]struct{}{}
	for p := range files {
		first := p
		if i := strings.IndexByte(p, '/'); i >= 0 {
			first = p[:i]
		}
		if first != "" {
			topLevel[first] = struct{}{}
		}
	}
	if len(topLevel) != 1 {
		return files
	}

	var root string
	for r := range topLevel {
		root = r
	}
	if entry, ok := files[root]; !ok || entry.Type != difftree.TypeDirectory {
		return files
	}

	prefix := root + "/"
	stripped := difftree.FileMap{}
	for p, entry := range files {
		if p == root {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || rest == p {
			continue
		}
		stripped[rest] = entry
	}
	if len(stripped) == 0 {
		return files
	}
	return stripped
}
