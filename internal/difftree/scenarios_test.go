package difftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(content string) FileMapEntry {
	return FileMapEntry{Type: TypeFile, Content: content}
}

func dir() FileMapEntry {
	return FileMapEntry{Type: TypeDirectory}
}

// child fetches a direct child of a node by path, failing the test when it
// is absent.
func child(t *testing.T, node *DiffFileEntry, path string) *DiffFileEntry {
	t.Helper()
	for _, c := range node.Children {
		if c.Path == path {
			return c
		}
	}
	t.Fatalf("node %q has no child %q", node.Path, path)
	return nil
}

func TestIdenticalFileUnchanged(t *testing.T) {
	from := FileMap{"a.txt": file("hello\nworld\n")}
	to := FileMap{"a.txt": file("hello\nworld\n")}

	root := Build(from, to, 0.7)

	assert.Equal(t, StatusUnchanged, root.Status)
	assert.Equal(t, 0, root.Added)
	assert.Equal(t, 0, root.Removed)

	a := child(t, root, "a.txt")
	assert.Equal(t, StatusUnchanged, a.Status)
	assert.Equal(t, 0, a.Added)
	assert.Equal(t, 0, a.Removed)
}

func TestExactRename(t *testing.T) {
	from := FileMap{"a.txt": file("x\n")}
	to := FileMap{"b.txt": file("x\n")}

	root := Build(from, to, 0.7)

	require.Len(t, root.Children, 1)
	b := child(t, root, "b.txt")
	assert.Equal(t, StatusRenamed, b.Status)
	assert.Equal(t, "a.txt", b.OldPath)
	assert.Equal(t, 0, b.Added)
	assert.Equal(t, 0, b.Removed)
}

func TestModifiedFileCounts(t *testing.T) {
	from := FileMap{"a.txt": file("foo\n")}
	to := FileMap{"a.txt": file("bar\n")}

	root := Build(from, to, 0.7)

	a := child(t, root, "a.txt")
	assert.Equal(t, StatusModified, a.Status)
	assert.Equal(t, 1, a.Added)
	assert.Equal(t, 1, a.Removed)
}

func TestAddedDirectorySubtree(t *testing.T) {
	from := FileMap{}
	to := FileMap{"dir/new.txt": file("alpha\nbeta\n")}

	root := Build(from, to, 0.7)

	d := child(t, root, "dir")
	assert.Equal(t, TypeDirectory, d.Type)
	assert.Equal(t, StatusAdded, d.Status)
	assert.Equal(t, 3, d.Added)
	assert.Equal(t, 0, d.Removed)

	n := child(t, d, "dir/new.txt")
	assert.Equal(t, StatusAdded, n.Status)
	assert.Equal(t, 3, n.Added)
	assert.Equal(t, 0, n.Removed)

	// The root exists on both sides by construction, so a populated "to"
	// against an empty "from" reports the root as modified with the
	// aggregate counts.
	assert.Equal(t, StatusModified, root.Status)
	assert.Equal(t, 3, root.Added)
	assert.Equal(t, 0, root.Removed)
}

func TestSimilarityRenameAcrossDirectories(t *testing.T) {
	from := FileMap{"a.txt": file("line1\nline2\nline3\n")}
	to := FileMap{"moved/a.txt": file("line1\nline2\nline3\nline4\n")}

	root := Build(from, to, 0.7)

	moved := child(t, root, "moved")
	assert.Equal(t, StatusAdded, moved.Status)

	a := child(t, moved, "moved/a.txt")
	assert.Equal(t, StatusRenamed, a.Status)
	assert.Equal(t, "a.txt", a.OldPath)
	assert.Equal(t, 1, a.Added)
	assert.Equal(t, 0, a.Removed)

	// The old path must not surface anywhere.
	root.Walk(func(n *DiffFileEntry) {
		assert.NotEqual(t, "a.txt", n.Path)
	})
}

func TestDissimilarFilesNotRenamed(t *testing.T) {
	from := FileMap{"a.txt": file("totally different\n")}
	to := FileMap{"b.txt": file("completely unrelated content here\n")}

	root := Build(from, to, 0.9)

	a := child(t, root, "a.txt")
	assert.Equal(t, StatusRemoved, a.Status)
	assert.Equal(t, 0, a.Added)
	assert.Equal(t, 2, a.Removed)

	b := child(t, root, "b.txt")
	assert.Equal(t, StatusAdded, b.Status)
	assert.Equal(t, 2, b.Added)
	assert.Equal(t, 0, b.Removed)
}

func TestEmptyToRemovesEverything(t *testing.T) {
	from := FileMap{
		"a.txt":     file("one\ntwo\n"),
		"d/b.txt":   file("x\n"),
		"d/e/c.txt": file("y\nz\n"),
	}

	root := Build(from, FileMap{}, 0.7)

	root.Walk(func(n *DiffFileEntry) {
		if n.Path == "/" {
			return
		}
		assert.Equal(t, StatusRemoved, n.Status, "path %s", n.Path)
		assert.Equal(t, 0, n.Added, "path %s", n.Path)
	})
	a := child(t, root, "a.txt")
	assert.Equal(t, 3, a.Removed)
	assert.Equal(t, 8, root.Removed)
}

func TestBothSidesEmpty(t *testing.T) {
	root := Build(FileMap{}, FileMap{}, 0.7)
	assert.Equal(t, StatusUnchanged, root.Status)
	assert.Empty(t, root.Children)
	assert.Equal(t, "/", root.Path)
	assert.Equal(t, TypeDirectory, root.Type)
}

func TestThresholdClamped(t *testing.T) {
	// A threshold above 1 clamps to 1.0; the exact-hash pass still pairs
	// identical content.
	from := FileMap{"a.txt": file("x\n")}
	to := FileMap{"b.txt": file("x\n")}
	root := Build(from, to, 3.5)
	b := child(t, root, "b.txt")
	assert.Equal(t, StatusRenamed, b.Status)

	// Below 0 clamps to 0.0 and must not panic on the 1/threshold bound.
	root = Build(FileMap{"a.txt": file("p\nq\n")}, FileMap{"b.txt": file("p\nr\n")}, -2)
	b = child(t, root, "b.txt")
	assert.Equal(t, StatusRenamed, b.Status)
}

func TestExplicitDirectoryEntriesKept(t *testing.T) {
	from := FileMap{
		"empty-dir": dir(),
		"src":       dir(),
		"src/a.go":  file("package a\n"),
	}
	to := FileMap{
		"src":      dir(),
		"src/a.go": file("package a\n"),
	}

	root := Build(from, to, 0.7)

	e := child(t, root, "empty-dir")
	assert.Equal(t, TypeDirectory, e.Type)
	assert.Equal(t, StatusRemoved, e.Status)

	s := child(t, root, "src")
	assert.Equal(t, StatusUnchanged, s.Status)
}
