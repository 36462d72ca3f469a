package difftree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePathsSelectsFilesOnly(t *testing.T) {
	files := FileMap{
		"a.txt":   file("x\n"),
		"d":       dir(),
		"d/b.txt": file("y\n"),
	}
	got := filePaths(files)
	assert.Equal(t, map[string]struct{}{
		"a.txt":   {},
		"d/b.txt": {},
	}, got)
}

func TestDirectoriesIncludeImpliedParents(t *testing.T) {
	files := FileMap{
		"a/b/c.txt": file("x\n"),
		"explicit":  dir(),
	}
	got := directories(files)
	assert.Equal(t, map[string]struct{}{
		"a":        {},
		"a/b":      {},
		"explicit": {},
	}, got)
}

func TestDirectoriesExcludeRoot(t *testing.T) {
	got := directories(FileMap{"top.txt": file("x\n")})
	assert.Empty(t, got)
}

func TestParentPath(t *testing.T) {
	cases := map[string]string{
		"a/b/c.txt": "a/b",
		"a.txt":     "/",
		"a/b":       "a",
	}
	for in, want := range cases {
		assert.Equal(t, want, parentPath(in), "parentPath(%q)", in)
	}
}

func TestSplitPathIgnoresEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitPath("a//b"))
	assert.Equal(t, []string{"a"}, splitPath("a/"))
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "c.txt", basename("a/b/c.txt"))
	assert.Equal(t, "c.txt", basename("c.txt"))
}
