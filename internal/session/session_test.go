package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffpack/internal/difftree"
)

// fakeFetcher serves file maps from memory and counts fetches per key.
type fakeFetcher struct {
	packages map[string]difftree.FileMap
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		packages: map[string]difftree.FileMap{},
		calls:    map[string]int{},
	}
}

func (f *fakeFetcher) add(registry, pkg, version string, files difftree.FileMap) {
	f.packages[registry+":"+pkg+":"+version] = files
}

func (f *fakeFetcher) FetchPackage(_ context.Context, registry, pkg, version string) (difftree.FileMap, error) {
	key := registry + ":" + pkg + ":" + version
	f.calls[key]++
	files, ok := f.packages[key]
	if !ok {
		return nil, fmt.Errorf("Failed to fetch tarball from https://example.invalid/%s", key)
	}
	return files, nil
}

func file(content string) difftree.FileMapEntry {
	return difftree.FileMapEntry{Type: difftree.TypeFile, Content: content}
}

func TestBuildTreeForPackageCachesExtractions(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.add("npm", "pkg", "1.0.0", difftree.FileMap{"a.txt": file("x\n")})
	fetcher.add("npm", "pkg", "2.0.0", difftree.FileMap{"a.txt": file("y\n")})

	sess := New(fetcher, 0.7)
	ctx := context.Background()

	_, err := sess.BuildTreeForPackage(ctx, "npm", "pkg", "1.0.0", "2.0.0")
	require.NoError(t, err)
	_, err = sess.BuildTreeForPackage(ctx, "npm", "pkg", "1.0.0", "2.0.0")
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls["npm:pkg:1.0.0"])
	assert.Equal(t, 1, fetcher.calls["npm:pkg:2.0.0"])
}

func TestPrefetchWarmsCache(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.add("npm", "pkg", "1.0.0", difftree.FileMap{"a.txt": file("x\n")})
	fetcher.add("npm", "pkg", "2.0.0", difftree.FileMap{"a.txt": file("x\n")})

	sess := New(fetcher, 0.7)
	ctx := context.Background()

	require.NoError(t, sess.Prefetch(ctx, "npm", "pkg", "1.0.0"))
	_, err := sess.BuildTreeForPackage(ctx, "npm", "pkg", "1.0.0", "2.0.0")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls["npm:pkg:1.0.0"])
}

func TestFetchErrorSurfacesVerbatim(t *testing.T) {
	sess := New(newFakeFetcher(), 0.7)
	_, err := sess.BuildTreeForPackage(context.Background(), "npm", "gone", "1.0.0", "2.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch tarball from")
}

func TestDiffForPathBeforeAnyTree(t *testing.T) {
	sess := New(newFakeFetcher(), 0.7)
	_, err := sess.DiffForPath("a.txt", "")
	require.Error(t, err)
	assert.Equal(t, "No active diff context", err.Error())
}

func TestDiffForPathTable(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.add("npm", "pkg", "1.0.0", difftree.FileMap{
		"same.txt":    file("same\ncontent\n"),
		"changed.txt": file("a\nb\n"),
		"gone.txt":    file("bye\n"),
	})
	fetcher.add("npm", "pkg", "2.0.0", difftree.FileMap{
		"same.txt":    file("same\ncontent\n"),
		"changed.txt": file("a\nc\n"),
		"new.txt":     file("hi\nthere\n"),
	})

	sess := New(fetcher, 0.7)
	_, err := sess.BuildTreeForPackage(context.Background(), "npm", "pkg", "1.0.0", "2.0.0")
	require.NoError(t, err)

	cases := []struct {
		name     string
		path     string
		wantData string
		wantDiff bool
	}{
		{"absent both", "missing.txt", "File not present in either version.", false},
		{"added", "new.txt", "--- /dev/null\n+++ to/new.txt\n+ hi\n+ there\n+ ", true},
		{"removed", "gone.txt", "--- from/gone.txt\n+++ /dev/null\n- bye\n- ", true},
		{"identical", "same.txt", "same\ncontent\n", false},
		{"modified", "changed.txt", "--- from/changed.txt\n+++ to/changed.txt\n  a\n- b\n+ c\n  ", true},
	}
	for _, tc := range cases {
		result, err := sess.DiffForPath(tc.path, "")
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.wantData, result.Data, tc.name)
		assert.Equal(t, tc.wantDiff, result.IsDiff, tc.name)
	}
}

func TestDiffForPathRenamedFile(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.add("npm", "pkg", "1.0.0", difftree.FileMap{"old/name.txt": file("x\ny\n")})
	fetcher.add("npm", "pkg", "2.0.0", difftree.FileMap{"new/name.txt": file("x\ny\n")})

	sess := New(fetcher, 0.7)
	tree, err := sess.BuildTreeForPackage(context.Background(), "npm", "pkg", "1.0.0", "2.0.0")
	require.NoError(t, err)

	var renamed *difftree.DiffFileEntry
	tree.Walk(func(n *difftree.DiffFileEntry) {
		if n.Status == difftree.StatusRenamed {
			renamed = n
		}
	})
	require.NotNil(t, renamed)
	require.Equal(t, "old/name.txt", renamed.OldPath)

	result, err := sess.DiffForPath(renamed.Path, renamed.OldPath)
	require.NoError(t, err)
	assert.False(t, result.IsDiff)
	assert.Equal(t, "x\ny\n", result.Data)
}

func TestBuildTreeLocalMaps(t *testing.T) {
	sess := New(newFakeFetcher(), 0.7)
	tree := sess.BuildTree("dir:a", "dir:b",
		difftree.FileMap{"f.txt": file("1\n")},
		difftree.FileMap{"f.txt": file("2\n")})

	require.Len(t, tree.Children, 1)
	assert.Equal(t, difftree.StatusModified, tree.Children[0].Status)

	result, err := sess.DiffForPath("f.txt", "")
	require.NoError(t, err)
	assert.True(t, result.IsDiff)
}
