// Package session is the host-facing glue around the diff-tree core: a
// per-worker extraction cache keyed by (registry, package, version), the
// pointer to the most recently built diff, and the per-file diff results
// served to the viewer.
//
// A Session is written on insert, never evicted, and meant for
// single-goroutine use; the embedding runs one session per worker.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"diffpack/internal/difftree"
	"diffpack/internal/linediff"
)

// ErrNoActiveDiff is returned when a per-file diff is requested before any
// tree has been built.
var ErrNoActiveDiff = errors.New("No active diff context")

// Fetcher obtains the extracted file map of one package version.
type Fetcher interface {
	FetchPackage(ctx context.Context, registry, pkg, version string) (difftree.FileMap, error)
}

// DiffResult is the per-file payload handed to the host UI.
type DiffResult struct {
	Data   string `json:"data"`
	IsDiff bool   `json:"isDiff"`
}

type activeDiff struct {
	fromKey string
	toKey   string
}

// Session caches extracted packages and remembers which two of them the
// last tree was built from.
type Session struct {
	fetcher   Fetcher
	threshold float64

	cache  map[string]difftree.FileMap
	active *activeDiff
}

// New returns an empty session. threshold is the similarity threshold
// passed to the tree builder (clamped there).
func New(fetcher Fetcher, threshold float64) *Session {
	return &Session{
		fetcher:   fetcher,
		threshold: threshold,
		cache:     map[string]difftree.FileMap{},
	}
}

func cacheKey(registry, pkg, version string) string {
	return fmt.Sprintf("%s:%s:%s", registry, pkg, version)
}

func (s *Session) getOrFetch(ctx context.Context, registry, pkg, version string) (difftree.FileMap, error) {
	key := cacheKey(registry, pkg, version)
	if files, ok := s.cache[key]; ok {
		return files, nil
	}
	files, err := s.fetcher.FetchPackage(ctx, registry, pkg, version)
	if err != nil {
		return nil, err
	}
	s.cache[key] = files
	return files, nil
}

// Prefetch warms the cache for one package version.
func (s *Session) Prefetch(ctx context.Context, registry, pkg, version string) error {
	_, err := s.getOrFetch(ctx, registry, pkg, version)
	return err
}

// BuildTreeForPackage fetches both revisions (through the cache), builds
// the diff tree and records the pair as the active diff for subsequent
// DiffForPath calls.
func (s *Session) BuildTreeForPackage(ctx context.Context, registry, pkg, from, to string) (*difftree.DiffFileEntry, error) {
	fromFiles, err := s.getOrFetch(ctx, registry, pkg, from)
	if err != nil {
		return nil, err
	}
	toFiles, err := s.getOrFetch(ctx, registry, pkg, to)
	if err != nil {
		return nil, err
	}

	tree := difftree.Build(fromFiles, toFiles, s.threshold)
	s.active = &activeDiff{
		fromKey: cacheKey(registry, pkg, from),
		toKey:   cacheKey(registry, pkg, to),
	}
	return tree, nil
}

// BuildTree diffs two already-extracted file maps and records them as the
// active diff under synthetic keys. Used by the local-directory mode.
func (s *Session) BuildTree(fromKey, toKey string, fromFiles, toFiles difftree.FileMap) *difftree.DiffFileEntry {
	s.cache[fromKey] = fromFiles
	s.cache[toKey] = toFiles
	tree := difftree.Build(fromFiles, toFiles, s.threshold)
	s.active = &activeDiff{fromKey: fromKey, toKey: toKey}
	return tree
}

// DiffForPath produces the per-file diff result for one path of the active
// tree. oldPath carries the rename origin for renamed nodes and is ""
// otherwise.
func (s *Session) DiffForPath(filename, oldPath string) (DiffResult, error) {
	if s.active == nil {
		return DiffResult{}, ErrNoActiveDiff
	}

	fromPath := filename
	if oldPath != "" {
		fromPath = oldPath
	}

	fromContent, fromOK := s.lookup(s.active.fromKey, fromPath)
	toContent, toOK := s.lookup(s.active.toKey, filename)
	return buildDiffResult(filename, fromContent, fromOK, toContent, toOK), nil
}

func (s *Session) lookup(key, path string) (string, bool) {
	files, ok := s.cache[key]
	if !ok {
		return "", false
	}
	entry, ok := files[path]
	if !ok || entry.Type != difftree.TypeFile {
		return "", false
	}
	return entry.Content, true
}

// buildDiffResult implements the per-file result table: absent on both
// sides is a plain message, one-sided content renders as all-plus or
// all-minus pseudo patches against /dev/null, identical content is returned
// verbatim, and differing content goes through the unified formatter.
func buildDiffResult(filename string, fromContent string, fromOK bool, toContent string, toOK bool) DiffResult {
	switch {
	case !fromOK && !toOK:
		return DiffResult{Data: "File not present in either version.", IsDiff: false}
	case !fromOK:
		lines := []string{fmt.Sprintf("--- /dev/null\n+++ to/%s", filename)}
		for _, line := range linediff.Split(toContent) {
			lines = append(lines, "+ "+line)
		}
		return DiffResult{Data: strings.Join(lines, "\n"), IsDiff: true}
	case !toOK:
		lines := []string{fmt.Sprintf("--- from/%s\n+++ /dev/null", filename)}
		for _, line := range linediff.Split(fromContent) {
			lines = append(lines, "- "+line)
		}
		return DiffResult{Data: strings.Join(lines, "\n"), IsDiff: true}
	case fromContent == toContent:
		return DiffResult{Data: toContent, IsDiff: false}
	default:
		return DiffResult{Data: linediff.Unified(filename, fromContent, toContent), IsDiff: true}
	}
}
