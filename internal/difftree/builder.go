package difftree

import "diffpack/internal/sortutil"

// Builder computes a diff tree between two revisions of a file map.
//
// The zero threshold accepts every candidate pair the filters let through;
// 1.0 accepts only near-identical content (the basename boost can still
// lift a score over it). Values outside [0, 1] are clamped.
type Builder struct {
	fromFiles FileMap
	toFiles   FileMap

	fromFilePaths map[string]struct{}
	toFilePaths   map[string]struct{}
	fromDirs      map[string]struct{}
	toDirs        map[string]struct{}

	threshold float64
}

// NewBuilder returns a builder with the given similarity threshold, clamped
// to [0, 1].
func NewBuilder(similarityThreshold float64) *Builder {
	if similarityThreshold < 0.0 {
		similarityThreshold = 0.0
	}
	if similarityThreshold > 1.0 {
		similarityThreshold = 1.0
	}
	return &Builder{
		fromFiles: FileMap{},
		toFiles:   FileMap{},
		threshold: similarityThreshold,
	}
}

// SetFromFiles installs the "from" revision and derives its file-path and
// directory sets.
func (b *Builder) SetFromFiles(files FileMap) {
	if files == nil {
		files = FileMap{}
	}
	b.fromFiles = files
	b.fromFilePaths = filePaths(files)
	b.fromDirs = directories(files)
}

// SetToFiles installs the "to" revision and derives its file-path and
// directory sets.
func (b *Builder) SetToFiles(files FileMap) {
	if files == nil {
		files = FileMap{}
	}
	b.toFiles = files
	b.toFilePaths = filePaths(files)
	b.toDirs = directories(files)
}

// BuildTree runs the phases that follow path classification (which
// SetFromFiles and SetToFiles perform): rename detection over the file-path
// set differences, tree assembly over the path union, then status and stats
// propagation. The returned tree is rooted at "/" and owned by the caller.
func (b *Builder) BuildTree() *DiffFileEntry {
	deleted := sortutil.SortedKeys(setDifference(b.fromFilePaths, b.toFilePaths))
	added := sortutil.SortedKeys(setDifference(b.toFilePaths, b.fromFilePaths))

	renames := b.detectRenames(deleted, added)

	root := b.buildTreeStructure(renames)
	b.propagate(root, renames)
	return root
}

// Build is the one-shot entry point: diff two file maps at the given
// similarity threshold.
func Build(fromFiles, toFiles FileMap, similarityThreshold float64) *DiffFileEntry {
	b := NewBuilder(similarityThreshold)
	b.SetFromFiles(fromFiles)
	b.SetToFiles(toFiles)
	return b.BuildTree()
}

func setDifference(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for p := range a {
		if _, ok := b[p]; !ok {
			out[p] = struct{}{}
		}
	}
	return out
}
