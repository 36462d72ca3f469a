package difftree

import "diffpack/internal/sortutil"

// buildTreeStructure creates the unannotated tree over the union of both
// revisions' paths and directory sets. The old side of every rename pair is
// left out: a renamed file surfaces only at its new path. Statuses and
// counts are placeholders until the propagation pass runs.
func (b *Builder) buildTreeStructure(renames map[string]string) *DiffFileEntry {
	union := make(map[string]struct{}, len(b.fromFiles)+len(b.toFiles))
	for p := range b.fromFiles {
		union[p] = struct{}{}
	}
	for p := range b.toFiles {
		union[p] = struct{}{}
	}
	for p := range b.fromDirs {
		union[p] = struct{}{}
	}
	for p := range b.toDirs {
		union[p] = struct{}{}
	}
	delete(union, "/")
	for _, oldPath := range renames {
		delete(union, oldPath)
	}

	nodes := make(map[string]*DiffFileEntry, len(union))
	childPaths := make(map[string][]string)
	for p := range union {
		nodes[p] = &DiffFileEntry{
			Path:     p,
			Type:     b.resolveFileType(p),
			Status:   StatusUnchanged,
			Children: []*DiffFileEntry{},
		}
		parent := parentPath(p)
		childPaths[parent] = append(childPaths[parent], p)
	}

	root := &DiffFileEntry{
		Path:     "/",
		Type:     TypeDirectory,
		Status:   StatusUnchanged,
		Children: []*DiffFileEntry{},
	}
	root.Children = assembleChildren("/", nodes, childPaths)
	return root
}

// assembleChildren attaches the fully assembled subtrees of parent's
// children in lexicographic path order.
func assembleChildren(parent string, nodes map[string]*DiffFileEntry, childPaths map[string][]string) []*DiffFileEntry {
	paths, ok := childPaths[parent]
	if !ok {
		return []*DiffFileEntry{}
	}
	delete(childPaths, parent)

	children := make([]*DiffFileEntry, 0, len(paths))
	for _, p := range sortutil.StablePathSort(paths) {
		node, ok := nodes[p]
		if !ok {
			continue
		}
		node.Children = assembleChildren(p, nodes, childPaths)
		children = append(children, node)
	}
	return children
}

// resolveFileType prefers the type recorded in either file map. Paths known
// only as implied parents are directories; unknown paths do not occur given
// the union construction but are treated as directories as well.
func (b *Builder) resolveFileType(path string) FileType {
	if entry, ok := b.fromFiles[path]; ok {
		return entry.Type
	}
	if entry, ok := b.toFiles[path]; ok {
		return entry.Type
	}
	return TypeDirectory
}
