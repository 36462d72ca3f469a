// Package render prints a diff tree to a terminal with box-drawing
// branches and per-node change markers.
package render

import (
	"fmt"
	"io"

	"diffpack/internal/difftree"
)

// Branch characters for tree rendering.
const (
	branchVertical = "│   "
	branchTee      = "├── "
	branchCorner   = "└── "
	branchEmpty    = "    "
)

// Symbols for change markers.
const (
	symbolAdded     = "+"
	symbolRemoved   = "-"
	symbolModified  = "~"
	symbolRenamed   = "→"
	symbolUnchanged = " "
)

// Options configures tree rendering.
type Options struct {
	// HideUnchanged drops unchanged files and fully unchanged directories.
	HideUnchanged bool
	// ASCII replaces box-drawing glyphs with plain characters.
	ASCII bool
}

// Tree writes root and its descendants to w, one node per line:
//
//	~ / (+3/-1)
//	├── ~ src (+3/-1)
//	│   └── ~ main.go (+3/-1)
//	└──   README.md
func Tree(w io.Writer, root *difftree.DiffFileEntry, opts Options) {
	fmt.Fprintln(w, label(root))
	renderChildren(w, root, "", opts)
}

func renderChildren(w io.Writer, node *difftree.DiffFileEntry, prefix string, opts Options) {
	children := node.Children
	if opts.HideUnchanged {
		visible := make([]*difftree.DiffFileEntry, 0, len(children))
		for _, c := range children {
			if c.Status != difftree.StatusUnchanged {
				visible = append(visible, c)
			}
		}
		children = visible
	}

	for i, child := range children {
		tee, vert := branchTee, branchVertical
		corner, empty := branchCorner, branchEmpty
		if opts.ASCII {
			tee, vert, corner = "+-- ", "|   ", "`-- "
		}

		connector, childPrefix := tee, prefix+vert
		if i == len(children)-1 {
			connector, childPrefix = corner, prefix+empty
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label(child))
		renderChildren(w, child, childPrefix, opts)
	}
}

// label renders one node: marker, base name, counts for changed nodes and
// the rename origin for renamed files.
func label(node *difftree.DiffFileEntry) string {
	name := node.Path
	if node.Path == "/" {
		name = "/"
	} else if i := lastSlash(node.Path); i >= 0 {
		name = node.Path[i+1:]
	}

	marker := symbolUnchanged
	switch node.Status {
	case difftree.StatusAdded:
		marker = symbolAdded
	case difftree.StatusRemoved:
		marker = symbolRemoved
	case difftree.StatusModified:
		marker = symbolModified
	case difftree.StatusRenamed:
		marker = symbolRenamed
	}

	out := marker + " " + name
	if node.Status == difftree.StatusRenamed {
		out += fmt.Sprintf(" (from %s)", node.OldPath)
	}
	if node.Status != difftree.StatusUnchanged && (node.Added > 0 || node.Removed > 0) {
		out += fmt.Sprintf(" (+%d/-%d)", node.Added, node.Removed)
	}
	return out
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
