// Package linediff is the line-level diff primitive shared by the rename
// detector (similarity scoring) and the status propagator (added/removed
// counts), plus the simplified unified-patch formatter used by the per-file
// diff endpoint.
//
// Line model: blobs are split on '\n' only. The empty element after a
// trailing newline counts as a line. This matches the behavior the rest of
// the system is calibrated against; do not switch to a splitter that drops
// the terminal element.
package linediff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Op tags a single line of a computed diff.
type Op byte

const (
	OpEqual  Op = 'e'
	OpInsert Op = 'i'
	OpDelete Op = 'd'
)

// Change is one tagged line. For OpDelete the line comes from the "from"
// blob, for OpInsert from the "to" blob, for OpEqual from either.
type Change struct {
	Op   Op
	Line string
}

// Split breaks a blob into its diff lines.
func Split(s string) []string {
	return strings.Split(s, "\n")
}

// Lines counts the diff lines of a blob: len(Split(s)). "a\nb\n" counts 3.
func Lines(s string) int {
	return len(Split(s))
}

// Changes computes a line-level diff of from -> to as a flat change list.
// Within a replaced region deletes are emitted before inserts; no other
// ordering is guaranteed.
func Changes(from, to string) []Change {
	a := Split(from)
	b := Split(to)
	m := difflib.NewMatcher(a, b)

	var out []Change
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, Change{Op: OpEqual, Line: line})
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, Change{Op: OpDelete, Line: line})
			}
		case 'i':
			for _, line := range b[op.J1:op.J2] {
				out = append(out, Change{Op: OpInsert, Line: line})
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, Change{Op: OpDelete, Line: line})
			}
			for _, line := range b[op.J1:op.J2] {
				out = append(out, Change{Op: OpInsert, Line: line})
			}
		}
	}
	return out
}

// Counts returns the number of inserted and deleted lines of from -> to.
func Counts(from, to string) (added, removed int) {
	for _, c := range Changes(from, to) {
		switch c.Op {
		case OpInsert:
			added++
		case OpDelete:
			removed++
		}
	}
	return added, removed
}

// Similarity scores how much of the combined change list is unchanged:
// equal / (equal + inserted + deleted), in [0, 1]. Identical blobs
// short-circuit to 1.0 and an empty side to 0.0 without running the diff.
func Similarity(from, to string) float64 {
	if from == to {
		return 1.0
	}
	if from == "" || to == "" {
		return 0.0
	}

	var equal, total int
	for _, c := range Changes(from, to) {
		if c.Op == OpEqual {
			equal++
		}
		total++
	}
	if total < 1 {
		total = 1
	}
	return float64(equal) / float64(total)
}

// Unified renders a diff of from -> to in the viewer's patch dialect:
//
//	--- from/<filename>
//	+++ to/<filename>
//	<sign> <line>
//
// with '-' for deletes, '+' for inserts and ' ' for equal lines. There are
// no hunk headers; every line of both blobs appears. This is not the
// classic `diff -u` format and is not meant to be fed to patch tools.
func Unified(filename, from, to string) string {
	var sb strings.Builder
	sb.WriteString("--- from/")
	sb.WriteString(filename)
	sb.WriteString("\n+++ to/")
	sb.WriteString(filename)

	for _, c := range Changes(from, to) {
		var sign byte
		switch c.Op {
		case OpDelete:
			sign = '-'
		case OpInsert:
			sign = '+'
		default:
			sign = ' '
		}
		sb.WriteByte('\n')
		sb.WriteByte(sign)
		sb.WriteByte(' ')
		sb.WriteString(c.Line)
	}
	return sb.String()
}
