package textutil

import "strings"

// ValidUTF8 converts raw bytes extracted from a tarball (or read from disk)
// into a string, replacing invalid byte sequences with the Unicode
// replacement character. Diffing operates on text; undecodable bytes must
// not make two otherwise-identical files compare unequal across platforms.
func ValidUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
