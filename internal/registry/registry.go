// Package registry fetches package tarballs from public registries and
// extracts them into the file maps the diff-tree builder consumes.
//
// Supported registries:
//   - npm    — https://registry.npmjs.org/<pkg>/-/<unscoped>-<version>.tgz
//   - crates — https://static.crates.io/crates/<pkg>/<pkg>-<version>.crate
//   - zig    — https://codeload.github.com/<owner>/<repo>/tar.gz/<version>
//     where <pkg> is "<owner>/<repo>"
//
// Failure messages are surfaced verbatim at the host boundary; keep them
// stable.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

// TarballURL builds the download URL for one package version.
func TarballURL(reg, pkg, version string) (string, error) {
	switch reg {
	case "npm":
		unscoped := pkg
		if i := strings.IndexByte(pkg, '/'); i >= 0 {
			unscoped = pkg[i+1:]
		}
		return fmt.Sprintf("https://registry.npmjs.org/%s/-/%s-%s.tgz", pkg, unscoped, version), nil
	case "crates":
		return fmt.Sprintf("https://static.crates.io/crates/%s/%s-%s.crate", pkg, pkg, version), nil
	case "zig":
		parts := strings.Split(pkg, "/")
		owner, repo := parts[0], ""
		if len(parts) > 1 {
			repo = parts[1]
		}
		if owner == "" || repo == "" {
			return "", errors.New("Invalid Zig package name")
		}
		return fmt.Sprintf("https://codeload.github.com/%s/%s/tar.gz/%s", owner, repo, version), nil
	default:
		return "", fmt.Errorf("Unsupported registry: %s", reg)
	}
}
