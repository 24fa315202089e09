// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Path is a parsed path: a volume and its clean segments.
//
// Volume is "/" for rooted unix paths, "C:" for drive paths,
// `\\server\share` for UNC paths and "" for relative paths.
type Path struct {
	Volume string
	Segs   []string
}

// windowsVolume returns the drive letter or UNC prefix of path, if any.
// Such paths are parsed with both separators on every platform.
// A drive letter must be followed by a separator or end the path, so
// "a:b/c" is a relative path.
func windowsVolume(path string) string {
	if len(path) >= 2 && path[1] == ':' && isLetter(path[0]) &&
		(len(path) == 2 || path[2] == '/' || path[2] == '\\') {
		return path[:2]
	}
	if len(path) >= 2 && isSep(path[0], true) && isSep(path[1], true) {
		// UNC: \\server\share
		rest := path[2:]
		n := 0
		end := len(path)
		for i := 0; i < len(rest); i++ {
			if isSep(rest[i], true) {
				n++
				if n == 2 {
					end = 2 + i
					break
				}
			}
		}
		if n == 0 {
			return ""
		}
		return strings.ReplaceAll(path[:end], "/", `\`)
	}
	return ""
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isSep(c byte, windows bool) bool {
	if c == '/' || c == os.PathSeparator {
		return true
	}
	return windows && c == '\\'
}

// Parse splits path into volume and segments,
// dropping "." segments and resolving "..".
func Parse(path string) Path {
	vol := windowsVolume(path)
	win := vol != ""
	rest := path[len(vol):]
	if !win && rest != "" && isSep(rest[0], false) {
		vol = "/"
	}
	var segs []string
	start := 0
	for i := 0; i <= len(rest); i++ {
		if i < len(rest) && !isSep(rest[i], win) {
			continue
		}
		seg := rest[start:i]
		start = i + 1
		switch seg {
		case "", ".":
		case "..":
			if len(segs) > 0 && segs[len(segs)-1] != ".." {
				segs = segs[:len(segs)-1]
			} else if vol == "" {
				segs = append(segs, seg)
			}
		default:
			segs = append(segs, seg)
		}
	}
	return Path{Volume: vol, Segs: segs}
}

// IsWindows reports whether p has a drive or UNC volume.
func (p Path) IsWindows() bool {
	return p.Volume != "" && p.Volume != "/"
}

// IsRoot reports whether p is a volume root such as "/" or `C:\`.
func (p Path) IsRoot() bool {
	return p.Volume != "" && len(p.Segs) == 0
}

// String renders p without a trailing separator, except for volume roots.
func (p Path) String() string {
	switch {
	case p.Volume == "":
		if len(p.Segs) == 0 {
			return "."
		}
		return strings.Join(p.Segs, string(filepath.Separator))
	case p.Volume == "/":
		return "/" + strings.Join(p.Segs, "/")
	default:
		return p.Volume + `\` + strings.Join(p.Segs, `\`)
	}
}

// Clean returns the canonical form of path.
func Clean(path string) string {
	if path == "" {
		return ""
	}
	return Parse(path).String()
}

// IsAbs reports whether path is absolute on this or a Windows-like volume.
func IsAbs(path string) bool {
	return filepath.IsAbs(path) || windowsVolume(path) != "" && len(path) > 2
}

// Abs resolves path against wd if it is relative.
func Abs(path, wd string) string {
	if IsAbs(path) {
		return Clean(path)
	}
	return Clean(filepath.Join(wd, path))
}

// sameVolume compares volumes. Drive letters never depend on the comparer.
func sameVolume(a, b string, c Comparer) bool {
	if a == b {
		return true
	}
	if len(a) == 2 && len(b) == 2 && a[1] == ':' && b[1] == ':' {
		return strings.EqualFold(a, b)
	}
	return c.Equal(a, b)
}

// IsUnder reports whether path is dir or a descendant of dir.
func IsUnder(path, dir string, c Comparer) bool {
	p, d := Parse(path), Parse(dir)
	if !sameVolume(p.Volume, d.Volume, c) || len(p.Segs) < len(d.Segs) {
		return false
	}
	for i, s := range d.Segs {
		if !c.Equal(p.Segs[i], s) {
			return false
		}
	}
	return true
}

// Rel returns the slash-separated path of path relative to dir,
// and false if path is not under dir.
func Rel(dir, path string, c Comparer) (string, bool) {
	if !IsUnder(path, dir, c) {
		return "", false
	}
	p, d := Parse(path), Parse(dir)
	return strings.Join(p.Segs[len(d.Segs):], "/"), true
}

// Depth returns the number of segments of path.
func Depth(path string) int {
	return len(Parse(path).Segs)
}

// BestCommonPrefix returns the longest common ancestor of paths,
// compared segment-wise with c.
// It returns "" if paths is empty or paths do not share a volume.
func BestCommonPrefix(paths []string, c Comparer) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := Parse(paths[0])
	for _, s := range paths[1:] {
		p := Parse(s)
		if !sameVolume(prefix.Volume, p.Volume, c) {
			return ""
		}
		n := min(len(prefix.Segs), len(p.Segs))
		i := 0
		for i < n && c.Equal(prefix.Segs[i], p.Segs[i]) {
			i++
		}
		prefix.Segs = prefix.Segs[:i]
	}
	if prefix.Volume == "" && len(prefix.Segs) == 0 {
		return ""
	}
	return prefix.String()
}
