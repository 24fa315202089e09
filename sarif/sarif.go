// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package sarif repairs analyzer reports before they are handed to the
// analysis engine.
package sarif

import (
	"context"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Fixer repairs a report file.
type Fixer interface {
	// Fix returns the path of a usable report for path, which may be path
	// itself or a repaired copy. It returns false when the report cannot
	// be used.
	Fix(ctx context.Context, path, language string) (string, bool)
}

// FS is the filesystem access needed by the fixers.
type FS interface {
	FileExists(ctx context.Context, name string) bool
	ReadFile(ctx context.Context, name string) ([]byte, error)
	WriteFile(ctx context.Context, name string, data []byte) error
}

// Passthrough accepts every existing report as is.
type Passthrough struct {
	FS FS
}

// Fix implements Fixer.
func (p Passthrough) Fix(ctx context.Context, path, language string) (string, bool) {
	if !p.FS.FileExists(ctx, path) {
		return "", false
	}
	return path, true
}

// FixedSuffix is appended to the base name of repaired reports.
const FixedSuffix = "_fixed"

// unescapedPath matches string members older compilers wrote with raw
// backslashes.
var unescapedPath = regexp.MustCompile(`^(\s*"(?:uri|file|fullyQualifiedLogicalName|message|shortMessage|fullMessage|title)"\s*:\s*")(.*)("\s*,?\s*)$`)

// Repairer fixes reports that are not valid JSON because paths were
// written with unescaped backslashes. The repaired report is written next
// to the original with FixedSuffix.
type Repairer struct {
	FS     FS
	Logger *log.Logger
}

// Fix implements Fixer.
func (r Repairer) Fix(ctx context.Context, path, language string) (string, bool) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	if !r.FS.FileExists(ctx, path) {
		logger.Debugf("report %s does not exist", path)
		return "", false
	}
	buf, err := r.FS.ReadFile(ctx, path)
	if err != nil {
		logger.Warnf("Failed to read report %s: %v", path, err)
		return "", false
	}
	if json.Valid(buf) {
		return path, true
	}
	fixed := repair(buf)
	if !json.Valid(fixed) {
		logger.Warnf("The %s report %s is not valid and could not be repaired. It will not be imported.", language, path)
		return "", false
	}
	ext := filepath.Ext(path)
	out := strings.TrimSuffix(path, ext) + FixedSuffix + ext
	err = r.FS.WriteFile(ctx, out, fixed)
	if err != nil {
		logger.Warnf("Failed to write repaired report %s: %v", out, err)
		return "", false
	}
	logger.Infof("Repaired %s report %s into %s.", language, path, out)
	return out, true
}

// repair escapes backslashes of string members on their own line.
func repair(buf []byte) []byte {
	lines := strings.Split(string(buf), "\n")
	for i, line := range lines {
		cr := strings.HasSuffix(line, "\r")
		line = strings.TrimSuffix(line, "\r")
		m := unescapedPath.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		line = m[1] + escapeString(m[2]) + m[3]
		if cr {
			line += "\r"
		}
		lines[i] = line
	}
	return []byte(strings.Join(lines, "\n"))
}

// escapeString escapes backslashes and double quotes not already escaped.
func escapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
				sb.WriteByte(c)
				sb.WriteByte(s[i+1])
				i++
				continue
			}
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
