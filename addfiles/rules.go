// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package addfiles

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
)

// excludedDirs are directory names never scanned, at any depth.
var excludedDirs = []string{".sonarqube", ".sonar"}

// excludedFiles are files written by native build tooling.
var excludedFiles = []string{"build-wrapper-dump.json", "compile_commands.json"}

// buildLanguages are analyzed through the build and never scanned by suffix.
var buildLanguages = []string{"cs", "vbnet"}

// Glob properties and their default patterns.
const (
	DockerPatterns       = "sonar.docker.file.patterns"
	JVMFrameworkPatterns = "sonar.java.jvmframeworkconfig.file.patterns"
	TextInclusions       = "sonar.text.inclusions"
)

var globDefaults = []struct {
	key      string
	patterns string
}{
	{DockerPatterns, "Dockerfile,*.dockerfile"},
	{JVMFrameworkPatterns, "**/src/main/resources/**/*app*.properties,**/src/main/resources/**/*app*.yaml,**/src/main/resources/**/*app*.yml"},
	{TextInclusions, "**/*.sh,**/*.bash,**/*.zsh,**/*.ksh,**/*.ps1,**/*.properties,**/*.conf,**/*.pem,**/*.config,.env,.aws/config"},
}

const suffixesKeySuffix = ".file.suffixes"

// Kind tells how a matched file is classified.
type Kind int

const (
	// NoMatch files are not additional files.
	NoMatch Kind = iota
	// Source is a source file.
	Source
	// Test is a test file.
	Test
)

func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case Test:
		return "test"
	}
	return "none"
}

type suffixRule struct {
	key      string
	suffixes []string
}

type globRule struct {
	key      string
	patterns []string
}

// Rules holds suffix and glob rules.
type Rules struct {
	suffixes []suffixRule
	globs    []globRule
}

// NewRules builds rules from the properties of src.
// Invalid glob patterns are logged and ignored.
func NewRules(src config.Source, logger *log.Logger) *Rules {
	if logger == nil {
		logger = log.Default()
	}
	props := src.Merged()
	r := &Rules{}
	for _, key := range props.Keys() {
		if !strings.HasPrefix(key, "sonar.") || !strings.HasSuffix(key, suffixesKeySuffix) {
			continue
		}
		lang := strings.TrimSuffix(strings.TrimPrefix(key, "sonar."), suffixesKeySuffix)
		if slices.Contains(buildLanguages, lang) {
			continue
		}
		suffixes := normalizeSuffixes(props[key])
		if len(suffixes) == 0 {
			continue
		}
		r.suffixes = append(r.suffixes, suffixRule{key: key, suffixes: suffixes})
	}
	for _, g := range globDefaults {
		value, ok := props[g.key]
		if !ok || strings.TrimSpace(value) == "" {
			value = g.patterns
		}
		var patterns []string
		for _, p := range splitList(value) {
			p = strings.TrimPrefix(strings.TrimPrefix(p, "./"), "/")
			p = strings.ToLower(p)
			if !doublestar.ValidatePattern(p) {
				logger.Warnf("Invalid pattern %q in %s is ignored.", p, g.key)
				continue
			}
			patterns = append(patterns, p)
		}
		r.globs = append(r.globs, globRule{key: g.key, patterns: patterns})
	}
	return r
}

func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			list = append(list, v)
		}
	}
	return list
}

// normalizeSuffixes lowercases suffixes and adds a missing leading dot.
func normalizeSuffixes(s string) []string {
	var suffixes []string
	for _, v := range splitList(s) {
		v = strings.ToLower(v)
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		if v == "." || slices.Contains(suffixes, v) {
			continue
		}
		suffixes = append(suffixes, v)
	}
	return suffixes
}

// IsExcludedDir reports whether a directory named name is never scanned.
func IsExcludedDir(name string) bool {
	for _, d := range excludedDirs {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

// IsExcludedFile reports whether a file named name is never classified.
func IsExcludedFile(name string) bool {
	for _, f := range excludedFiles {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}

// Match classifies a file by its base name and its slash-separated
// path relative to the root directory.
func (r *Rules) Match(name, rel string) Kind {
	if IsExcludedFile(name) {
		return NoMatch
	}
	lname := strings.ToLower(name)
	kind := NoMatch
	for _, s := range r.suffixes {
		for _, suffix := range s.suffixes {
			if len(lname) <= len(suffix) || !strings.HasSuffix(lname, suffix) {
				continue
			}
			stem := strings.TrimSuffix(lname, suffix)
			if strings.HasSuffix(stem, ".spec") || strings.HasSuffix(stem, ".test") {
				return Test
			}
			kind = Source
		}
	}
	if kind != NoMatch {
		return kind
	}
	lrel := strings.ToLower(rel)
	for _, g := range r.globs {
		for _, p := range g.patterns {
			ok, err := doublestar.Match(p, lrel)
			if err == nil && ok {
				return Source
			}
		}
	}
	return NoMatch
}
