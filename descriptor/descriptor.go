// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package descriptor provides the per-build-target project descriptor
// written by the build integration, and loaders for it.
package descriptor

import (
	"strings"

	"github.com/google/uuid"
)

// Kind is a kind of project.
type Kind int

const (
	// Product is a project with production sources.
	Product Kind = iota
	// Test is a test project.
	Test
)

func (k Kind) String() string {
	if k == Test {
		return "Test"
	}
	return "Product"
}

// ParseKind parses a project kind. Unknown kinds are Product.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), "test") {
		return Test
	}
	return Product
}

// ResultID identifies a kind of analysis result reference.
type ResultID string

const (
	// FilesToAnalyze is a text file listing one file to analyze per line.
	FilesToAnalyze ResultID = "FilesToAnalyze"
	// AnalyzerOutPath is an analyzer output directory.
	AnalyzerOutPath ResultID = "AnalyzerOutPath"
	// RoslynReport is a structured (SARIF) analyzer report.
	RoslynReport ResultID = "RoslynReport"
	// Telemetry is a telemetry file written by the analyzers.
	Telemetry ResultID = "Telemetry"
)

// AnalysisResult is a typed pointer to an auxiliary file.
type AnalysisResult struct {
	ID       ResultID
	Location string
}

// Property is a free-form analysis setting.
type Property struct {
	Key   string
	Value string
}

// Descriptor describes one build target of a project.
// It is immutable once read.
type Descriptor struct {
	// ProjectID identifies the project across build targets.
	ProjectID string
	// FullPath is the declared path of the project file.
	FullPath string
	Name     string
	Kind     Kind
	Excluded bool
	// Language is a normalized language tag such as "cs" or "vbnet".
	Language string
	Encoding string

	Configuration   string
	Platform        string
	TargetFramework string

	AnalysisResults  []AnalysisResult
	AnalysisSettings []Property

	// Source is the file the descriptor was read from, if any.
	Source string
}

// Results returns locations of the analysis results with id.
func (d *Descriptor) Results(id ResultID) []string {
	var locs []string
	for _, r := range d.AnalysisResults {
		if r.ID == id && r.Location != "" {
			locs = append(locs, r.Location)
		}
	}
	return locs
}

// NormalizeID returns the canonical form of a project identifier.
// GUIDs in any accepted notation map to the lowercase hyphenated form;
// other identifiers are only trimmed.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}

// NormalizeLanguage maps build language names to property language tags.
func NormalizeLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	switch l {
	case "c#", "cs", "csharp":
		return "cs"
	case "vb", "vb.net", "vbnet", "visualbasic":
		return "vbnet"
	}
	return l
}
