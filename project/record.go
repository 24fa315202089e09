// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package project merges per-build-target descriptors into one validated
// record per project.
package project

import (
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/descriptor"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
)

// Status is the validation status of a project record.
type Status int

const (
	// Valid records contribute files to the analysis.
	Valid Status = iota
	// DuplicateGUID means descriptors sharing the identifier declare different project paths.
	DuplicateGUID
	// ProjectNotFound means the declared project file does not exist.
	ProjectNotFound
	// NoFilesToAnalyze means no existing file is left to analyze.
	NoFilesToAnalyze
	// OutsideBaseDir means the project is not under the resolved base directory.
	OutsideBaseDir
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "Valid"
	case DuplicateGUID:
		return "DuplicateGuid"
	case ProjectNotFound:
		return "ProjectNotFound"
	case NoFilesToAnalyze:
		return "NoFilesToAnalyze"
	case OutsideBaseDir:
		return "OutsideBaseDir"
	}
	return "Unknown"
}

// Record is the merged view of all descriptors sharing a project identifier.
//
// Only the classifier mutates a record after merge, and only by appending
// to ExtraSources and ExtraTests.
type Record struct {
	ID       string
	Name     string
	FullPath string
	// Dir is the project directory.
	Dir      string
	Kind     descriptor.Kind
	Language string
	Encoding string
	Status   Status

	// Files are the files to analyze declared by the build.
	Files []string
	// AnalyzerOutPaths, ReportPaths and TelemetryPaths are merged
	// across build targets in merge order.
	AnalyzerOutPaths []string
	ReportPaths      []string
	TelemetryPaths   []string
	// Settings are the analysis settings; the first build target in merge order wins per key.
	Settings []descriptor.Property

	ExtraSources []string
	ExtraTests   []string

	// Descriptors are the descriptors of the group in merge order.
	Descriptors []*descriptor.Descriptor

	fileKeys map[string]bool
	comparer pathutil.Comparer
}

// HasFile reports whether path is one of the files declared by the build.
func (r *Record) HasFile(path string) bool {
	if r.fileKeys == nil {
		return false
	}
	return r.fileKeys[fileKey(path, r.comparer)]
}

// Demote marks a valid record as unusable and drops its file data.
func (r *Record) Demote(s Status) {
	r.Status = s
	r.clearFiles()
}

func (r *Record) clearFiles() {
	r.Files = nil
	r.AnalyzerOutPaths = nil
	r.ReportPaths = nil
	r.TelemetryPaths = nil
	r.Settings = nil
	r.ExtraSources = nil
	r.ExtraTests = nil
	r.fileKeys = nil
}

func fileKey(path string, c pathutil.Comparer) string {
	if c == nil {
		c = pathutil.Ordinal
	}
	return c.Key(pathutil.Clean(path))
}

// ValidRecords returns the records with Valid status.
func ValidRecords(records []*Record) []*Record {
	var valid []*Record
	for _, r := range records {
		if r.Status == Valid {
			valid = append(valid, r)
		}
	}
	return valid
}
