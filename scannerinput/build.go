// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"slices"
	"strings"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/descriptor"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
)

// Property keys written by the serializer.
const (
	ProjectKeyKey     = "sonar.projectKey"
	ProjectNameKey    = "sonar.projectName"
	ProjectVersionKey = "sonar.projectVersion"
	SourceEncodingKey = "sonar.sourceEncoding"
	SourcesKey        = "sonar.sources"
	TestsKey          = "sonar.tests"
)

// Root is the root level of the analysis model.
type Root struct {
	// Dir is the resolved project base directory.
	Dir     string
	Sources []string
	Tests   []string
}

// Header is the run-level identity and server information.
type Header struct {
	ProjectKey     string
	ProjectName    string
	ProjectVersion string
	// WorkingDir is written as sonar.working.directory when set.
	WorkingDir string
	// ServerURL is the inferred host URL.
	ServerURL string
	// Settings are the global settings.
	Settings config.Source
}

// rootKeys are written by Build and never copied from global settings.
var rootKeys = []string{
	ProjectKeyKey,
	ProjectNameKey,
	ProjectVersionKey,
	config.ProjectBaseDir,
	config.WorkingDirectory,
	config.HostURL,
	SourcesKey,
	TestsKey,
	ModulesKey,
}

// Build builds the property tree of the run. Only valid records are
// written; they are listed in the modules marker in the given order.
func Build(h Header, root Root, records []*project.Record) *Tree {
	w := NewWriter()
	for _, r := range project.ValidRecords(records) {
		WriteProject(w, h.ProjectKey, r)
		w.AddModule(r.ID)
	}
	WriteRoot(w, h, root)
	WriteGlobal(w, h.Settings)
	return w.Flush()
}

// WriteProject writes the properties of r, prefixed by its identifier.
func WriteProject(w *Writer, projectKey string, r *project.Record) {
	p := r.ID + "."
	w.Set(p+ProjectKeyKey, projectKey+":"+r.ID)
	w.Set(p+ProjectNameKey, r.Name)
	w.Set(p+config.ProjectBaseDir, r.Dir)
	if r.Encoding != "" {
		w.Set(p+SourceEncodingKey, strings.ToLower(r.Encoding))
	}
	switch r.Kind {
	case descriptor.Test:
		w.SetList(p+TestsKey, concat(r.Files, r.ExtraSources, r.ExtraTests))
	default:
		w.SetList(p+SourcesKey, concat(r.Files, r.ExtraSources))
		w.SetList(p+TestsKey, r.ExtraTests)
	}
	if r.Language != "" {
		lang := "sonar." + r.Language + "."
		w.SetList(p+lang+"analyzer.projectOutPaths", r.AnalyzerOutPaths)
		w.SetList(p+lang+"roslyn.reportFilePaths", r.ReportPaths)
		w.SetList(p+lang+"scanner.telemetry", r.TelemetryPaths)
	}
	for _, s := range r.Settings {
		if w.Has(p + s.Key) {
			continue
		}
		w.Set(p+s.Key, s.Value)
	}
}

// WriteRoot writes the run identity, the base directory and the files of
// the root bucket.
func WriteRoot(w *Writer, h Header, root Root) {
	w.Set(ProjectKeyKey, h.ProjectKey)
	w.Set(ProjectNameKey, h.ProjectName)
	if h.ProjectVersion != "" {
		w.Set(ProjectVersionKey, h.ProjectVersion)
	}
	if h.WorkingDir != "" {
		w.Set(config.WorkingDirectory, h.WorkingDir)
	}
	w.Set(config.ProjectBaseDir, root.Dir)
	if u := HostURL(h); u != "" {
		w.Set(config.HostURL, u)
	}
	w.SetList(SourcesKey, root.Sources)
	w.SetList(TestsKey, root.Tests)
}

// WriteGlobal writes the merged global settings in key order.
func WriteGlobal(w *Writer, s config.Source) {
	merged := s.Merged()
	for _, k := range merged.Keys() {
		if slices.Contains(rootKeys, k) || w.Has(k) {
			continue
		}
		w.Set(k, merged[k])
	}
}

// HostURL returns the explicitly configured host URL, or the inferred one.
func HostURL(h Header) string {
	if v, _, ok := h.Settings.Lookup(config.HostURL); ok {
		return strings.TrimSpace(v)
	}
	return h.ServerURL
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
