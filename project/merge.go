// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/descriptor"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
)

// FS is the filesystem access needed by the Merger.
type FS interface {
	FileExists(ctx context.Context, name string) bool
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Merger groups descriptors by project identifier and validates each group.
type Merger struct {
	FS       FS
	Comparer pathutil.Comparer
	Logger   *log.Logger
}

// Merge returns one record per project identifier, in order of first
// appearance. It never fails; anomalies become a record status and
// logged warnings.
func (m *Merger) Merge(ctx context.Context, descs []*descriptor.Descriptor) []*Record {
	if m.FS == nil {
		panic("project: Merger.FS is nil")
	}
	if m.Comparer == nil {
		m.Comparer = pathutil.Ordinal
	}
	if m.Logger == nil {
		m.Logger = log.Default()
	}
	var order []string
	groups := make(map[string][]indexed)
	for i, d := range descs {
		if d == nil {
			continue
		}
		id := descriptor.NormalizeID(d.ProjectID)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], indexed{d: d, i: i})
	}
	records := make([]*Record, 0, len(order))
	for _, id := range order {
		records = append(records, m.mergeGroup(ctx, id, groups[id]))
	}
	return records
}

type indexed struct {
	d *descriptor.Descriptor
	i int
}

// mergeOrder sorts build targets so that the merged path lists do not
// depend on descriptor discovery order: non-release configurations first,
// then configuration, platform and target framework names, then the
// descriptor file path.
func mergeOrder(group []indexed) []*descriptor.Descriptor {
	sorted := slices.Clone(group)
	slices.SortStableFunc(sorted, func(a, b indexed) int {
		return cmp.Or(
			cmp.Compare(releaseRank(a.d), releaseRank(b.d)),
			cmp.Compare(strings.ToLower(a.d.Configuration), strings.ToLower(b.d.Configuration)),
			cmp.Compare(strings.ToLower(a.d.Platform), strings.ToLower(b.d.Platform)),
			cmp.Compare(strings.ToLower(a.d.TargetFramework), strings.ToLower(b.d.TargetFramework)),
			cmp.Compare(a.d.Source, b.d.Source),
			cmp.Compare(a.i, b.i),
		)
	})
	descs := make([]*descriptor.Descriptor, len(sorted))
	for i, s := range sorted {
		descs[i] = s.d
	}
	return descs
}

func releaseRank(d *descriptor.Descriptor) int {
	if strings.Contains(strings.ToLower(d.Configuration), "release") {
		return 1
	}
	return 0
}

func (m *Merger) mergeGroup(ctx context.Context, id string, group []indexed) *Record {
	descs := mergeOrder(group)
	first := descs[0]
	for _, d := range descs {
		if !d.Excluded {
			first = d
			break
		}
	}
	r := &Record{
		ID:          id,
		Name:        first.Name,
		FullPath:    pathutil.Clean(first.FullPath),
		Kind:        first.Kind,
		Language:    first.Language,
		Encoding:    first.Encoding,
		Descriptors: descs,
		comparer:    m.Comparer,
	}
	r.Dir = projectDir(r.FullPath)

	var paths []string
	seen := make(map[string]bool)
	for _, g := range group {
		p := pathutil.Clean(g.d.FullPath)
		k := m.Comparer.Key(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		paths = append(paths, p)
	}
	if len(paths) > 1 {
		r.Status = DuplicateGUID
		for _, p := range paths {
			m.Logger.Warnf("Duplicate ProjectGuid: %q. The project will not be analyzed. Project file: %q", id, p)
		}
		return r
	}
	if !m.FS.FileExists(ctx, r.FullPath) {
		r.Status = ProjectNotFound
		m.Logger.Warnf("Project file not found: %q. The project will not be analyzed.", r.FullPath)
		return r
	}

	files := newPathSet(m.Comparer)
	var settings []descriptor.Property
	settingKeys := make(map[string]bool)
	for _, d := range descs {
		if d.Excluded {
			m.Logger.Infof("The exclude flag has been set so the project will not be analyzed. Project file: %q (%s %s %s)", r.FullPath, d.Configuration, d.Platform, d.TargetFramework)
			continue
		}
		for _, list := range d.Results(descriptor.FilesToAnalyze) {
			for _, f := range m.readFileList(ctx, r.Dir, list) {
				files.add(f)
			}
		}
		for _, p := range d.AnalysisSettings {
			if p.Key == "" || settingKeys[p.Key] {
				continue
			}
			settingKeys[p.Key] = true
			settings = append(settings, p)
		}
	}
	if len(files.list) == 0 {
		r.Status = NoFilesToAnalyze
		m.Logger.Infof("No files to analyze in project %q (%s).", r.Name, r.FullPath)
		return r
	}

	r.Status = Valid
	r.Files = files.list
	r.fileKeys = files.keys
	r.Settings = settings
	r.AnalyzerOutPaths = m.mergeResults(descs, descriptor.AnalyzerOutPath)
	r.ReportPaths = m.mergeResults(descs, descriptor.RoslynReport)
	r.TelemetryPaths = m.mergeResults(descs, descriptor.Telemetry)
	return r
}

func (m *Merger) mergeResults(descs []*descriptor.Descriptor, id descriptor.ResultID) []string {
	s := newPathSet(m.Comparer)
	for _, d := range descs {
		for _, loc := range d.Results(id) {
			s.add(pathutil.Clean(loc))
		}
	}
	return s.list
}

// readFileList reads a files-to-analyze list; one path per line,
// relative paths are relative to the project directory.
// Missing or invalid entries are logged and dropped.
func (m *Merger) readFileList(ctx context.Context, dir, list string) []string {
	buf, err := m.FS.ReadFile(ctx, list)
	if err != nil {
		m.Logger.Warnf("Failed to read the list of files to analyze %q: %v", list, err)
		return nil
	}
	var files []string
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !validPath(line) {
			m.Logger.Warnf("File name contains invalid characters and will not be analyzed: %q", line)
			continue
		}
		f := pathutil.Abs(line, dir)
		if !m.FS.FileExists(ctx, f) {
			m.Logger.Warnf("File does not exist and will not be analyzed: %q", f)
			continue
		}
		files = append(files, f)
	}
	return files
}

func validPath(p string) bool {
	return !strings.ContainsFunc(p, func(r rune) bool {
		return r < 0x20 || r == 0x7f
	})
}

func projectDir(fullPath string) string {
	p := pathutil.Parse(fullPath)
	if len(p.Segs) > 0 {
		p.Segs = p.Segs[:len(p.Segs)-1]
	}
	return p.String()
}

type pathSet struct {
	c    pathutil.Comparer
	keys map[string]bool
	list []string
}

func newPathSet(c pathutil.Comparer) *pathSet {
	return &pathSet{c: c, keys: make(map[string]bool)}
}

func (s *pathSet) add(p string) {
	k := fileKey(p, s.c)
	if s.keys[k] {
		return
	}
	s.keys[k] = true
	s.list = append(s.list, p)
}
