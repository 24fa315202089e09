// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package generator runs the analysis input generation: it merges build
// descriptors into project records, resolves the base directory,
// classifies additional files and writes the analysis input.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/addfiles"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/basedir"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/descriptor"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/sarif"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/scannerinput"
)

// PropertiesFileName is the name of the legacy properties file in the
// output directory.
const PropertiesFileName = "sonar-project.properties"

// ErrNoValidProjects is returned when no project can be analyzed.
var ErrNoValidProjects = errors.New("no analyzable projects were found")

// FS is the filesystem access needed by the generator.
type FS interface {
	FileExists(ctx context.Context, name string) bool
	DirExists(ctx context.Context, name string) bool
	ReadFile(ctx context.Context, name string) ([]byte, error)
	WriteFile(ctx context.Context, name string, data []byte) error
	ListDirectories(ctx context.Context, root string, recursive bool, prune func(name string) bool) ([]string, error)
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// Result is the outcome of a run.
type Result struct {
	RanToCompletion bool
	// FullPropertiesFilePath is the written legacy file, if any.
	FullPropertiesFilePath string
	// EnginePayload is the JSON engine input, if any.
	EnginePayload []byte
	// Records has every project record, whatever its status.
	Records []*project.Record
	Root    basedir.Root
}

// Generator generates the analysis input.
type Generator struct {
	FS FS
	// Comparer compares paths. Defaults to the config's pathComparison,
	// or to the platform default.
	Comparer pathutil.Comparer
	// Fixer repairs report files. Defaults to sarif.Repairer.
	Fixer sarif.Fixer
	// Getwd resolves a relative base directory. Defaults to os.Getwd.
	Getwd  func() (string, error)
	Logger *log.Logger
}

// Generate runs the generation for cfg and descs.
// A run-level failure returns an error and a result that did not run to
// completion; the records in the result are still set.
func (g *Generator) Generate(ctx context.Context, cfg *config.AnalysisConfig, descs []*descriptor.Descriptor) (*Result, error) {
	if g.FS == nil {
		panic("generator: Generator.FS is nil")
	}
	if cfg == nil {
		panic("generator: nil config")
	}
	logger := g.Logger
	if logger == nil {
		logger = log.Default()
	}
	comparer := g.Comparer
	if comparer == nil {
		c, err := pathutil.ByName(cfg.PathComparison, runtime.GOOS)
		if err != nil {
			return &Result{}, err
		}
		comparer = c
	}
	fixer := g.Fixer
	if fixer == nil {
		fixer = sarif.Repairer{FS: g.FS, Logger: logger}
	}
	src := cfg.Source()

	merger := &project.Merger{FS: g.FS, Comparer: comparer, Logger: logger}
	records := merger.Merge(ctx, descs)
	result := &Result{Records: records}
	logger.Debugf("merged %d descriptors into %d projects", len(descs), len(records))
	if len(project.ValidRecords(records)) == 0 {
		logger.Error("No analyzable projects were found. Check the build produced project descriptors with files to analyze.")
		return result, ErrNoValidProjects
	}

	root, err := basedir.Resolve(ctx, basedir.ProjectDirs(records), basedir.Options{
		Source:     src,
		WorkingDir: cfg.WorkingDir,
		Comparer:   comparer,
		DirExists:  g.FS.DirExists,
		Getwd:      g.Getwd,
		Logger:     logger,
	})
	if err != nil {
		logger.Errorf("Failed to resolve the project base directory: %v", err)
		return result, err
	}
	result.Root = root
	logger.Debugf("base directory %s (%s)", root.Dir, root.Provenance)
	err = basedir.Restrict(root, records, comparer, logger)
	if err != nil {
		logger.Errorf("%v", err)
		return result, errors.Join(ErrNoValidProjects, err)
	}

	classifier := &addfiles.Classifier{
		FS:       g.FS,
		Rules:    addfiles.NewRules(src, logger),
		Comparer: comparer,
		ScanAll:  cfg.ScanAllFiles(),
		Logger:   logger,
	}
	bucket := classifier.Classify(ctx, root.Dir, records)

	for _, r := range project.ValidRecords(records) {
		r.ReportPaths = fixReports(ctx, fixer, r)
	}

	tree := scannerinput.Build(scannerinput.Header{
		ProjectKey:     cfg.ProjectKey,
		ProjectName:    cfg.ProjectName,
		ProjectVersion: cfg.ProjectVersion,
		WorkingDir:     filepath.Join(cfg.OutputDir, ".sonar"),
		ServerURL:      cfg.ServerURL,
		Settings:       src,
	}, scannerinput.Root{
		Dir:     root.Dir,
		Sources: bucket.Sources,
		Tests:   bucket.Tests,
	}, records)
	out, err := scannerinput.Render(tree, cfg.ServerVersion, logger)
	if err != nil {
		return result, fmt.Errorf("failed to render engine input: %w", err)
	}

	fname := filepath.Join(cfg.OutputDir, PropertiesFileName)
	err = g.FS.WriteFile(ctx, fname, out.Legacy)
	if err != nil {
		return result, fmt.Errorf("failed to write %s: %w", fname, err)
	}
	logger.Infof("Generated analysis properties file %s.", fname)
	result.FullPropertiesFilePath = fname
	result.EnginePayload = out.Engine
	result.RanToCompletion = true
	return result, nil
}

func fixReports(ctx context.Context, fixer sarif.Fixer, r *project.Record) []string {
	var paths []string
	for _, p := range r.ReportPaths {
		fixed, ok := fixer.Fix(ctx, p, r.Language)
		if !ok {
			continue
		}
		paths = append(paths, fixed)
	}
	return paths
}
