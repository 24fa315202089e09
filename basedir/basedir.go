// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package basedir resolves the single root directory that bounds an analysis.
package basedir

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
)

var (
	// ErrBaseDirNotFound is returned when the configured base directory does not exist.
	ErrBaseDirNotFound = errors.New("the configured project base directory does not exist")
	// ErrNoBaseDir is returned when the project directories share no common ancestor.
	ErrNoBaseDir = errors.New("unable to determine a common base directory for the projects")
	// ErrNoProjectsUnderBaseDir is returned when no project is left under the base directory.
	ErrNoProjectsUnderBaseDir = errors.New("no project is located under the base directory")
)

// Provenance tells which rule chose the root.
type Provenance int

const (
	// UserSupplied is an explicit sonar.projectBaseDir setting.
	UserSupplied Provenance = iota + 1
	// WorkingDirectory is the configured working directory.
	WorkingDirectory
	// CommonPrefix is the longest common ancestor of the project directories.
	CommonPrefix
)

func (p Provenance) String() string {
	switch p {
	case UserSupplied:
		return "user supplied"
	case WorkingDirectory:
		return "working directory"
	case CommonPrefix:
		return "common prefix"
	}
	return "none"
}

// Root is a resolved root directory.
type Root struct {
	Dir        string
	Provenance Provenance
}

// Options configures Resolve.
type Options struct {
	// Source is where an explicit base directory is looked up.
	Source config.Source
	// WorkingDir is the configured working directory, if any.
	WorkingDir string
	Comparer   pathutil.Comparer
	// DirExists checks the explicit base directory. Required.
	DirExists func(ctx context.Context, dir string) bool
	// Getwd resolves a relative base directory. Default to os.Getwd.
	Getwd  func() (string, error)
	Logger *log.Logger
}

const semanticsMessage = "The base directory bounds the analysis: files outside it are not analyzed. " +
	"It can be set explicitly with the " + config.ProjectBaseDir + " property."

// Resolve returns the root directory of the analysis for the given
// project directories. The first applicable rule wins:
// an explicit sonar.projectBaseDir (local > environment > server),
// the working directory if it contains every project directory,
// or the longest common ancestor of the project directories.
func Resolve(ctx context.Context, projectDirs []string, opts Options) (Root, error) {
	if opts.DirExists == nil {
		panic("basedir: Options.DirExists is nil")
	}
	if opts.Comparer == nil {
		opts.Comparer = pathutil.Ordinal
	}
	if opts.Getwd == nil {
		opts.Getwd = os.Getwd
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	if v, layer, ok := opts.Source.Lookup(config.ProjectBaseDir); ok {
		dir := v
		if !pathutil.IsAbs(dir) {
			wd, err := opts.Getwd()
			if err != nil {
				return Root{}, fmt.Errorf("failed to resolve %s=%q: %w", config.ProjectBaseDir, v, err)
			}
			dir = pathutil.Abs(dir, wd)
		}
		dir = pathutil.Clean(pathutil.ExpandShortName(dir))
		if !opts.DirExists(ctx, dir) {
			return Root{}, fmt.Errorf("%w: %s=%q (from %s settings)", ErrBaseDirNotFound, config.ProjectBaseDir, dir, layer)
		}
		logger.Debugf("using %s from %s settings: %s", config.ProjectBaseDir, layer, dir)
		logger.Info(semanticsMessage)
		return Root{Dir: dir, Provenance: UserSupplied}, nil
	}

	if opts.WorkingDir != "" && len(projectDirs) > 0 && allUnder(projectDirs, opts.WorkingDir, opts.Comparer) {
		dir := pathutil.Clean(opts.WorkingDir)
		logger.Debugf("using working directory as base directory: %s", dir)
		logger.Info(semanticsMessage)
		return Root{Dir: dir, Provenance: WorkingDirectory}, nil
	}

	dir := pathutil.BestCommonPrefix(projectDirs, opts.Comparer)
	if dir == "" {
		for _, d := range projectDirs {
			logger.Warnf("Project directory %q does not share a common base directory with the other projects.", d)
		}
		return Root{}, ErrNoBaseDir
	}
	if pathutil.Parse(dir).IsRoot() && len(projectDirs) > 1 {
		for _, d := range projectDirs {
			logger.Warnf("Project directory %q shares only the filesystem root %q with the other projects. Consider setting %s.", d, dir, config.ProjectBaseDir)
		}
	}
	logger.Debugf("using common root of %d project directories: %s", len(projectDirs), dir)
	logger.Info(semanticsMessage)
	return Root{Dir: dir, Provenance: CommonPrefix}, nil
}

func allUnder(dirs []string, root string, c pathutil.Comparer) bool {
	for _, d := range dirs {
		if !pathutil.IsUnder(d, root, c) {
			return false
		}
	}
	return true
}

// Restrict demotes valid records whose directory is not under root,
// with one warning per excluded directory.
// It returns ErrNoProjectsUnderBaseDir if no valid record remains.
func Restrict(root Root, records []*project.Record, c pathutil.Comparer, logger *log.Logger) error {
	if c == nil {
		c = pathutil.Ordinal
	}
	if logger == nil {
		logger = log.Default()
	}
	remaining := 0
	for _, r := range records {
		if r.Status != project.Valid {
			continue
		}
		if !pathutil.IsUnder(r.Dir, root.Dir, c) {
			logger.Warnf("Directory %q is not located under the base directory %q and will not be analyzed.", r.Dir, root.Dir)
			r.Demote(project.OutsideBaseDir)
			continue
		}
		remaining++
	}
	if remaining == 0 {
		return fmt.Errorf("%w: %s", ErrNoProjectsUnderBaseDir, root.Dir)
	}
	return nil
}

// ProjectDirs returns the directories of the valid records.
func ProjectDirs(records []*project.Record) []string {
	var dirs []string
	for _, r := range project.ValidRecords(records) {
		dirs = append(dirs, r.Dir)
	}
	return dirs
}
