// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package addfiles classifies files that are not referenced by any build
// descriptor but match the configured suffix or glob rules.
package addfiles

import (
	"context"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
)

// FS is the directory enumeration capability.
type FS interface {
	ListDirectories(ctx context.Context, root string, recursive bool, prune func(name string) bool) ([]string, error)
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// Bucket holds additional files of the whole run.
type Bucket struct {
	Sources []string
	Tests   []string
}

// Classifier assigns additional files to projects.
type Classifier struct {
	FS       FS
	Rules    *Rules
	Comparer pathutil.Comparer
	// ScanAll enables classification. When false, files are only listed and counted.
	ScanAll bool
	Logger  *log.Logger
}

// Classify walks root and appends matched files to ExtraSources or
// ExtraTests of the valid record whose directory is the nearest ancestor
// of the file. Files owned by no project go to the returned root bucket.
// Filesystem errors are logged and never fail the classification.
func (c *Classifier) Classify(ctx context.Context, root string, records []*project.Record) *Bucket {
	if c.FS == nil {
		panic("addfiles: Classifier.FS is nil")
	}
	if c.Comparer == nil {
		c.Comparer = pathutil.Ordinal
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Rules == nil {
		c.Rules = &Rules{}
	}
	bucket := &Bucket{}

	dirs, files := c.list(ctx, root)
	c.Logger.Infof("Found %d files in %d directories under %s.", len(files), len(dirs), root)
	if !c.ScanAll {
		c.Logger.Infof("Scanning of additional files is disabled.")
		return bucket
	}

	valid := project.ValidRecords(records)
	var sources, tests int
	for _, f := range files {
		rel, ok := pathutil.Rel(root, f, c.Comparer)
		if !ok {
			continue
		}
		kind := c.Rules.Match(filepath.Base(f), rel)
		if kind == NoMatch || claimed(valid, f) {
			continue
		}
		owner := nearestOwner(valid, f, c.Comparer)
		switch {
		case owner == nil && kind == Test:
			bucket.Tests = append(bucket.Tests, f)
		case owner == nil:
			bucket.Sources = append(bucket.Sources, f)
		case kind == Test:
			owner.ExtraTests = append(owner.ExtraTests, f)
		default:
			owner.ExtraSources = append(owner.ExtraSources, f)
		}
		if kind == Test {
			tests++
		} else {
			sources++
		}
	}
	c.Logger.Infof("Found %d additional source files and %d additional test files.", sources, tests)
	return bucket
}

// list returns the directories under root, including root, and all the
// files directly in them, sorted.
// Files of each directory are listed concurrently.
func (c *Classifier) list(ctx context.Context, root string) ([]string, []string) {
	dirs, err := c.FS.ListDirectories(ctx, root, true, IsExcludedDir)
	if err != nil {
		c.Logger.Warnf("Failed to list directories in %s: %v", root, err)
		dirs = nil
	}
	dirs = append([]string{root}, dirs...)

	perDir := make([][]string, len(dirs))
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, dir := range dirs {
		eg.Go(func() error {
			files, err := c.FS.ListFiles(ctx, dir)
			if err != nil {
				c.Logger.Warnf("Failed to list files in %s: %v", dir, err)
				return nil
			}
			perDir[i] = files
			return nil
		})
	}
	eg.Wait()

	var files []string
	for _, fs := range perDir {
		files = append(files, fs...)
	}
	slices.Sort(files)
	return dirs, files
}

func claimed(records []*project.Record, f string) bool {
	for _, r := range records {
		if r.HasFile(f) {
			return true
		}
	}
	return false
}

// nearestOwner returns the record with the deepest directory containing f.
// Ties keep the first record.
func nearestOwner(records []*project.Record, f string, c pathutil.Comparer) *project.Record {
	var owner *project.Record
	depth := -1
	for _, r := range records {
		if !pathutil.IsUnder(f, r.Dir, c) {
			continue
		}
		if d := pathutil.Depth(r.Dir); d > depth {
			owner = r
			depth = d
		}
	}
	return owner
}
