// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS filesystem access for the analysis input
// generation: directory enumeration, existence checks and file I/O.
package osfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/sync/semaphore"
)

// IOSemaphoreName is the registered name of IOSemaphore.
const IOSemaphoreName = "osfs-io"

// IOSemaphore is a semaphore to control concurrent filesystem calls,
// to protect from thread exhaustion.
var IOSemaphore = semaphore.New(IOSemaphoreName, runtime.NumCPU()*2)

const defaultStatCacheSize = 8192

// OSFS provides OS filesystem access.
type OSFS struct {
	logger *log.Logger
	stats  *lru.Cache[string, statEntry]
}

type statEntry struct {
	exists bool
	isDir  bool
}

// Option is an option for osfs.
type Option struct {
	// Logger receives per-directory warnings. Default to log.Default().
	Logger *log.Logger
	// StatCacheSize is number of stat results to keep.
	StatCacheSize int
}

// New creates new OSFS.
func New(opt Option) *OSFS {
	if opt.Logger == nil {
		opt.Logger = log.Default()
	}
	if opt.StatCacheSize <= 0 {
		opt.StatCacheSize = defaultStatCacheSize
	}
	cache, err := lru.New[string, statEntry](opt.StatCacheSize)
	if err != nil {
		// only fails for non-positive size.
		panic(err)
	}
	return &OSFS{
		logger: opt.Logger,
		stats:  cache,
	}
}

func (ofs *OSFS) stat(ctx context.Context, name string) statEntry {
	name = filepath.Clean(name)
	if e, ok := ofs.stats.Get(name); ok {
		return e
	}
	var fi fs.FileInfo
	err := IOSemaphore.Do(ctx, func() error {
		var err error
		fi, err = os.Stat(name)
		return err
	})
	var e statEntry
	if err == nil {
		e = statEntry{exists: true, isDir: fi.IsDir()}
	}
	if ctx.Err() != nil {
		// interrupted, not an answer about name.
		return e
	}
	ofs.stats.Add(name, e)
	return e
}

// FileExists reports whether name exists and is not a directory.
func (ofs *OSFS) FileExists(ctx context.Context, name string) bool {
	e := ofs.stat(ctx, name)
	return e.exists && !e.isDir
}

// DirExists reports whether name exists and is a directory.
func (ofs *OSFS) DirExists(ctx context.Context, name string) bool {
	e := ofs.stat(ctx, name)
	return e.exists && e.isDir
}

// ReadFile reads the named file.
func (ofs *OSFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	var buf []byte
	err := IOSemaphore.Do(ctx, func() error {
		var err error
		buf, err = os.ReadFile(name)
		return err
	})
	return buf, err
}

// WriteFile writes data to the named file, creating its directory if necessary.
func (ofs *OSFS) WriteFile(ctx context.Context, name string, data []byte) error {
	return IOSemaphore.Do(ctx, func() error {
		err := os.MkdirAll(filepath.Dir(name), 0755)
		if err != nil {
			return err
		}
		err = os.WriteFile(name, data, 0644)
		ofs.stats.Remove(filepath.Clean(name))
		return err
	})
}

func (ofs *OSFS) readDir(ctx context.Context, dir string) ([]fs.DirEntry, error) {
	var ents []fs.DirEntry
	err := IOSemaphore.Do(ctx, func() error {
		var err error
		ents, err = os.ReadDir(dir)
		return err
	})
	return ents, err
}

// ListFiles returns regular files directly in dir, sorted.
func (ofs *OSFS) ListFiles(ctx context.Context, dir string) ([]string, error) {
	ents, err := ofs.readDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range ents {
		if !ent.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, ent.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// ListDirectories returns the directories under root, sorted, excluding root.
// If recursive is false, only immediate subdirectories are returned.
// A directory whose base name satisfies prune is neither returned nor read.
//
// Failure to read root is returned. Failures to read subdirectories are
// logged as warnings and the subdirectory is treated as empty.
// Subdirectories of one level are read concurrently.
func (ofs *OSFS) ListDirectories(ctx context.Context, root string, recursive bool, prune func(name string) bool) ([]string, error) {
	if prune == nil {
		prune = func(string) bool { return false }
	}
	children := func(dir string, ents []fs.DirEntry) []string {
		var dirs []string
		for _, ent := range ents {
			if !ent.IsDir() || prune(ent.Name()) {
				continue
			}
			dirs = append(dirs, filepath.Join(dir, ent.Name()))
		}
		return dirs
	}
	ents, err := ofs.readDir(ctx, root)
	if err != nil {
		return nil, err
	}
	level := children(root, ents)
	result := append([]string(nil), level...)
	for recursive && len(level) > 0 {
		var mu sync.Mutex
		var next []string
		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(runtime.NumCPU())
		for _, dir := range level {
			eg.Go(func() error {
				ents, err := ofs.readDir(gctx, dir)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					ofs.logger.Warnf("failed to list directory %s: %v", dir, err)
					return nil
				}
				sub := children(dir, ents)
				mu.Lock()
				next = append(next, sub...)
				mu.Unlock()
				return nil
			})
		}
		err := eg.Wait()
		if err != nil {
			return nil, err
		}
		result = append(result, next...)
		level = next
	}
	slices.Sort(result)
	return result, nil
}
