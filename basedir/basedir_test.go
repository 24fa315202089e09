// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package basedir

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/pathutil"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
)

func dirExists(ctx context.Context, dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}

func countLevel(logs, level string) int {
	n := 0
	for _, line := range strings.Split(logs, "\n") {
		if strings.HasPrefix(line, level) {
			n++
		}
	}
	return n
}

func TestResolve_Override(t *testing.T) {
	ctx := context.Background()
	local := t.TempDir()
	env := t.TempDir()
	server := t.TempDir()
	wd := t.TempDir()
	if err := os.Mkdir(filepath.Join(wd, "rel"), 0755); err != nil {
		t.Fatal(err)
	}
	dirs := []string{"/work/A", "/work/B"}

	for _, tc := range []struct {
		name   string
		source config.Source
		want   string
	}{
		{
			name: "local wins",
			source: config.Source{
				Local:       config.Properties{config.ProjectBaseDir: local},
				Environment: config.Properties{config.ProjectBaseDir: env},
				Server:      config.Properties{config.ProjectBaseDir: server},
			},
			want: local,
		},
		{
			name: "environment over server",
			source: config.Source{
				Environment: config.Properties{config.ProjectBaseDir: env},
				Server:      config.Properties{config.ProjectBaseDir: server},
			},
			want: env,
		},
		{
			name:   "server",
			source: config.Source{Server: config.Properties{config.ProjectBaseDir: server}},
			want:   server,
		},
		{
			name:   "relative",
			source: config.Source{Local: config.Properties{config.ProjectBaseDir: "rel"}},
			want:   filepath.Join(wd, "rel"),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			got, err := Resolve(ctx, dirs, Options{
				Source:     tc.source,
				WorkingDir: "/work",
				DirExists:  dirExists,
				Getwd:      func() (string, error) { return wd, nil },
				Logger:     log.New(&buf),
			})
			if err != nil {
				t.Fatalf("Resolve=%v; want nil", err)
			}
			if got.Dir != pathutil.Clean(tc.want) || got.Provenance != UserSupplied {
				t.Errorf("Resolve=%+v; want %s user supplied", got, tc.want)
			}
			if n := strings.Count(buf.String(), semanticsMessage); n != 1 {
				t.Errorf("semantics message logged %d times; want 1", n)
			}
		})
	}
}

func TestResolve_OverrideMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := Resolve(context.Background(), []string{"/work/A"}, Options{
		Source:    config.Source{Local: config.Properties{config.ProjectBaseDir: missing}},
		DirExists: dirExists,
		Logger:    log.New(&bytes.Buffer{}),
	})
	if !errors.Is(err, ErrBaseDirNotFound) {
		t.Errorf("Resolve=%v; want %v", err, ErrBaseDirNotFound)
	}
}

func TestResolve_WorkingDirectory(t *testing.T) {
	ctx := context.Background()
	opts := Options{
		WorkingDir: "/work/",
		DirExists:  dirExists,
		Logger:     log.New(&bytes.Buffer{}),
	}
	got, err := Resolve(ctx, []string{"/work/src/A", "/work/src/B"}, opts)
	if err != nil || got.Dir != "/work" || got.Provenance != WorkingDirectory {
		t.Errorf("Resolve=%+v, %v; want /work working directory", got, err)
	}

	got, err = Resolve(ctx, []string{"/work/src/A", "/elsewhere/B"}, opts)
	if err != nil || got.Dir != "/" || got.Provenance != CommonPrefix {
		t.Errorf("Resolve=%+v, %v; want / common prefix", got, err)
	}
}

func TestResolve_CommonPrefix(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		dirs []string
		c    pathutil.Comparer
		want string
	}{
		{name: "siblings", dirs: []string{"/work/A", "/work/B"}, c: pathutil.Ordinal, want: "/work"},
		{name: "single", dirs: []string{"/work/A/"}, c: pathutil.Ordinal, want: "/work/A"},
		{name: "duplicates", dirs: []string{"/work/A", "/work/A"}, c: pathutil.Ordinal, want: "/work/A"},
		{name: "ignore case", dirs: []string{"/Work/A", "/work/B"}, c: pathutil.IgnoreCase, want: "/Work"},
		{name: "windows", dirs: []string{`C:\src\A`, `C:\src\B\C`}, c: pathutil.IgnoreCase, want: `C:\src`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			got, err := Resolve(ctx, tc.dirs, Options{Comparer: tc.c, DirExists: dirExists, Logger: log.New(&buf)})
			if err != nil || got.Dir != tc.want || got.Provenance != CommonPrefix {
				t.Errorf("Resolve(%q)=%+v, %v; want %s", tc.dirs, got, err, tc.want)
			}
			if n := strings.Count(buf.String(), semanticsMessage); n != 1 {
				t.Errorf("semantics message logged %d times; want 1", n)
			}
			if n := countLevel(buf.String(), "WARN"); n != 0 {
				t.Errorf("warnings=%d; want 0\n%s", n, buf.String())
			}
		})
	}
}

func TestResolve_FilesystemRoot(t *testing.T) {
	var buf bytes.Buffer
	got, err := Resolve(context.Background(), []string{"/work/A", "/other/B"}, Options{DirExists: dirExists, Logger: log.New(&buf)})
	if err != nil || got.Dir != "/" {
		t.Fatalf("Resolve=%+v, %v; want /", got, err)
	}
	if n := countLevel(buf.String(), "WARN"); n != 2 {
		t.Errorf("warnings=%d; want 2\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "/other/B") {
		t.Errorf("log does not name /other/B:\n%s", buf.String())
	}
}

func TestResolve_NoCommonRoot(t *testing.T) {
	var buf bytes.Buffer
	_, err := Resolve(context.Background(), []string{`C:\src\A`, `D:\src\B`}, Options{
		Comparer:  pathutil.IgnoreCase,
		DirExists: dirExists,
		Logger:    log.New(&buf),
	})
	if !errors.Is(err, ErrNoBaseDir) {
		t.Errorf("Resolve=%v; want %v", err, ErrNoBaseDir)
	}
	if strings.Contains(buf.String(), semanticsMessage) {
		t.Errorf("semantics message logged on failure")
	}
	if n := countLevel(buf.String(), "WARN"); n != 2 {
		t.Errorf("warnings=%d; want 2\n%s", n, buf.String())
	}
}

func TestRestrict(t *testing.T) {
	records := []*project.Record{
		{ID: "A", Dir: "/work/A", Status: project.Valid, Files: []string{"/work/A/a.cs"}},
		{ID: "B", Dir: "/other/B", Status: project.Valid, Files: []string{"/other/B/b.cs"}},
		{ID: "C", Dir: "/other/C", Status: project.ProjectNotFound},
	}
	var buf bytes.Buffer
	err := Restrict(Root{Dir: "/work", Provenance: UserSupplied}, records, pathutil.Ordinal, log.New(&buf))
	if err != nil {
		t.Fatalf("Restrict=%v; want nil", err)
	}
	if records[0].Status != project.Valid {
		t.Errorf("A status=%s; want Valid", records[0].Status)
	}
	if records[1].Status != project.OutsideBaseDir || records[1].Files != nil {
		t.Errorf("B=%s %q; want OutsideBaseDir without files", records[1].Status, records[1].Files)
	}
	if records[2].Status != project.ProjectNotFound {
		t.Errorf("C status=%s; want unchanged", records[2].Status)
	}
	if n := countLevel(buf.String(), "WARN"); n != 1 || !strings.Contains(buf.String(), "/other/B") || !strings.Contains(buf.String(), `"/work"`) {
		t.Errorf("warnings=%d; want 1 naming /other/B and /work\n%s", n, buf.String())
	}
	if diff := ProjectDirs(records); len(diff) != 1 || diff[0] != "/work/A" {
		t.Errorf("ProjectDirs=%q; want [/work/A]", diff)
	}

	err = Restrict(Root{Dir: "/nowhere"}, records, pathutil.Ordinal, log.New(&buf))
	if !errors.Is(err, ErrNoProjectsUnderBaseDir) {
		t.Errorf("Restrict=%v; want %v", err, ErrNoProjectsUnderBaseDir)
	}
}
