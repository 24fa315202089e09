// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package osfs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fullname := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(fullname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fullname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestListDirectories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"a/x.txt":            "",
		"a/b/y.txt":          "",
		"a/b/c/z.txt":        "",
		".sonarqube/out/0/p": "",
		"d/.SONAR/q":         "",
		"root.txt":           "",
	})
	ofs := New(Option{})
	prune := func(name string) bool {
		return strings.EqualFold(name, ".sonarqube") || strings.EqualFold(name, ".sonar")
	}

	got, err := ofs.ListDirectories(ctx, dir, true, prune)
	if err != nil {
		t.Fatalf("ListDirectories(%q, true)=%v; want nil err", dir, err)
	}
	want := []string{
		filepath.Join(dir, "a"),
		filepath.Join(dir, "a/b"),
		filepath.Join(dir, "a/b/c"),
		filepath.Join(dir, "d"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDirectories(recursive) diff -want +got:\n%s", diff)
	}

	got, err = ofs.ListDirectories(ctx, dir, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{
		filepath.Join(dir, ".sonarqube"),
		filepath.Join(dir, "a"),
		filepath.Join(dir, "d"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDirectories(non-recursive) diff -want +got:\n%s", diff)
	}
}

func TestListDirectories_MissingRoot(t *testing.T) {
	ofs := New(Option{})
	_, err := ofs.ListDirectories(context.Background(), filepath.Join(t.TempDir(), "missing"), true, nil)
	if err == nil {
		t.Errorf("ListDirectories(missing)=nil; want err")
	}
}

func TestListDirectories_UnreadableSubdir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read any directory")
	}
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"ok/a.txt":       "",
		"locked/b/c.txt": "",
	})
	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var buf bytes.Buffer
	ofs := New(Option{Logger: log.New(&buf)})
	got, err := ofs.ListDirectories(ctx, dir, true, nil)
	if err != nil {
		t.Fatalf("ListDirectories=%v; want nil", err)
	}
	want := []string{locked, filepath.Join(dir, "ok")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListDirectories diff -want +got:\n%s", diff)
	}
	if !strings.Contains(buf.String(), "failed to list directory") {
		t.Errorf("log=%q; want warning for %s", buf.String(), locked)
	}
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"b.txt":     "",
		"a.txt":     "",
		"sub/c.txt": "",
	})
	ofs := New(Option{})
	got, err := ofs.ListFiles(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListFiles diff -want +got:\n%s", diff)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{"f.cs": "x"})
	ofs := New(Option{StatCacheSize: 2})
	f := filepath.Join(dir, "f.cs")
	if !ofs.FileExists(ctx, f) {
		t.Errorf("FileExists(%q)=false; want true", f)
	}
	if ofs.DirExists(ctx, f) {
		t.Errorf("DirExists(%q)=true; want false", f)
	}
	if !ofs.DirExists(ctx, dir) {
		t.Errorf("DirExists(%q)=false; want true", dir)
	}
	missing := filepath.Join(dir, "missing.cs")
	if ofs.FileExists(ctx, missing) {
		t.Errorf("FileExists(%q)=true; want false", missing)
	}
	if err := ofs.WriteFile(ctx, missing, []byte("y")); err != nil {
		t.Fatal(err)
	}
	if !ofs.FileExists(ctx, missing) {
		t.Errorf("FileExists(%q) after write=false; want true", missing)
	}
}

func TestStat_CanceledNotCached(t *testing.T) {
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{"f.cs": "x"})
	f := filepath.Join(dir, "f.cs")
	ofs := New(Option{})

	// hold the whole semaphore so the stat waits on the canceled context.
	var releases []func()
	for i := 0; i < IOSemaphore.Capacity(); i++ {
		release, err := IOSemaphore.WaitAcquire(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		releases = append(releases, release)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if ofs.FileExists(ctx, f) {
		t.Errorf("FileExists(%q) with canceled context=true; want false", f)
	}
	for _, release := range releases {
		release()
	}
	if !ofs.FileExists(context.Background(), f) {
		t.Errorf("FileExists(%q) after cancel=false; want true", f)
	}
}
