// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplicationCommands(t *testing.T) {
	var got []string
	for _, c := range getApplication().Commands {
		got = append(got, c.Name())
	}
	want := []string{"generate", "version", "help"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands diff -want +got:\n%s", diff)
	}
}

func TestScannerMain_UnknownCommand(t *testing.T) {
	if code := scannerMain([]string{"no-such-command"}); code == 0 {
		t.Errorf("scannerMain(no-such-command)=0; want non-zero")
	}
}

func TestVCSInfo(t *testing.T) {
	got := vcsInfo(&debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "GOOS", Value: "linux"},
		},
	})
	if want := "vcs[revision=abc time= modified=true]"; got != want {
		t.Errorf("vcsInfo=%q; want %q", got, want)
	}
}
