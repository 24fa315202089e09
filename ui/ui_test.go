// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestStripANSIEscapeCodes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{
			in:   "foo\033",
			want: "foo",
		},
		{
			in:   "foo\033[",
			want: "foo",
		},
		{
			in:   "\033[33mNoFilesToAnalyze\033[0m " + "{6f1c1a2e}",
			want: "NoFilesToAnalyze {6f1c1a2e}",
		},
	} {
		got := StripANSIEscapeCodes(tc.in)
		if got != tc.want {
			t.Errorf("StripANSIEscapeCodes(%q)=%q; want=%q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "Valid /work/A",
			width: 80,
			want:  "Valid /work/A",
		},
		{
			msg:   "Valid /work/some/long/project/directory",
			width: 16,
			want:  "Valid /work/...",
		},
		{
			msg:   "\033[32mValid\033[0m /work/some/long/project/directory",
			width: 16,
			want:  "\033[32mValid\033[0m /work/...",
		},
		{
			msg:   "anything",
			width: 0,
			want:  "anything",
		},
	} {
		got := truncate(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("truncate(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}

func TestLogUI(t *testing.T) {
	var buf bytes.Buffer
	u := &LogUI{Logger: log.New(&buf)}
	u.PrintLines("\033[1mheader\033[0m", "", "row")
	s := u.NewSpinner()
	s.Start("merging %d descriptors", 3)
	s.Stop(errors.New("boom"))

	got := buf.String()
	for _, want := range []string{"INFO header", "INFO row", "INFO merging 3 descriptors", "WARN -> merging 3 descriptors failed", "boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("log=%q; want to contain %q", got, want)
		}
	}
	if strings.Contains(got, "\033") {
		t.Errorf("log=%q; want no escape sequences", got)
	}
}
