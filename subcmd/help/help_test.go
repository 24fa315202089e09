// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package help

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/maruel/subcommands"
)

type app struct {
	subcommands.DefaultApplication
	out bytes.Buffer
}

func (a *app) GetOut() io.Writer { return &a.out }

func TestRun_Usage(t *testing.T) {
	a := &app{}
	a.Name = "scanner-input"
	a.Commands = []*subcommands.Command{Cmd()}
	if code := Cmd().CommandRun().Run(a, nil, nil); code != 0 {
		t.Errorf("Run()=%d; want 0", code)
	}
	got := a.out.String()
	for _, want := range []string{"help", "Flags accepted by every command:"} {
		if !strings.Contains(got, want) {
			t.Errorf("usage=%q; want to contain %q", got, want)
		}
	}
}
