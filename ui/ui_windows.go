// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows"
)

// savedMode is the console mode to put back on Restore; 0 if unchanged.
var savedMode uint32

// Init turns on ANSI sequence handling on the Windows console so status
// colors and the spinner render. It is a no-op when stdout is redirected.
func Init() {
	h := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		// not a console.
		return
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return
	}
	err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	if err != nil {
		log.Debugf("colors disabled: console mode not updated: %v", err)
		return
	}
	savedMode = mode
}

// Restore puts back the console mode changed by Init.
func Restore() {
	if savedMode == 0 {
		return
	}
	err := windows.SetConsoleMode(windows.Handle(os.Stdout.Fd()), savedMode)
	if err != nil {
		log.Debugf("console mode not restored: %v", err)
	}
	savedMode = 0
}
