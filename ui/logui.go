// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type logSpinner struct {
	logger  *log.Logger
	started time.Time
	msg     string
}

// Start logs the start of the stage.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	l.msg = fmt.Sprintf(format, args...)
	l.logger.Info(l.msg)
}

// Stop logs how long the stage took, or its error.
func (l *logSpinner) Stop(err error) {
	if err != nil {
		l.logger.Warnf("-> %s failed %s %v", l.msg, FormatDuration(time.Since(l.started)), err)
		return
	}
	l.logger.Infof("-> %s done %s", l.msg, FormatDuration(time.Since(l.started)))
}

// Done logs the result of the stage.
func (l *logSpinner) Done(format string, args ...any) {
	l.logger.Infof("-> %s %s %s", l.msg, fmt.Sprintf(format, args...), FormatDuration(time.Since(l.started)))
}

// LogUI is a log-based UI.
type LogUI struct {
	Logger *log.Logger
}

func (u *LogUI) logger() *log.Logger {
	if u.Logger == nil {
		return log.Default()
	}
	return u.Logger
}

// PrintLines logs each line, stripping ansi escape sequence.
func (u *LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		if msg == "" || msg == "\n" {
			continue
		}
		u.logger().Info(StripANSIEscapeCodes(msg))
	}
}

// NewSpinner returns a log-based spinner.
func (u *LogUI) NewSpinner() Spinner {
	return &logSpinner{logger: u.logger()}
}
