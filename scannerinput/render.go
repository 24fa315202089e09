// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Output is the rendered analysis input.
type Output struct {
	Legacy []byte
	Engine []byte
}

// Render renders t in both formats. Multi-values dropped from the legacy
// text are logged as warnings.
func Render(t *Tree, serverVersion string, logger *log.Logger) (Output, error) {
	legacy, dropped := t.Legacy(SupportsEscaping(serverVersion))
	if len(dropped) > 0 {
		logger.Warnf("The following paths contain invalid characters and will be excluded from this analysis: %s", strings.Join(dropped, ", "))
	}
	engine, err := t.EngineJSON()
	if err != nil {
		return Output{}, err
	}
	return Output{Legacy: legacy, Engine: engine}, nil
}
