// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"strings"

	"github.com/hashicorp/go-version"
)

// escapingVersion is the first server version parsing quoted multi-values.
var escapingVersion = version.Must(version.NewVersion("9.9"))

// SupportsEscaping reports whether the server version is known and
// parses quoted, escaped multi-values. Qualifiers such as "-SNAPSHOT"
// are ignored.
func SupportsEscaping(serverVersion string) bool {
	v, err := version.NewVersion(strings.TrimSpace(serverVersion))
	if err != nil {
		return false
	}
	return v.Core().GreaterThanOrEqual(escapingVersion)
}
