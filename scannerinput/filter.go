// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"strings"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
)

// omitted keys are consumed before the engine runs and never serialized.
var omitted = []string{config.Verbose, config.TruststorePath}

// sensitive keys are never written to the legacy text, which may be persisted.
var sensitive = []string{
	config.Login,
	config.Password,
	config.Token,
	config.ClientCertPass,
	config.TruststorePass,
}

// IsOmitted reports whether key is never serialized.
func IsOmitted(key string) bool {
	return matchKey(omitted, key)
}

// IsSensitive reports whether key holds a secret.
// Project-scoped keys ("<id>.sonar.token") are sensitive too.
func IsSensitive(key string) bool {
	return matchKey(sensitive, key)
}

func matchKey(keys []string, key string) bool {
	for _, k := range keys {
		if key == k || strings.HasSuffix(key, "."+k) {
			return true
		}
	}
	return false
}
