// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package pathutil

// ExpandShortName returns path as is. Short names only exist on Windows.
func ExpandShortName(path string) string {
	return path
}
