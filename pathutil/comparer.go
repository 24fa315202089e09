// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package pathutil provides path algebra used to bound an analysis:
// segment-wise ancestor tests and longest common ancestors, parameterized
// by a case-sensitivity policy.
package pathutil

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Comparer is the equality policy for path segments.
type Comparer interface {
	// Equal reports whether a and b name the same path segment.
	Equal(a, b string) bool
	// Compare orders a and b consistently with Equal.
	Compare(a, b string) int
	// Key returns a string such that Key(a) == Key(b) iff Equal(a, b).
	Key(s string) string
	// Name returns the policy name.
	Name() string
}

type ordinal struct{}

func (ordinal) Equal(a, b string) bool  { return a == b }
func (ordinal) Compare(a, b string) int { return strings.Compare(a, b) }
func (ordinal) Key(s string) string     { return s }
func (ordinal) Name() string            { return "ordinal" }
func (ordinal) String() string          { return "ordinal" }

// ignoreCase folds with a fresh Caser on every call;
// cases.Caser is stateful and must not be shared between goroutines.
type ignoreCase struct{}

func (c ignoreCase) Equal(a, b string) bool {
	if a == b {
		return true
	}
	return c.Key(a) == c.Key(b)
}

func (c ignoreCase) Compare(a, b string) int { return strings.Compare(c.Key(a), c.Key(b)) }
func (ignoreCase) Key(s string) string       { return cases.Fold().String(s) }
func (ignoreCase) Name() string              { return "ignorecase" }
func (ignoreCase) String() string            { return "ignorecase" }

var (
	// Ordinal compares segments byte-wise.
	Ordinal Comparer = ordinal{}
	// IgnoreCase compares segments after Unicode case folding.
	IgnoreCase Comparer = ignoreCase{}
)

// ForOS returns the comparer matching the default filesystem
// case-sensitivity of goos.
func ForOS(goos string) Comparer {
	switch goos {
	case "windows", "darwin", "ios":
		return IgnoreCase
	default:
		return Ordinal
	}
}

// ByName returns the comparer named name ("ordinal" or "ignorecase").
// An empty name selects ForOS(goos).
func ByName(name, goos string) (Comparer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return ForOS(goos), nil
	case "ordinal":
		return Ordinal, nil
	case "ignorecase", "ordinalignorecase":
		return IgnoreCase, nil
	}
	return nil, fmt.Errorf("unknown path comparison %q", name)
}
