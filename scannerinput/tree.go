// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scannerinput serializes the consolidated analysis model into
// the legacy properties text and the structured payload consumed by
// the analysis engine.
package scannerinput

import (
	"slices"
)

// ModulesKey lists the identifiers of all analyzed projects.
const ModulesKey = "sonar.modules"

// Property is one property of the tree.
type Property struct {
	Key string
	// Values holds one value for single-valued properties.
	Values []string
	// Multi marks file-list properties.
	Multi bool
}

// Tree is an immutable ordered set of properties.
type Tree struct {
	props   []Property
	modules []string
}

// Properties returns a copy of the properties in order, without the modules marker.
func (t *Tree) Properties() []Property {
	props := make([]Property, len(t.props))
	for i, p := range t.props {
		props[i] = Property{Key: p.Key, Values: slices.Clone(p.Values), Multi: p.Multi}
	}
	return props
}

// Modules returns the identifiers listed in the modules marker.
func (t *Tree) Modules() []string {
	return slices.Clone(t.modules)
}

// Writer accumulates properties until it is flushed.
// A Writer can be flushed only once; any use after Flush panics.
type Writer struct {
	props   []Property
	index   map[string]int
	modules []string
	flushed bool
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{index: make(map[string]int)}
}

func (w *Writer) checkOpen(op string) {
	if w.flushed {
		panic("scannerinput: " + op + " after Flush")
	}
}

func (w *Writer) put(p Property) {
	if i, ok := w.index[p.Key]; ok {
		w.props[i] = p
		return
	}
	w.index[p.Key] = len(w.props)
	w.props = append(w.props, p)
}

// Set sets a single-valued property. Setting a key again replaces its
// value and keeps its position.
func (w *Writer) Set(key, value string) {
	w.checkOpen("Set")
	w.put(Property{Key: key, Values: []string{value}})
}

// SetList sets a multi-valued property. Empty lists are not written.
func (w *Writer) SetList(key string, values []string) {
	w.checkOpen("SetList")
	if len(values) == 0 {
		return
	}
	w.put(Property{Key: key, Values: slices.Clone(values), Multi: true})
}

// Has reports whether key has been set.
func (w *Writer) Has(key string) bool {
	_, ok := w.index[key]
	return ok
}

// AddModule adds a project identifier to the modules marker.
func (w *Writer) AddModule(id string) {
	w.checkOpen("AddModule")
	w.modules = append(w.modules, id)
}

// Flush finalizes the writer and returns the tree.
func (w *Writer) Flush() *Tree {
	w.checkOpen("Flush")
	w.flushed = true
	return &Tree{props: w.props, modules: w.modules}
}
