// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EngineProperty is one entry of the engine payload.
type EngineProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EngineInput is the structured payload of the analysis engine.
type EngineInput struct {
	ScannerProperties []EngineProperty `json:"scannerProperties"`
}

// Engine returns the engine payload of t. The modules marker is first,
// multi-values are comma-joined and sensitive keys are kept.
func (t *Tree) Engine() EngineInput {
	in := EngineInput{ScannerProperties: []EngineProperty{}}
	if len(t.modules) > 0 {
		in.ScannerProperties = append(in.ScannerProperties, EngineProperty{
			Key:   ModulesKey,
			Value: strings.Join(t.modules, ","),
		})
	}
	for _, p := range t.props {
		if IsOmitted(p.Key) {
			continue
		}
		in.ScannerProperties = append(in.ScannerProperties, EngineProperty{
			Key:   p.Key,
			Value: strings.Join(p.Values, ","),
		})
	}
	return in
}

// EngineJSON renders the engine payload of t as JSON.
func (t *Tree) EngineJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(t.Engine())
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
