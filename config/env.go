// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// ScannerParamsEnv is the environment variable holding a JSON object
// of scanner properties set by the surrounding CI environment.
const ScannerParamsEnv = "SONARQUBE_SCANNER_PARAMS"

// Getenv looks up an environment variable.
type Getenv func(key string) string

// WithEnvFile returns getenv that falls back to values from a dotenv file.
// Variables set in the process environment win.
func WithEnvFile(getenv Getenv, fname string) (Getenv, error) {
	if fname == "" {
		return getenv, nil
	}
	vars, err := godotenv.Read(fname)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", fname, err)
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vars[key]
	}, nil
}

// EnvironmentProperties parses the scanner params environment variable.
// An unset variable yields empty properties.
func EnvironmentProperties(getenv Getenv) (Properties, error) {
	v := strings.TrimSpace(getenv(ScannerParamsEnv))
	if v == "" {
		return Properties{}, nil
	}
	var raw map[string]any
	err := json.Unmarshal([]byte(v), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ScannerParamsEnv, err)
	}
	props := Properties{}
	for k, val := range raw {
		switch val := val.(type) {
		case string:
			props[k] = val
		case nil:
		default:
			props[k] = fmt.Sprint(val)
		}
	}
	return props, nil
}
