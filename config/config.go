// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides the analysis configuration and the layered
// property sources (local, environment, server) it is resolved from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known property keys.
const (
	ProjectBaseDir   = "sonar.projectBaseDir"
	ScanAll          = "sonar.scanner.scanAll"
	HostURL          = "sonar.host.url"
	SonarcloudURL    = "sonar.scanner.sonarcloudUrl"
	Verbose          = "sonar.verbose"
	TruststorePath   = "sonar.scanner.truststorePath"
	Login            = "sonar.login"
	Password         = "sonar.password"
	Token            = "sonar.token"
	ClientCertPass   = "sonar.clientcert.password"
	TruststorePass   = "sonar.scanner.truststorePassword"
	WorkingDirectory = "sonar.working.directory"
)

// Properties is a flat string-keyed property map.
type Properties map[string]string

// Keys returns the keys of p in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Layer names where a property value came from.
type Layer int

const (
	// NoLayer means the property is not set.
	NoLayer Layer = iota
	// LocalLayer is the local (command line / config file) settings.
	LocalLayer
	// EnvironmentLayer is the scanner environment variable.
	EnvironmentLayer
	// ServerLayer is the settings downloaded from the server.
	ServerLayer
)

func (l Layer) String() string {
	switch l {
	case LocalLayer:
		return "local"
	case EnvironmentLayer:
		return "environment"
	case ServerLayer:
		return "server"
	}
	return "none"
}

// Source is the layered set of properties.
// Precedence is local > environment > server.
type Source struct {
	Local       Properties
	Environment Properties
	Server      Properties
}

func (s Source) layers() []struct {
	layer Layer
	props Properties
} {
	return []struct {
		layer Layer
		props Properties
	}{
		{LocalLayer, s.Local},
		{EnvironmentLayer, s.Environment},
		{ServerLayer, s.Server},
	}
}

// Lookup returns the first non-blank value of key and the layer it came from.
func (s Source) Lookup(key string) (string, Layer, bool) {
	for _, l := range s.layers() {
		v, ok := l.props[key]
		if ok && strings.TrimSpace(v) != "" {
			return v, l.layer, true
		}
	}
	return "", NoLayer, false
}

// Get returns the value of key, or def if unset.
func (s Source) Get(key, def string) string {
	v, _, ok := s.Lookup(key)
	if !ok {
		return def
	}
	return v
}

// Merged returns all properties with higher-precedence layers winning.
func (s Source) Merged() Properties {
	m := Properties{}
	for _, p := range []Properties{s.Server, s.Environment, s.Local} {
		for k, v := range p {
			m[k] = v
		}
	}
	return m
}

// AnalysisConfig is the configuration of one analysis run.
type AnalysisConfig struct {
	// OutputDir is where the legacy properties file is written,
	// and where build descriptors are looked up by default.
	OutputDir      string `yaml:"outputDir"`
	ProjectKey     string `yaml:"projectKey"`
	ProjectName    string `yaml:"projectName"`
	ProjectVersion string `yaml:"projectVersion"`

	// ServerURL is the host URL inferred when the run was configured.
	// An explicit sonar.host.url setting overrides it.
	ServerURL string `yaml:"serverUrl"`
	// ServerVersion is the version of the server, if known.
	ServerVersion string `yaml:"serverVersion"`

	// WorkingDir is the configured working directory, if any.
	WorkingDir string `yaml:"workingDirectory"`
	// PathComparison is "ordinal", "ignorecase" or empty for the platform default.
	PathComparison string `yaml:"pathComparison"`

	LocalSettings  Properties `yaml:"localSettings"`
	ServerSettings Properties `yaml:"serverSettings"`

	// EnvironmentSettings is filled from the scanner environment variable.
	EnvironmentSettings Properties `yaml:"-"`
}

// Source returns the layered properties of the config.
func (c *AnalysisConfig) Source() Source {
	return Source{
		Local:       c.LocalSettings,
		Environment: c.EnvironmentSettings,
		Server:      c.ServerSettings,
	}
}

// ScanAllFiles reports whether files not referenced by the build
// are classified. Local settings override server settings.
func (c *AnalysisConfig) ScanAllFiles() bool {
	s := Source{Local: c.LocalSettings, Server: c.ServerSettings}
	v, _, ok := s.Lookup(ScanAll)
	if !ok {
		return true
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return true
	}
	return b
}

// Check checks the config is usable.
func (c *AnalysisConfig) Check() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir is not set")
	}
	if c.ProjectKey == "" {
		return fmt.Errorf("projectKey is not set")
	}
	return nil
}

// Parse parses a YAML config. Relative outputDir is resolved against baseDir.
func Parse(buf []byte, baseDir string) (*AnalysisConfig, error) {
	c := &AnalysisConfig{}
	err := yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, err
	}
	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(baseDir, c.OutputDir)
	}
	if c.ProjectName == "" {
		c.ProjectName = c.ProjectKey
	}
	if c.LocalSettings == nil {
		c.LocalSettings = Properties{}
	}
	if c.ServerSettings == nil {
		c.ServerSettings = Properties{}
	}
	if c.EnvironmentSettings == nil {
		c.EnvironmentSettings = Properties{}
	}
	return c, nil
}

// Load loads a YAML config file.
func Load(fname string) (*AnalysisConfig, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	c, err := Parse(buf, filepath.Dir(fname))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fname, err)
	}
	return c, nil
}
