// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLookup(t *testing.T) {
	s := Source{
		Local:       Properties{"a": "local", "blank": "  "},
		Environment: Properties{"a": "env", "b": "env", "blank": "env"},
		Server:      Properties{"a": "server", "b": "server", "c": "server"},
	}
	for _, tc := range []struct {
		key       string
		want      string
		wantLayer Layer
		wantOK    bool
	}{
		{key: "a", want: "local", wantLayer: LocalLayer, wantOK: true},
		{key: "b", want: "env", wantLayer: EnvironmentLayer, wantOK: true},
		{key: "c", want: "server", wantLayer: ServerLayer, wantOK: true},
		{key: "blank", want: "env", wantLayer: EnvironmentLayer, wantOK: true},
		{key: "missing", wantLayer: NoLayer},
	} {
		got, layer, ok := s.Lookup(tc.key)
		assert.Equal(t, tc.want, got, "Lookup(%q)", tc.key)
		assert.Equal(t, tc.wantLayer, layer, "Lookup(%q) layer", tc.key)
		assert.Equal(t, tc.wantOK, ok, "Lookup(%q) ok", tc.key)
	}
	assert.Equal(t, "def", s.Get("missing", "def"))
	assert.Equal(t, Properties{"a": "local", "b": "env", "c": "server", "blank": "  "}, s.Merged())
}

func TestScanAllFiles(t *testing.T) {
	for _, tc := range []struct {
		name   string
		local  Properties
		server Properties
		want   bool
	}{
		{name: "default", want: true},
		{name: "local off", local: Properties{ScanAll: "false"}, want: false},
		{name: "server off", server: Properties{ScanAll: "False"}, want: false},
		{name: "local overrides server", local: Properties{ScanAll: "true"}, server: Properties{ScanAll: "false"}, want: true},
		{name: "garbage", local: Properties{ScanAll: "nope"}, want: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &AnalysisConfig{LocalSettings: tc.local, ServerSettings: tc.server}
			assert.Equal(t, tc.want, c.ScanAllFiles())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "analysis.yaml")
	require.NoError(t, os.WriteFile(fname, []byte(`
outputDir: .sonarqube/out
projectKey: my_key
serverUrl: https://sonar.example.com
serverVersion: "10.4.1.88267"
localSettings:
  sonar.verbose: "true"
serverSettings:
  sonar.yaml.file.suffixes: .yaml,.yml
`), 0644))

	c, err := Load(fname)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".sonarqube/out"), c.OutputDir)
	assert.Equal(t, "my_key", c.ProjectName)
	assert.Equal(t, "10.4.1.88267", c.ServerVersion)
	assert.Equal(t, "true", c.LocalSettings[Verbose])
	assert.Equal(t, ".yaml,.yml", c.Source().Get("sonar.yaml.file.suffixes", ""))
	assert.NotNil(t, c.EnvironmentSettings)
	assert.NoError(t, c.Check())

	_, err = Parse([]byte("outputDir: [unclosed"), dir)
	assert.Error(t, err)
	assert.Error(t, (&AnalysisConfig{OutputDir: "x"}).Check())
}

func TestEnvironmentProperties(t *testing.T) {
	env := map[string]string{
		ScannerParamsEnv: `{"sonar.projectBaseDir":"/work","sonar.verbose":true,"nothing":null}`,
	}
	props, err := EnvironmentProperties(func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, Properties{"sonar.projectBaseDir": "/work", "sonar.verbose": "true"}, props)

	props, err = EnvironmentProperties(func(string) string { return "" })
	require.NoError(t, err)
	assert.Empty(t, props)

	env[ScannerParamsEnv] = "{not json"
	_, err = EnvironmentProperties(func(k string) string { return env[k] })
	assert.Error(t, err)
}

func TestWithEnvFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(fname, []byte("FROM_FILE=file\nBOTH=file\n"), 0644))
	process := map[string]string{"BOTH": "process"}
	getenv, err := WithEnvFile(func(k string) string { return process[k] }, fname)
	require.NoError(t, err)
	assert.Equal(t, "file", getenv("FROM_FILE"))
	assert.Equal(t, "process", getenv("BOTH"))
	assert.Equal(t, "", getenv("UNSET"))

	_, err = WithEnvFile(getenv, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
