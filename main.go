// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// scanner-input generates the analysis input of a multi-project build
// from the project descriptors written during the build.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/subcmd/generate"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/subcmd/help"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/subcmd/version"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/ui"
)

const appName = "scanner-input"

const versionStr = appName + " v1.0.0"

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  appName,
		Title: "Analysis input generator for multi-project builds",
		Context: func(ctx context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			generate.Cmd(),
			version.Cmd(versionStr),
			help.Cmd(),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"SONARQUBE_SCANNER_PARAMS": {
				ShortDesc: "JSON object of scanner properties set by the CI environment",
			},
		},
	}
}

func main() {
	os.Exit(scannerMain(os.Args[1:]))
}

func scannerMain(args []string) (exitCode int) {
	ui.Init()
	defer ui.Restore()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Errorf("panic: %v\n%s", r, buf)
			exitCode = 1
		}
	}()

	if buildinfo, ok := debug.ReadBuildInfo(); ok {
		log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
	}
	return subcommands.Run(getApplication(), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
