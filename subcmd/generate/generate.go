// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package generate is generate subcommand to produce the analysis input
// from the project descriptors written by the build.
package generate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"github.com/SonarSource/sonar-scanner-msbuild-sub000/config"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/descriptor"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/generator"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/osfs"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/project"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/sarif"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/sync/semaphore"
	"github.com/SonarSource/sonar-scanner-msbuild-sub000/ui"
)

const usage = `generate the analysis input.

 $ scanner-input generate -config analysis.yaml [-env_file .env]

Reads the project descriptors (ProjectInfo.xml) under the output directory
(or -descriptors), writes <outputDir>/sonar-project.properties and exits
with 0 if the analysis input was generated.
`

// Cmd returns the Command for the `generate` subcommand.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "generate -config <file> [-env_file <file>] [-no_sarif_repair] [-v]",
		ShortDesc: "generate the analysis input",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	configFile     string
	envFile        string
	descriptorsDir string
	verbose        bool
	printPayload   bool
	noSARIFRepair  bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.configFile, "config", "", "analysis config file (YAML)")
	c.Flags.StringVar(&c.envFile, "env_file", "", "dotenv file supplying "+config.ScannerParamsEnv)
	c.Flags.StringVar(&c.descriptorsDir, "descriptors", "", "directory to find project descriptors. default to the config's outputDir")
	c.Flags.BoolVar(&c.verbose, "v", false, "verbose logging")
	c.Flags.BoolVar(&c.printPayload, "print_payload", false, "print the engine input to stdout")
	c.Flags.BoolVar(&c.noSARIFRepair, "no_sarif_repair", false, "pass analyzer reports through without repairing them")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	logger := log.NewWithOptions(a.GetErr(), log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if c.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	res, err := c.run(ctx, logger)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		return 2
	}
	if res != nil {
		printStatus(ui.Default, res.Records)
	}
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	if c.printPayload {
		a.GetOut().Write(res.EnginePayload)
	}
	return 0
}

func (c *run) run(ctx context.Context, logger *log.Logger) (*generator.Result, error) {
	if c.configFile == "" {
		return nil, fmt.Errorf("-config is required: %w", flag.ErrHelp)
	}
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	err = cfg.Check()
	if err != nil {
		return nil, fmt.Errorf("bad config %s: %w", c.configFile, err)
	}
	getenv, err := config.WithEnvFile(os.Getenv, c.envFile)
	if err != nil {
		return nil, err
	}
	cfg.EnvironmentSettings, err = config.EnvironmentProperties(getenv)
	if err != nil {
		return nil, err
	}

	fsys := osfs.New(osfs.Option{Logger: logger})
	dir := c.descriptorsDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	spin := ui.Default.NewSpinner()
	spin.Start("loading project descriptors in %s", dir)
	descs, err := descriptor.Find(ctx, fsys, dir, logger)
	if err != nil {
		spin.Stop(err)
		return nil, err
	}
	spin.Done("%d descriptors", len(descs))

	g := &generator.Generator{
		FS:     fsys,
		Logger: logger,
	}
	if c.noSARIFRepair {
		g.Fixer = sarif.Passthrough{FS: fsys}
	}
	spin = ui.Default.NewSpinner()
	spin.Start("generating analysis input")
	res, err := g.Generate(ctx, cfg, descs)
	logSemaphoreStats(logger, osfs.IOSemaphoreName)
	if err != nil {
		spin.Stop(err)
		return res, err
	}
	spin.Done("%s", res.FullPropertiesFilePath)
	return res, nil
}

// logSemaphoreStats logs usage of the named semaphore at debug level.
func logSemaphoreStats(logger *log.Logger, name string) {
	s, err := semaphore.Lookup(name)
	if err != nil {
		logger.Debugf("%v", err)
		return
	}
	logger.Debugf("semaphore %s: capacity=%d serving=%d waiting=%d requests=%d",
		s.Name(), s.Capacity(), s.NumServs(), s.NumWaits(), s.NumRequests())
}

// printStatus prints one line per project with its status.
func printStatus(u ui.UI, records []*project.Record) {
	if len(records) == 0 {
		return
	}
	lines := []string{fmt.Sprintf("%-18s %-36s %s", "STATUS", "PROJECT", "PATH")}
	for _, r := range records {
		status := r.Status.String()
		switch r.Status {
		case project.Valid:
			status = ui.SGR(ui.Green, fmt.Sprintf("%-18s", status))
		default:
			status = ui.SGR(ui.Yellow, fmt.Sprintf("%-18s", status))
		}
		lines = append(lines, fmt.Sprintf("%s %-36s %s", status, r.ID, r.FullPath))
	}
	u.PrintLines(lines...)
}
