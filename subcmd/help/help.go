// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

const longDesc = `Prints the available commands and the flags common to all of them,
or the usage of one command.

 $ scanner-input help
 $ scanner-input help generate`

// Cmd returns the Command for the `help` subcommand.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>]",
		ShortDesc: "prints help about a command",
		LongDesc:  longDesc,
		CommandRun: func() subcommands.CommandRun {
			return &run{}
		},
	}
}

type run struct {
	subcommands.CommandRunBase
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	w := a.GetOut()
	subcommands.Usage(w, a, true)
	fmt.Fprintln(w, "Flags accepted by every command:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	return 0
}
