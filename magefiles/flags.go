// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// targetArgs holds the arguments that follow the mage target name. Mage
// itself only understands positional parameters, so init moves them out of
// os.Args before mage parses it and targets read them with a FlagSet.
//
//	mage test:unit --run TestStats --cover
//
// leaves os.Args as ["mage", "test:unit"] and targetArgs as
// ["--run", "TestStats", "--cover"].
var targetArgs []string

func init() {
	os.Args, targetArgs = splitTargetArgs(os.Args)
}

// splitTargetArgs cuts args after the first non-flag argument, which mage
// treats as the target. Everything before "--" or with no target is left
// alone.
func splitTargetArgs(args []string) (mageArgs, rest []string) {
	for i := 1; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if a != "" && a[0] != '-' {
			return args[:i+1], args[i+1:]
		}
	}
	return args, nil
}

// parseTargetFlags parses targetArgs into fs, exiting on --help or a bad
// flag the way a standalone command would.
func parseTargetFlags(fs *flag.FlagSet) {
	err := fs.Parse(targetArgs)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
