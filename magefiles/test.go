// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit).
type Test mg.Namespace

// All runs every test with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Unit runs tests, optionally narrowed.
//
//	mage test:unit --pkg ./internal/journal/... --run TestDelete --cover
func (Test) Unit() error {
	fs := flag.NewFlagSet("test:unit", flag.ContinueOnError)
	pkg := fs.String("pkg", "./...", "package pattern to test")
	run := fs.String("run", "", "only run tests matching this regexp")
	cover := fs.Bool("cover", false, "report coverage")
	parseTargetFlags(fs)

	args := []string{"test"}
	if *run != "" {
		args = append(args, "-run", *run)
	}
	if *cover {
		args = append(args, "-cover")
	}
	args = append(args, strings.Fields(*pkg)...)
	return sh.RunV(binGo, args...)
}
