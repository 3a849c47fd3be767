// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for moodlog using Mage.
//
// Usage:
//
//	mage build        Compile the moodlog binary to bin/
//	mage install      Install moodlog to GOPATH/bin
//	mage clean        Remove build artifacts
//	mage lint         Run golangci-lint
//	mage test:all     Run every test with the race detector
//	mage test:unit    Run tests; accepts --run, --pkg and --cover
//	mage serve        Build and run the analyze endpoint
//	mage stats        Print Go LOC and documentation word counts
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "moodlog"
	binaryDir  = "bin"
	cmdDir     = "./cmd/moodlog"
	modulePath = "github.com/mesh-intelligence/moodlog"
)

// Build compiles the moodlog binary to bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := fmt.Sprintf("-X %s/internal/cli.Version=%s", modulePath, version())
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Serve builds moodlog and runs the analyze endpoint in the foreground.
// Arguments after the target are passed to "moodlog serve".
func Serve() error {
	mg.Deps(Build)
	args := append([]string{"serve"}, targetArgs...)
	return sh.RunV(filepath.Join(binaryDir, binaryName), args...)
}

// version describes HEAD, or "dev" outside a git checkout.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "dev"
	}
	return strings.TrimPrefix(out, "v")
}
