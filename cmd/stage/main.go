// Package main is the entry point for the stage tool.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/cmd/stage/commands"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/core/domain"
	_ "go.trai.ch/stage/internal/wiring"
)

// Exit codes by error class.
const (
	exitOK          = 0
	exitFailure     = 1
	exitEnvironment = 2
	exitLookup      = 3
	exitIntegrity   = 4
	exitFormat      = 5
	exitApply       = 6
)

var exitClasses = []struct {
	code      int
	sentinels []error
}{
	{exitEnvironment, []error{domain.ErrOutputDirMissing, domain.ErrInputDirMissing, domain.ErrInvalidUsage}},
	{exitLookup, []error{
		domain.ErrUnknownLibrary, domain.ErrUnknownComponent, domain.ErrUnknownPackage,
		domain.ErrUnknownConfiguration, domain.ErrNotDownloadable,
	}},
	{exitIntegrity, []error{domain.ErrSizeMismatch, domain.ErrDigestMismatch, domain.ErrUnsupportedDigest}},
	{exitFormat, []error{
		domain.ErrMalformedHeader, domain.ErrMalformedHunk, domain.ErrHunkCountMismatch, domain.ErrHunkBeforeHeader,
	}},
	{exitApply, []error{domain.ErrHunkMismatch, domain.ErrPathEscapesRoot, domain.ErrPatchTargetMissing}},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return exitFailure
	}

	// 2. Interface - CLI
	cli := commands.New(components.App, components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(stdout)
	if rec, ok := components.Telemetry.(commands.ProgressRecorder); ok {
		cli.EnableProgress(rec, os.Stderr)
	}

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the exit code of its class.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	for _, class := range exitClasses {
		for _, sentinel := range class.sentinels {
			if errors.Is(err, sentinel) {
				return class.code
			}
		}
	}
	return exitFailure
}
