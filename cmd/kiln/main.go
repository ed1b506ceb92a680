// Package main is the entry point for the kiln package builder.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	_ "go.trai.ch/kiln/internal/wiring"
)

// Exit codes reported by the kiln binary.
const (
	exitOK            = 0
	exitInternal      = 1
	exitConfiguration = 2
	exitPhaseFailed   = 3
	exitVerifyFailed  = 4
	exitVerifySkipped = 5
)

func main() {
	os.Exit(run())
}

func run(opts ...func(*app.App)) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return exitInternal
	}
	defer func() {
		_ = components.Telemetry.Close()
	}()

	// Apply options
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App, components.Console)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		code := exitCode(err)
		if code != exitVerifySkipped {
			components.Logger.Error(err)
		}
		return code
	}
	return exitOK
}

// exitCode maps an error returned by a command to the process exit code.
// Verification outcomes are checked first because a consumer that failed to
// build also carries a phase failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrVerificationSkipped):
		return exitVerifySkipped
	case errors.Is(err, domain.ErrVerificationFailed):
		return exitVerifyFailed
	case domain.IsConfigurationError(err):
		return exitConfiguration
	case errors.Is(err, domain.ErrPhaseFailed):
		return exitPhaseFailed
	default:
		return exitInternal
	}
}
