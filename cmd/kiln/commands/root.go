// Package commands implements the CLI commands for kiln.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
)

// Application is the part of the application layer driven by the CLI.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) ([]*domain.RunResult, error)
	Verify(ctx context.Context, opts app.VerifyOptions) (*domain.VerifyResult, error)
	Inspect(ctx context.Context, opts app.BuildOptions, w io.Writer) error
}

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	console *logger.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance. console may be nil, in which case
// --verbose has no effect.
func New(a Application, console *logger.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "A declarative package builder for CMake projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show command output and debug logs")

	c := &CLI{
		app:     a,
		console: console,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if c.console != nil {
			c.console.SetVerbose(verbose)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects standard and error output of every command. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
