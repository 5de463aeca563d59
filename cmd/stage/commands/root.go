// Package commands implements the CLI commands for the stage tool.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/build"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for stage.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command

	configFile string
	jsonLogs   bool
	verbose    bool

	progress    ProgressRecorder
	progressOut *os.File
}

type logSwitcher interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a *app.App, logger ports.Logger) *CLI {
	c := &CLI{
		app:    a,
		logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:           "stage",
		Short:         "Download, unpack and patch third-party library sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if s, ok := c.logger.(logSwitcher); ok {
				s.SetJSON(c.jsonLogs)
				if c.verbose {
					s.SetVerbose(true)
				}
			}
		},
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringVar(&c.configFile, "config-file", domain.ConfigFileName,
		"Path to the registry overrides file; a missing file selects the built-in tables")
	rootCmd.PersistentFlags().BoolVar(&c.jsonLogs, "json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&c.verbose, "verbose", false, "Log each step's detail")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return zerr.Wrap(domain.ErrInvalidUsage, err.Error())
	})

	rootCmd.AddCommand(c.newPrepareCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newMkpatchCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	c.rootCmd = rootCmd
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

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
}

// usageArgs classifies argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return zerr.Wrap(domain.ErrInvalidUsage, err.Error())
		}
		return nil
	}
}
