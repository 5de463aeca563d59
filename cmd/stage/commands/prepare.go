package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newPrepareCmd() *cobra.Command {
	var (
		configuration string
		jobs          int
		outputMode    string
		ci            bool
	)

	cmd := &cobra.Command{
		Use:   "prepare PLATFORM TARBALLS_DIR SOURCES_DIR PATCHES_DIR",
		Short: "Download, unpack and patch the libraries a platform needs",
		Long: `Computes the libraries the configuration needs on PLATFORM, then for each one in
order downloads its archive into TARBALLS_DIR (unless already present), unpacks it
under SOURCES_DIR and applies PATCHES_DIR/<source dir>.diff when it exists.`,
		Args: usageArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				return zerr.With(zerr.Wrap(domain.ErrInvalidUsage, "--jobs must be at least 1"), "jobs", jobs)
			}
			if ci {
				outputMode = "linear"
			}
			stop, err := c.startProgress(outputMode)
			if err != nil {
				return err
			}
			defer stop()

			return c.app.Prepare(cmd.Context(), app.PrepareOptions{
				ResolveOptions: app.ResolveOptions{
					ConfigFile:    c.configFile,
					Configuration: configuration,
					Platform:      args[0],
				},
				TarballsDir: args[1],
				SourcesDir:  args[2],
				PatchesDir:  args[3],
				Jobs:        jobs,
			})
		},
	}
	cmd.Flags().StringVar(&configuration, "config", domain.DefaultConfiguration, "Configuration whose components are prepared")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Maximum number of concurrent downloads")
	cmd.Flags().StringVarP(&outputMode, "output-mode", "o", "auto", "Output mode: auto, tui, or linear")
	cmd.Flags().BoolVar(&ci, "ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	return cmd
}
