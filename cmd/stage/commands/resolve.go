package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/core/domain"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	var configuration string

	cmd := &cobra.Command{
		Use:   "resolve PLATFORM",
		Short: "Print the libraries a platform needs, one per line",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			libraries, err := c.app.Resolve(app.ResolveOptions{
				ConfigFile:    c.configFile,
				Configuration: configuration,
				Platform:      args[0],
			})
			if err != nil {
				return err
			}
			for _, id := range libraries {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configuration, "config", domain.DefaultConfiguration, "Configuration whose components are resolved")
	return cmd
}
