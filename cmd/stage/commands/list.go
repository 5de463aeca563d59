package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the package table",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkgs, err := c.app.List(c.configFile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tVERSION\tARCHIVE")
			for _, p := range pkgs {
				archive, version := "-", "-"
				if p.Downloadable() {
					archive, version = p.TarballName(), p.Version
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.NiceName, version, archive)
			}
			return tw.Flush()
		},
	}
}
