package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/ui/output"
	"go.trai.ch/stage/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status SOURCES_DIR",
		Short: "Report whether prepared source trees still match their records",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := c.app.Status(c.configFile, args[0])
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No prepared sources.")
				return nil
			}

			out := output.New(cmd.OutOrStdout())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "LIBRARY\tVERSION\tDIRECTORY\tSTATE")
			for _, s := range statuses {
				state := stateLabel(out, s.State)
				if s.Latest != "" {
					state += fmt.Sprintf(" (%s available)", s.Latest)
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Record.Library, s.Record.Version, s.Record.SourceDir, state)
			}
			return tw.Flush()
		},
	}
}

func stateLabel(out *termenv.Output, state app.SourceState) string {
	switch state {
	case app.StateClean:
		return output.Colorize(out, style.Check+" "+string(state), string(style.Green))
	case app.StateModified:
		return output.Colorize(out, style.Tilde+" "+string(state), string(style.Yellow))
	default:
		return output.Colorize(out, style.Cross+" "+string(state), string(style.Red))
	}
}
