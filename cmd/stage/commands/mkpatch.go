package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/engine/patch"
	"go.trai.ch/zerr"
)

func (c *CLI) newMkpatchCmd() *cobra.Command {
	var contextLines int

	cmd := &cobra.Command{
		Use:   "mkpatch PRISTINE_DIR MODIFIED_DIR",
		Short: "Write the patch bundle turning one source tree into another to stdout",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextLines < 0 {
				return zerr.With(zerr.Wrap(domain.ErrInvalidUsage, "--context must not be negative"), "context", contextLines)
			}
			return c.app.MakePatch(cmd.OutOrStdout(), args[0], args[1], contextLines)
		},
	}
	cmd.Flags().IntVar(&contextLines, "context", patch.DefaultContext, "Number of context lines around each change")
	return cmd
}
