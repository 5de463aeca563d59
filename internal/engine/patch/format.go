package patch

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/stage/internal/core/domain"
)

const noNewlineMarker = `\ No newline at end of file`

// FormatBundle writes diffs to w in the bundle grammar accepted by ParseBundle.
// Paths are written with "a/" and "b/" prefixes and counts are always explicit.
func FormatBundle(w io.Writer, diffs []domain.Diff) error {
	var b strings.Builder
	for _, d := range diffs {
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", d.Path, d.Path)
		for _, h := range d.Hunks {
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OrigStart, h.OrigCount, h.NewStart, h.NewCount)
			for _, l := range h.Lines {
				b.WriteByte(byte(l.Kind))
				b.WriteString(l.Text)
				b.WriteByte('\n')
				if l.NoNewline {
					b.WriteString(noNewlineMarker)
					b.WriteByte('\n')
				}
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
