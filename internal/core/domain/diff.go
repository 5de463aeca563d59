package domain

// LineKind classifies a line in a hunk body.
type LineKind byte

const (
	// LineContext is a line present in both the original and the new file.
	LineContext LineKind = ' '
	// LineRemove is a line present only in the original file.
	LineRemove LineKind = '-'
	// LineAdd is a line present only in the new file.
	LineAdd LineKind = '+'
)

// Line is a single line of a hunk body.
type Line struct {
	Kind LineKind
	// Text is the line content without its line terminator.
	Text string
	// NoNewline marks the last line of a file that has no trailing newline.
	NoNewline bool
}

// Content returns the line as it appears in the file, including its terminator.
func (l Line) Content() string {
	if l.NoNewline {
		return l.Text
	}
	return l.Text + "\n"
}

// Hunk is a contiguous change to a file.
type Hunk struct {
	OrigStart int
	OrigCount int
	NewStart  int
	NewCount  int
	Lines     []Line

	// Line is the line number of the hunk header in the bundle, for diagnostics.
	Line int
}

// OldLines returns the context and removed lines, in order, as they appear in the original file.
func (h Hunk) OldLines() []string {
	out := make([]string, 0, h.OrigCount)
	for _, l := range h.Lines {
		if l.Kind != LineAdd {
			out = append(out, l.Content())
		}
	}
	return out
}

// NewLines returns the context and added lines, in order, as they appear in the new file.
func (h Hunk) NewLines() []string {
	out := make([]string, 0, h.NewCount)
	for _, l := range h.Lines {
		if l.Kind != LineRemove {
			out = append(out, l.Content())
		}
	}
	return out
}

// Diff is the ordered set of hunks that apply to one file of a source tree.
type Diff struct {
	// Path is the target file, relative to the source tree root, in slash form.
	Path string
	Hunks []Hunk

	// Line is the line number of the diff header in the bundle, for diagnostics.
	Line int
}

// Creates reports whether the diff creates a new file.
func (d Diff) Creates() bool {
	if len(d.Hunks) == 0 {
		return false
	}
	for _, h := range d.Hunks {
		if h.OrigStart != 0 || h.OrigCount != 0 {
			return false
		}
	}
	return true
}
