package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// zerrError is the subset of go.trai.ch/zerr's *Error used to render an error chain.
type zerrError interface {
	Message() string
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain as shown to the operator.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the chain of err. zerr errors contribute their own message
// and metadata; the first standard error contributes its full text and ends the walk.
// zerr links without a message hand their metadata to the next entry.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var carried map[string]any

	for current := err; current != nil; {
		z, ok := current.(zerrError)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: carried})
			break
		}

		meta := z.Metadata()
		if carried != nil {
			maps.Copy(meta, carried)
			carried = nil
		}
		if z.Message() == "" {
			if len(meta) > 0 {
				carried = meta
			}
			current = errors.Unwrap(current)
			continue
		}

		entries = append(entries, ErrorEntry{Message: z.Message(), Metadata: meta})
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders entries as an "Error:" line followed by a "Caused by:" list.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		prefix, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			prefix, indent = "    → ", "      "
		}

		lines = append(lines, prefix+msgLines[0])
		for _, l := range msgLines[1:] {
			lines = append(lines, indent+l)
		}
		for _, k := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
