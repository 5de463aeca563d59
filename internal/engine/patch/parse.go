// Package patch parses, applies, renders and generates bundles of unified diffs.
package patch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

const devNull = "/dev/null"

// signatureSeparator opens the trailer git format-patch writes after the last hunk.
const signatureSeparator = "-- "

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// LoadBundle reads and parses the patch bundle at path.
func LoadBundle(path string) ([]domain.Diff, error) {
	f, err := os.Open(path) //nolint:gosec // Bundle paths come from the patches directory.
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open patch bundle"), "path", path)
	}
	defer func() { _ = f.Close() }()

	return ParseBundle(f, path)
}

// ParseBundle parses a bundle of unified diffs read from r.
// name identifies the bundle in error messages.
func ParseBundle(r io.Reader, name string) ([]domain.Diff, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read patch bundle"), "path", name)
	}

	p := &parser{name: name, lines: lines}
	return p.parse()
}

type parser struct {
	name  string
	lines []string
	diffs []domain.Diff
}

func (p *parser) parse() ([]domain.Diff, error) {
	i := 0
	afterHunk := false
	for i < len(p.lines) {
		line := p.lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			if err := p.checkLastHasHunks(); err != nil {
				return nil, err
			}
			if i+1 >= len(p.lines) || !strings.HasPrefix(p.lines[i+1], "+++ ") {
				return nil, p.fail(domain.ErrMalformedHeader, i+1, "expected +++ line after --- line")
			}
			target, err := targetPath(line[len("--- "):], p.lines[i+1][len("+++ "):])
			if err != nil {
				return nil, p.fail(domain.ErrMalformedHeader, i+1, err.Error())
			}
			p.diffs = append(p.diffs, domain.Diff{Path: target, Line: i + 1})
			i += 2
			afterHunk = false

		case strings.HasPrefix(line, "@@"):
			if len(p.diffs) == 0 {
				return nil, p.fail(domain.ErrHunkBeforeHeader, i+1, "hunk without a preceding diff header")
			}
			hunk, next, err := p.parseHunk(i)
			if err != nil {
				return nil, err
			}
			last := &p.diffs[len(p.diffs)-1]
			last.Hunks = append(last.Hunks, hunk)
			i = next
			afterHunk = true

		default:
			if afterHunk && line != signatureSeparator && isBodyLine(line) {
				return nil, p.fail(domain.ErrHunkCountMismatch, i+1, "hunk body is longer than its header declares")
			}
			i++
			afterHunk = false
		}
	}

	if err := p.checkLastHasHunks(); err != nil {
		return nil, err
	}
	return p.diffs, nil
}

func (p *parser) checkLastHasHunks() error {
	if len(p.diffs) == 0 {
		return nil
	}
	last := p.diffs[len(p.diffs)-1]
	if len(last.Hunks) == 0 {
		return p.fail(domain.ErrMalformedHeader, last.Line, "diff header without hunks")
	}
	return nil
}

func (p *parser) parseHunk(i int) (domain.Hunk, int, error) {
	m := hunkHeader.FindStringSubmatch(p.lines[i])
	if m == nil {
		return domain.Hunk{}, 0, p.fail(domain.ErrMalformedHunk, i+1, "expected @@ -a[,b] +c[,d] @@")
	}

	nums := [4]int{}
	for k, field := range m[1:] {
		if field == "" {
			nums[k] = 1
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return domain.Hunk{}, 0, p.fail(domain.ErrMalformedHunk, i+1, err.Error())
		}
		nums[k] = n
	}

	h := domain.Hunk{
		OrigStart: nums[0],
		OrigCount: nums[1],
		NewStart:  nums[2],
		NewCount:  nums[3],
		Line:      i + 1,
	}
	if (h.OrigStart == 0 && h.OrigCount != 0) || (h.NewStart == 0 && h.NewCount != 0) {
		return domain.Hunk{}, 0, p.fail(domain.ErrMalformedHunk, i+1, "line number 0 with a non-empty range")
	}

	var oldSeen, newSeen int
	j := i + 1
	for oldSeen < h.OrigCount || newSeen < h.NewCount {
		if j >= len(p.lines) {
			return domain.Hunk{}, 0, p.fail(domain.ErrHunkCountMismatch, h.Line, "hunk body ends early")
		}
		line := p.lines[j]
		if p.startsHeader(j) {
			return domain.Hunk{}, 0, p.fail(domain.ErrHunkCountMismatch, j+1, "hunk body ends early")
		}

		if strings.HasPrefix(line, `\`) {
			if len(h.Lines) == 0 {
				return domain.Hunk{}, 0, p.fail(domain.ErrMalformedHunk, j+1, "no-newline marker without a preceding line")
			}
			h.Lines[len(h.Lines)-1].NoNewline = true
			j++
			continue
		}

		var l domain.Line
		switch {
		case line == "":
			l = domain.Line{Kind: domain.LineContext}
		case line[0] == ' ' || line[0] == '-' || line[0] == '+':
			l = domain.Line{Kind: domain.LineKind(line[0]), Text: line[1:]}
		default:
			return domain.Hunk{}, 0, p.fail(domain.ErrHunkCountMismatch, j+1, "hunk body ends early")
		}

		if l.Kind != domain.LineAdd {
			oldSeen++
		}
		if l.Kind != domain.LineRemove {
			newSeen++
		}
		if oldSeen > h.OrigCount || newSeen > h.NewCount {
			return domain.Hunk{}, 0, p.fail(domain.ErrHunkCountMismatch, j+1, "hunk body disagrees with its header")
		}
		h.Lines = append(h.Lines, l)
		j++
	}

	if j < len(p.lines) && strings.HasPrefix(p.lines[j], `\`) && len(h.Lines) > 0 {
		h.Lines[len(h.Lines)-1].NoNewline = true
		j++
	}
	return h, j, nil
}

func (p *parser) fail(sentinel error, line int, detail string) error {
	err := zerr.Wrap(sentinel, fmt.Sprintf("%s:%d: %s", p.name, line, detail))
	err = zerr.With(err, "file", p.name)
	return zerr.With(err, "line", line)
}

// startsHeader reports whether lines[i] and lines[i+1] form a --- / +++ file header.
func (p *parser) startsHeader(i int) bool {
	return i+1 < len(p.lines) &&
		strings.HasPrefix(p.lines[i], "--- ") &&
		strings.HasPrefix(p.lines[i+1], "+++ ")
}

func isBodyLine(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")
}

// targetPath picks the file a diff applies to from its header fields and strips
// the leading path component.
func targetPath(oldField, newField string) (string, error) {
	oldPath := headerPath(oldField)
	target := headerPath(newField)
	if target == devNull {
		target = oldPath
	}
	if target == "" || target == devNull {
		return "", errors.New("empty target path")
	}

	_, rest, ok := strings.Cut(target, "/")
	rest = strings.TrimLeft(rest, "/")
	if !ok || rest == "" {
		return "", fmt.Errorf("path %q has no component to strip", target)
	}
	return path.Clean(rest), nil
}

func headerPath(field string) string {
	field, _, _ = strings.Cut(field, "\t")
	return strings.TrimSpace(field)
}

// readLines splits r into lines without their "\n" terminators.
// A final line without a terminator is kept.
func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
