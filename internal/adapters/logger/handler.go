package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/stage/internal/ui/output"
	"go.trai.ch/stage/internal/ui/style"
)

// levelStyle is how one slog level is shown: an optional icon and a color.
type levelStyle struct {
	icon  string
	color string
	faint bool
}

var levelStyles = map[slog.Level]levelStyle{
	slog.LevelDebug: {icon: style.Dot, color: string(style.Slate), faint: true},
	slog.LevelInfo:  {color: string(style.Slate)},
	slog.LevelWarn:  {icon: style.Warning, color: string(style.Yellow)},
	slog.LevelError: {icon: style.Cross, color: string(style.Red)},
}

// PrettyHandler is a slog.Handler that writes one colored line (or block, for
// multi-line messages) per record. Each record is written with a single Write so
// line-oriented sinks never see a partial record.
type PrettyHandler struct {
	mu     *sync.Mutex
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	prefix string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		mu:    &sync.Mutex{},
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ls, ok := levelStyles[r.Level]
	if !ok {
		ls = levelStyles[slog.LevelInfo]
	}

	msg := r.Message
	if ls.icon != "" {
		msg = ls.icon + " " + msg
	}

	parts := append([]string(nil), h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, formatAttr(h.prefix, attr))
		return true
	})
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " ")
	}

	styled := h.out.String(msg).Foreground(termenv.RGBColor(ls.color))
	if ls.faint {
		styled = styled.Faint()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, styled.String()+"\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, formatAttr(h.prefix, attr))
	}
	return &next
}

// WithGroup returns a new Handler qualifying later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func formatAttr(prefix string, attr slog.Attr) string {
	if attr.Value.Kind() == slog.KindGroup {
		parts := make([]string, 0, len(attr.Value.Group()))
		for _, member := range attr.Value.Group() {
			parts = append(parts, formatAttr(prefix+attr.Key+".", member))
		}
		return strings.Join(parts, " ")
	}

	value := attr.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	return prefix + attr.Key + "=" + value
}
