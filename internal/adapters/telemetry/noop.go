// Package telemetry holds telemetry implementations that need no recording backend.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/stage/internal/core/ports"
)

// Noop is a ports.Telemetry that discards everything.
type Noop struct{}

// NewNoop creates a new Noop telemetry.
func NewNoop() *Noop {
	return &Noop{}
}

// Record returns a vertex that discards its output.
func (n *Noop) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	v := &NoopVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing.
func (n *Noop) Close() error { return nil }

// NoopVertex is a no-op implementation of ports.Vertex.
type NoopVertex struct{}

// Stdout returns io.Discard.
func (v *NoopVertex) Stdout() io.Writer { return io.Discard }

// Stderr returns io.Discard.
func (v *NoopVertex) Stderr() io.Writer { return io.Discard }

// Complete does nothing.
func (v *NoopVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoopVertex) Cached() {}
