// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"errors"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/stage/internal/core/ports"
)

// Recorder implements the ports.Telemetry interface using the vito/progrock library.
// Status updates are fanned out to every attached writer.
type Recorder struct {
	mu    sync.Mutex
	sinks []progrock.Writer
	rec   *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	r := &Recorder{sinks: []progrock.Writer{w}}
	r.rec = progrock.NewRecorder(r)
	return r
}

// Attach adds a writer that receives every status update recorded from now on.
func (r *Recorder) Attach(w progrock.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, w)
}

// Record starts recording a new vertex.
// Names are expected to be unique within a session; they seed the vertex digest.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	vertex := &Vertex{r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// WriteStatus forwards an update to all attached writers.
func (r *Recorder) WriteStatus(update *progrock.StatusUpdate) error {
	var errs []error
	for _, w := range r.snapshot() {
		errs = append(errs, w.WriteStatus(update))
	}
	return errors.Join(errs...)
}

// Close flushes and closes every attached writer.
func (r *Recorder) Close() error {
	var errs []error
	for _, w := range r.snapshot() {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

func (r *Recorder) snapshot() []progrock.Writer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]progrock.Writer(nil), r.sinks...)
}

// Vertex is one recorded step. Output written to Stdout and Stderr becomes
// progrock logs attached to the step.
type Vertex struct {
	*progrock.VertexRecorder
}

// Complete marks the step done, failed when err is non-nil.
func (v *Vertex) Complete(err error) {
	v.Done(err)
}
