package progrock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/internal/core/ports"
)

// NodeID identifies the recorder node. The same *Recorder serves the pipeline and
// the CLI, which attaches the live step list to it.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return New(), nil
		},
	})
}
