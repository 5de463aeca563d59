package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			l := New(os.Stderr)
			l.SetVerbose(os.Getenv("STAGE_DEBUG") != "")
			return l, nil
		},
	})
}
