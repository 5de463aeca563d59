package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/internal/core/ports"
)

// NodeID is the unique identifier for the state store Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.StateStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StateStore, error) {
			return NewStore(), nil
		},
	})
}
