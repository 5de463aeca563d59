package download

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher Graft node.
const NodeID graft.ID = "adapter.fetcher"

func init() {
	graft.Register(graft.Node[ports.Fetcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Fetcher, error) {
			return NewFetcher(), nil
		},
	})
}
