package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stage/internal/adapters/archive"            //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/download"           //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/stage/internal/engine/pipeline"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// PipelineNodeID is the unique identifier for the preparation pipeline Graft node.
	PipelineNodeID graft.ID = "engine.pipeline"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*pipeline.Pipeline]{
		ID:        PipelineNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			download.NodeID,
			archive.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: runPipelineNode,
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			PipelineNodeID,
			cas.NodeID,
			fs.HasherNodeID,
			progrock.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log, Telemetry: telemetry}, nil
		},
	})
}

func runPipelineNode(ctx context.Context) (*pipeline.Pipeline, error) {
	fetcher, err := graft.Dep[ports.Fetcher](ctx)
	if err != nil {
		return nil, err
	}

	extractor, err := graft.Dep[ports.Extractor](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.TreeHasher](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return pipeline.New(fetcher, extractor, store, hasher, telemetry, log), nil
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	pipe, err := graft.Dep[*pipeline.Pipeline](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.TreeHasher](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, pipe, store, hasher, telemetry), nil
}
