package app

import "go.trai.ch/stage/internal/core/ports"

// Components groups the objects main needs from the dependency graph.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}
