// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stage/internal/adapters/archive"
	_ "go.trai.ch/stage/internal/adapters/cas"
	_ "go.trai.ch/stage/internal/adapters/config"
	_ "go.trai.ch/stage/internal/adapters/download"
	_ "go.trai.ch/stage/internal/adapters/fs"
	_ "go.trai.ch/stage/internal/adapters/logger"
	_ "go.trai.ch/stage/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/stage/internal/app"
)
