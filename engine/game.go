package engine

import "errors"

// ErrQuit ends Engine.Run without reporting a failure when returned from
// Game.FnUpdate.
var ErrQuit = errors.New("quit requested")

// Game is the application driven by the engine loop.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize runs.
	Engine       *Engine
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Shutdown func() error
