package engine

import "github.com/spaghettifunk/vkr/engine/config"

type Game struct {
	Config       *config.Config
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// Initialize builds the scene. It runs once the device and asset manager exist.
type Initialize func(app *Application) error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
