package engine

import (
	"github.com/spaghettifunk/vkr/engine/assets"
	"github.com/spaghettifunk/vkr/engine/config"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/scene"
)

// Application is what a game gets to set itself up.
type Application struct {
	Config *config.Config
	Scene  *scene.Scene
	Assets *assets.AssetManager
	// Viewer is the transform the camera follows and the keyboard moves.
	Viewer *math.Transform
}
