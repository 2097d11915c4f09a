package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine"
	"github.com/spaghettifunk/vkr/engine/assets/loaders"
	"github.com/spaghettifunk/vkr/engine/config"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
)

const (
	headMeshPath     = "models/head.obj"
	headTexturePath  = "textures/head.png"
	hairPath         = "models/wWavy.hair"
	skyboxHalfExtent = 50
)

var skyboxFaces = [loaders.CubemapFaceCount]string{
	"textures/skybox/right.jpg",
	"textures/skybox/left.jpg",
	"textures/skybox/top.jpg",
	"textures/skybox/bottom.jpg",
	"textures/skybox/front.jpg",
	"textures/skybox/back.jpg",
}

type TestGame struct {
	*engine.Game
}

type gameState struct {
	app   *engine.Application
	head  scene.Handle
	hair  scene.Handle
	light scene.Handle

	width  uint32
	height uint32
}

func NewTestGame(cfg *config.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: cfg,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

// Initialize loads a head with hair lit by one white light, inside a skybox.
func (g *TestGame) Initialize(app *engine.Application) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.State.(*gameState)
	state.app = app
	s := app.Scene

	blank, err := app.Assets.CreateTexture(metadata.SolidImageData("blank", [4]byte{255, 255, 255, 255}))
	if err != nil {
		return err
	}
	s.SetDefaultMaterial(resources.NewMaterial("blank", blank))

	if err := app.Assets.Preload([]string{headTexturePath, headMeshPath, hairPath}); err != nil {
		return err
	}

	headTexture, err := app.Assets.LoadTexture(headTexturePath)
	if err != nil {
		return err
	}
	headMaterial := resources.NewMaterial("head", headTexture)
	// the material reference is shared by the head and the hair
	defer headMaterial.Release()

	headMesh, err := app.Assets.LoadMesh(headMeshPath)
	if err != nil {
		return err
	}
	state.head = s.CreateEntity()
	head, _ := s.Entity(state.head)
	head.Name = "head"
	head.Mesh = headMesh
	head.Material = headMaterial.Acquire()
	head.Transform = math.TransformFromPositionRotationScale(
		mgl32.Vec3{0, 2.2, 2.5},
		mgl32.Vec3{0, math.Pi, 0},
		mgl32.Vec3{3.1, 3.1, 3.1},
	)

	strands, err := app.Assets.LoadHair(hairPath)
	if err != nil {
		return err
	}
	state.hair = s.CreateEntity()
	hair, _ := s.Entity(state.hair)
	hair.Name = "hair"
	hair.Hair = strands
	hair.Material = headMaterial.Acquire()
	hair.Transform = math.TransformFromPositionRotationScale(
		mgl32.Vec3{0, 2, 2.5},
		mgl32.Vec3{math.HalfPi, math.HalfPi, 0},
		mgl32.Vec3{0.03, 0.03, 0.03},
	)

	state.light = s.AddLight(scene.NewLight(1, mgl32.Vec3{1, 1, 1}), math.TransformFromPositionRotationScale(
		mgl32.Vec3{0, 2, 0},
		mgl32.Vec3{math.HalfPi, math.HalfPi, 0},
		mgl32.Vec3{1, 1, 1},
	))

	if err := g.loadSkybox(app); err != nil {
		// the scene still renders without it
		core.LogWarn("skybox disabled: %s", err)
	}

	core.LogInfo("Testbed scene ready: %d entities, %d renderable.", s.EntityCount(), s.RenderableCount())
	return nil
}

func (g *TestGame) loadSkybox(app *engine.Application) error {
	cubemap, err := app.Assets.LoadCubemap("skybox", skyboxFaces)
	if err != nil {
		return err
	}
	cube, err := app.Assets.CreateMesh(metadata.CubeMeshData("skybox", skyboxHalfExtent))
	if err != nil {
		cubemap.Release()
		return err
	}
	app.Scene.Camera().SetSkybox(cube, cubemap)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	core.LogDebug("Testbed resized to %dx%d.", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("Testbed shutting down.")
	return nil
}
