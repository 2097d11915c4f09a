package engine

import (
	"fmt"

	"github.com/spaghettifunk/vkr/engine/assets"
	"github.com/spaghettifunk/vkr/engine/config"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/platform"
	"github.com/spaghettifunk/vkr/engine/renderer"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/views"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *config.Config
	isRunning    bool
	isSuspended  bool

	platform     *platform.Platform
	context      *vulkan.VulkanContext
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	renderSystem *renderer.RenderSystem
	overlay      *renderer.Overlay
	scene        *scene.Scene
	controller   *scene.KeyboardController
	viewer       math.Transform

	clock    *core.Clock
	lastTime float64
	// swapchain generation the pipelines and overlay framebuffers were built for
	generation     uint64
	reloadPipeline bool
}

func New(g *Game) (*Engine, error) {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel)

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		platform:     platform.New(),
		clock:        core.NewClock(),
		controller:   scene.NewKeyboardController(cfg.Camera.MoveSpeed, cfg.Camera.LookSpeed),
		viewer:       math.TransformCreate(),
		isRunning:    true,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	cfg := e.config

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}
	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(cfg.Window.Title,
		cfg.Window.StartPosX,
		cfg.Window.StartPosY,
		cfg.Window.Width,
		cfg.Window.Height); err != nil {
		return err
	}

	context, err := vulkan.NewVulkanContext(e.platform, vulkan.ContextConfig{
		ApplicationName:  cfg.Window.Title,
		ValidationLayers: cfg.Renderer.ValidationLayers,
		VSync:            cfg.Renderer.VSync,
	})
	if err != nil {
		return err
	}
	e.context = context

	e.assetManager = assets.NewAssetManager(resources.NewFactory(context))
	if err := e.assetManager.Initialize(cfg.Assets.Root); err != nil {
		return err
	}
	e.context.ShaderSource = e.assetManager.LoadShader

	e.scene = scene.New()
	camera := e.scene.Camera()
	camera.FovY = math.DegToRad(cfg.Camera.FovY)
	camera.Near = cfg.Camera.Near
	camera.Far = cfg.Camera.Far

	if err := e.gameInstance.FnInitialize(&Application{
		Config: cfg,
		Scene:  e.scene,
		Assets: e.assetManager,
		Viewer: &e.viewer,
	}); err != nil {
		return err
	}
	camera.SetSkyboxEnabled(cfg.Renderer.ShowSkybox && camera.HasSkybox())

	if e.renderer, err = renderer.NewRenderer(e.platform, e.context, renderer.VulkanSwapChainFactory(e.context), cfg.Renderer.MSAA); err != nil {
		return err
	}
	e.generation = e.renderer.SwapChainGeneration()

	swapChain := e.renderer.SwapChain()
	if e.renderSystem, err = renderer.NewRenderSystem(e.context, swapChain.RenderPass(), e.scene, renderer.RenderSystemConfig{
		ShaderDir: cfg.Assets.ShaderDir,
	}); err != nil {
		return err
	}

	if e.overlay, err = renderer.NewOverlay(e.context, swapChain, cfg.Assets.ShaderDir, e.overlayFont()); err != nil {
		return err
	}
	e.overlay.SetVisible(cfg.Renderer.ShowOverlay)

	extent := swapChain.Extent()
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(extent.Width, extent.Height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized.")
	return nil
}

// overlayFont loads the configured overlay font. Without one, or if it fails
// to load, the HUD uses the builtin face.
func (e *Engine) overlayFont() *metadata.FontData {
	path := e.config.Assets.OverlayFont
	if path == "" {
		return nil
	}
	font, err := e.assetManager.LoadFont(path)
	if err != nil {
		core.LogWarn("overlay font %s unavailable, using the builtin face: %s", path, err)
		return nil
	}
	return font
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			e.platform.WaitEvents()
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetTime()

		if err := e.frame(delta); err != nil {
			core.LogError("Frame failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}

		frameElapsedTime := e.platform.GetTime() - frameStartTime
		core.MetricsUpdate(frameElapsedTime)

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		core.InputUpdate(delta)
		e.lastTime = currentTime
	}
	return nil
}

// frame runs one tick: controller, camera, record, submit. Rebuilds happen at
// the frame boundary in the order swapchain, pipelines, overlay framebuffers.
func (e *Engine) frame(delta float64) error {
	e.drainShaderChanges()
	if e.reloadPipeline {
		if err := e.context.WaitIdle(); err != nil {
			return err
		}
		if err := e.renderSystem.RecreatePipelines(e.renderer.SwapChain().RenderPass(), e.renderer.MSAAEnabled()); err != nil {
			return err
		}
		e.reloadPipeline = false
		core.LogInfo("Pipelines reloaded.")
	}

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return err
		}
	}

	e.controller.MoveInPlaneXZ(float32(delta), core.InputIsKeyDown, &e.viewer)
	camera := e.scene.Camera()
	camera.Update(e.viewer, e.renderer.AspectRatio())

	cb, err := e.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if cb == nil {
		// the swapchain was rebuilt instead of acquiring an image
		return e.onSwapChainRebuilt()
	}

	frameIndex := e.renderer.FrameIndex()
	e.renderer.BeginSwapChainRenderPass(cb)
	if err := e.renderSystem.Render(renderer.FrameInfo{
		FrameIndex:    frameIndex,
		FrameTime:     float32(delta),
		CommandBuffer: cb,
		Camera:        camera,
	}); err != nil {
		return err
	}
	e.renderer.EndSwapChainRenderPass(cb)

	overlay, err := e.overlay.Record(frameIndex, e.renderer.ImageIndex(), e.stats())
	if err != nil {
		return err
	}

	wasResized, err := e.renderer.EndFrame([]vulkan.CommandBuffer{overlay})
	if err != nil {
		return err
	}
	if wasResized || e.renderer.SwapChainGeneration() != e.generation {
		return e.onSwapChainRebuilt()
	}
	return nil
}

func (e *Engine) onSwapChainRebuilt() error {
	swapChain := e.renderer.SwapChain()
	if err := e.renderSystem.RecreatePipelines(swapChain.RenderPass(), e.renderer.MSAAEnabled()); err != nil {
		return err
	}
	if err := e.overlay.RebuildFramebuffers(swapChain); err != nil {
		return err
	}
	e.generation = e.renderer.SwapChainGeneration()
	e.reloadPipeline = false

	extent := swapChain.Extent()
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(extent.Width, extent.Height); err != nil {
			return err
		}
	}
	return nil
}

// drainShaderChanges coalesces every pending shader change into one reload.
func (e *Engine) drainShaderChanges() {
	if !e.config.Assets.HotReload {
		return
	}
	for {
		select {
		case path, ok := <-e.assetManager.ShaderChanges():
			if !ok {
				return
			}
			core.LogInfo("Shader %s changed, reloading pipelines.", path)
			e.reloadPipeline = true
		default:
			return
		}
	}
}

func (e *Engine) stats() views.HUDStats {
	fps, frameTime := core.MetricsFrame()
	swapChain := e.renderer.SwapChain()
	extent := swapChain.Extent()
	return views.HUDStats{
		FPS:         fps,
		FrameTimeMs: frameTime,
		Width:       extent.Width,
		Height:      extent.Height,
		MSAA:        e.renderer.MSAAEnabled(),
		Samples:     uint32(swapChain.SampleCount()),
		Entities:    e.scene.EntityCount(),
		Renderables: e.scene.RenderableCount(),
		Skybox:      e.scene.Camera().SkyboxEnabled(),
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.context != nil {
		if err := e.context.WaitIdle(); err != nil {
			core.LogWarn("device wait before shutdown failed: %s", err)
		}
	}
	if e.overlay != nil {
		e.overlay.Destroy()
	}
	if e.renderSystem != nil {
		e.renderSystem.Destroy()
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if e.scene != nil {
		e.scene.Destroy()
	}
	if e.assetManager != nil {
		e.assetManager.Shutdown()
	}
	if e.renderer != nil {
		e.renderer.Destroy()
	}
	if e.context != nil {
		e.context.Destroy()
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	core.LogInfo("Engine shut down.")
	return nil
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	switch ke.KeyCode {
	case core.KEY_ESCAPE:
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	case core.KEY_M:
		e.renderer.SetMSAA(!e.renderer.MSAAEnabled())
		core.LogInfo("MSAA %t, swapchain rebuilds at the end of the frame.", e.renderer.MSAAEnabled())
		return true
	case core.KEY_K:
		if !e.scene.Camera().HasSkybox() {
			core.LogWarn("no skybox to toggle")
			return true
		}
		core.LogInfo("Skybox %t.", e.scene.Camera().ToggleSkybox())
		return true
	case core.KEY_O:
		e.overlay.SetVisible(!e.overlay.Visible())
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	// Handle minimization
	if se.WindowWidth == 0 || se.WindowHeight == 0 {
		if !e.isSuspended {
			core.LogInfo("Window minimized, suspending application.")
		}
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	core.LogDebug("Window resize: %d, %d", se.WindowWidth, se.WindowHeight)
	return false
}
