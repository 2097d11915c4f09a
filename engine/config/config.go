package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkr/engine/core"
)

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
}

type RendererConfig struct {
	MSAA bool `toml:"msaa"`
	// VSync forces FIFO presentation even when MAILBOX is available.
	VSync            bool `toml:"vsync"`
	ValidationLayers bool `toml:"validation_layers"`
	ShowOverlay      bool `toml:"show_overlay"`
	ShowSkybox       bool `toml:"show_skybox"`
}

type AssetsConfig struct {
	Root        string `toml:"root"`
	ShaderDir   string `toml:"shader_dir"`
	OverlayFont string `toml:"overlay_font"`
	HotReload   bool   `toml:"hot_reload"`
}

type CameraConfig struct {
	FovY      float32 `toml:"fov_y"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	MoveSpeed float32 `toml:"move_speed"`
	LookSpeed float32 `toml:"look_speed"`
}

type Config struct {
	LogLevel string         `toml:"log_level"`
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Camera   CameraConfig   `toml:"camera"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:     "vkr",
			Width:     800,
			Height:    600,
			StartPosX: 100,
			StartPosY: 100,
		},
		Renderer: RendererConfig{
			MSAA:        true,
			ShowOverlay: true,
			ShowSkybox:  true,
		},
		Assets: AssetsConfig{
			Root:      "assets",
			ShaderDir: "shaders",
			HotReload: true,
		},
		Camera: CameraConfig{
			FovY:      50,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 3,
			LookSpeed: 1.5,
		},
	}
}

// Load reads a TOML file on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, core.ErrInvalidConfig)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes near=%f far=%f: %w", c.Camera.Near, c.Camera.Far, core.ErrInvalidConfig)
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		return fmt.Errorf("camera fov %f: %w", c.Camera.FovY, core.ErrInvalidConfig)
	}
	if c.Assets.Root == "" {
		return fmt.Errorf("empty assets root: %w", core.ErrInvalidConfig)
	}
	return nil
}
