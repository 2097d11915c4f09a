/*
vkr renders a head with strand based hair inside a skybox, using Vulkan.

	vkr [-config path]
*/
package main

import (
	"flag"
	"os"

	"github.com/spaghettifunk/vkr/engine"
	"github.com/spaghettifunk/vkr/engine/config"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/testbed"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "vkr.toml", "path to the TOML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogError("failed to load configuration: %s", err)
		return 1
	}

	e, err := engine.New(testbed.NewTestGame(cfg).Game)
	if err != nil {
		core.LogError(err.Error())
		return 1
	}

	if err := e.Initialize(); err != nil {
		core.LogError("failed to initialize: %s", err)
		_ = e.Shutdown()
		return 1
	}

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
		return 1
	}
	if runErr != nil {
		return 1
	}
	return 0
}
