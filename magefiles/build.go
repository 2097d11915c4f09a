//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	shaderSourceDir = "shaders"
	shaderOutputDir = "assets/shaders"
	binaryPath      = "bin/vkr"
)

type Build mg.Namespace

// Compiles every GLSL stage under shaders/ into assets/shaders/<name>.spv.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the renderer binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", binaryPath, "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	var sources []string
	for _, pattern := range []string{"*.vert", "*.frag"} {
		matches, err := filepath.Glob(filepath.Join(shaderSourceDir, pattern))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderSourceDir)
	}
	for _, src := range sources {
		out := filepath.Join(shaderOutputDir, filepath.Base(src)+".spv")
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
