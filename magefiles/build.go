//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	binary     = "bin/qtk"
	shadersDir = "engine/assets/builtin/shaders"
)

// Compiles the viewer into bin/qtk.
func (Build) Viewer() error {
	mg.Deps(Build.Shaders)
	if err := os.MkdirAll(filepath.Dir(binary), 0o755); err != nil {
		return err
	}
	// go-gl and glfw are cgo bindings
	_, err := executeCmd("go", withArgs("build", "-o", binary, "."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Checks the builtin GLSL shaders with glslangValidator, when it is installed.
func (Build) Shaders() error {
	shaders, err := builtinShaders()
	if err != nil {
		return err
	}
	if !hasCommand("glslangValidator") {
		fmt.Println("glslangValidator not found, skipping shader validation")
		return nil
	}
	for _, s := range shaders {
		if _, err := executeCmd("glslangValidator", withArgs(s)); err != nil {
			return err
		}
	}
	return nil
}

func builtinShaders() ([]string, error) {
	var shaders []string
	for _, pattern := range []string{"*.vert", "*.frag"} {
		matches, err := filepath.Glob(filepath.Join(shadersDir, pattern))
		if err != nil {
			return nil, err
		}
		shaders = append(shaders, matches...)
	}
	return shaders, nil
}
