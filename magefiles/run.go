//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and opens the viewer with qtk.toml.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	fmt.Println("Run viewer...")
	_, err := executeCmd(binary, withArgs("run", "--config", "qtk.toml"), withStream())
	return err
}

type Test mg.Namespace

// Runs every package test. The renderer tests use the headless backend and
// need no display.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the tests with the race detector, useful for the job and asset
// watcher goroutines.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/..."), withStream())
	return err
}
