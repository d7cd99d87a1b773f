package engine

import (
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/scene"
)

/**
 * @brief What an application plugs into the engine: its configuration and the
 * behaviour of the scene the engine creates for it.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Scene hooks. Nil draws only what the configuration lists.
	Behaviour scene.Behaviour
	// Optional listeners registered on the engine's event system before the
	// scene is created.
	Listeners  map[core.SystemEventCode]core.FnOnEvent
	FnOnResize OnResize
	FnShutdown Shutdown
}

type OnResize func(width uint32, height uint32) error
type Shutdown func() error
