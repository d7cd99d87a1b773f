package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/spaghettifunk/qtk/engine"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/testbed"
)

// Run opens the viewer window and blocks until it is closed.
func Run(ctx *cli.Context) error {
	config, err := engine.LoadApplicationConfig(ctx.String("config"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	config.Log.Level = logLevel(ctx, config.Log.Level)
	if backend := ctx.String("backend"); backend != "" {
		config.Renderer.Backend = backend
	}
	if dir := ctx.String("assets"); dir != "" {
		config.Assets.Dir = dir
	}
	config.Scene.Models = append(config.Scene.Models, ctx.Args()...)

	e, err := engine.New(testbed.NewTestGame(config))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return cli.NewExitError(err.Error(), 1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			// the render loop owns the GL context, so ask it to stop
			e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
		}
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		return cli.NewExitError(runErr.Error(), 1)
	}
	return nil
}
