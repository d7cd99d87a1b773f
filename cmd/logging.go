package cmd

import (
	"github.com/urfave/cli"

	"github.com/spaghettifunk/qtk/engine/core"
)

// logLevel maps the global verbosity flags to a level name, falling back to
// the configured one.
func logLevel(ctx *cli.Context, configured string) string {
	if ctx.GlobalBool("vv") {
		return "debug"
	}
	if ctx.GlobalBool("v") && core.ParseLogLevel(configured) > core.InfoLevel {
		return "info"
	}
	return configured
}
