package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/spaghettifunk/qtk/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "qtk"
	app.Usage = "view models and procedural shapes in an OpenGL scene"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open the viewer window",
			Description: `
Open a window showing the example scene. Models passed as arguments are
loaded next to the ones listed in the configuration file. Model and shader
files created or edited under the assets directory are picked up while the
viewer runs.`,
			ArgsUsage: "[model1.obj model2.gltf ...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Value: "qtk.toml",
					Usage: "TOML configuration file",
				},
				cli.StringFlag{
					Name:  "assets, a",
					Usage: "override the assets directory",
				},
				cli.StringFlag{
					Name:  "backend",
					Usage: "override the renderer backend (opengl or headless)",
				},
			},
			Action: cmd.Run,
		},
		{
			Name:      "inspect",
			Usage:     "print the meshes and materials a model imports to",
			ArgsUsage: "model1.obj model2.gltf ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "assets, a",
					Value: "assets",
					Usage: "directory relative model paths are looked up in",
				},
			},
			Action: cmd.Inspect,
		},
	}

	app.Run(os.Args)
}
