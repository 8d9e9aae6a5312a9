package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bloomer"
	app.Usage = "interactive multi-pass bloom demo"
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
		cli.StringFlag{
			Name:  "config, c",
			Value: "bloomer.yaml",
			Usage: "YAML config file; missing means defaults",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "presenter: terminal or sdl (default: terminal on a tty)",
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "output width in pixels",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "output height in pixels",
		},
		cli.StringFlag{
			Name:  "content",
			Usage: "content root holding the source image and presets.yaml",
		},
		cli.StringFlag{
			Name:  "source",
			Usage: "source image (PNG or JPEG) relative to the content root",
		},
		cli.StringFlag{
			Name:  "pattern",
			Usage: "generated source pattern when no image is given",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "initial bloom preset",
		},
		cli.Float64Flag{
			Name:  "threshold",
			Usage: "initial bloom threshold in [0, 1]",
		},
		cli.BoolFlag{
			Name:  "half-res",
			Usage: "start at half resolution",
		},
		cli.BoolFlag{
			Name:  "no-overlay",
			Usage: "hide the help overlay",
		},
		cli.Float64Flag{
			Name:  "fps",
			Usage: "target frames per second",
		},
		cli.StringFlag{
			Name:  "monitor",
			Usage: "serve the diagnostics monitor on this address",
		},
		cli.BoolFlag{
			Name:  "autopilot",
			Usage: "sweep the threshold and cycle settings without input",
		},
		cli.StringFlag{
			Name:  "profile",
			Usage: "append per-section frame timings to this CSV file",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "write logs here while the terminal backend owns the screen",
		},
		cli.BoolFlag{
			Name:  "list-presets",
			Usage: "print the preset bundles and exit",
		},
	}
	app.Action = run
	return app
}
