package main

import (
	"github.com/urfave/cli"

	"github.com/vkngwrapper/framecore/internal/config"
)

var validationFlag = cli.BoolFlag{
	Name:  "validation",
	Usage: "enable the Khronos validation layer and route its messages to the log",
}

var renderFlags = buildRenderFlags(config.Default())

func buildRenderFlags(defaults config.Config) []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: defaults.Width,
			Usage: "initial window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: defaults.Height,
			Usage: "initial window height",
		},
		cli.StringFlag{
			Name:  "title",
			Value: defaults.Title,
			Usage: "window title",
		},
		cli.StringFlag{
			Name:  "model, m",
			Value: defaults.ModelPath,
			Usage: "wavefront obj file to render",
		},
		cli.StringFlag{
			Name:  "texture, t",
			Value: defaults.TexturePath,
			Usage: "image applied to the model",
		},
		cli.StringFlag{
			Name:  "shaders",
			Value: defaults.ShaderDir,
			Usage: "directory holding vert.spv and frag.spv",
		},
		validationFlag,
		cli.BoolTFlag{
			Name:  "mailbox",
			Usage: "prefer mailbox presentation when available; use --mailbox=false for fifo",
		},
		cli.StringFlag{
			Name:  "pipeline-cache",
			Value: defaults.PipelineCachePath,
			Usage: "file the pipeline cache is loaded from and saved to",
		},
		cli.DurationFlag{
			Name:  "stats-interval",
			Value: defaults.StatsInterval,
			Usage: "how often frame statistics are logged at debug level (0 disables)",
		},
		cli.Uint64Flag{
			Name:  "frames",
			Value: defaults.MaxFrames,
			Usage: "stop after this many frames (0 renders until the window closes)",
		},
	}
}

func configFromContext(ctx *cli.Context) config.Config {
	cfg := config.Default()

	cfg.Width = ctx.Int("width")
	cfg.Height = ctx.Int("height")
	cfg.Title = ctx.String("title")
	cfg.ModelPath = ctx.String("model")
	cfg.TexturePath = ctx.String("texture")
	cfg.ShaderDir = ctx.String("shaders")
	cfg.Validation = ctx.Bool("validation")
	cfg.PreferMailbox = ctx.BoolT("mailbox")
	cfg.PipelineCachePath = ctx.String("pipeline-cache")
	cfg.StatsInterval = ctx.Duration("stats-interval")
	cfg.MaxFrames = ctx.Uint64("frames")

	return cfg
}
