package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func init() {
	// SDL and the Vulkan surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "framecore"
	app.Usage = "render a textured mesh with a resizable Vulkan swapchain"
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
			Usage: "open a window and render until it is closed",
			Description: `
Select the best Vulkan device, load the mesh and texture and render them into a
resizable window. Resizing or minimizing the window rebuilds the swapchain and
everything that depends on it.`,
			Flags:  renderFlags,
			Action: Run,
		},
		{
			Name:   "list-devices",
			Usage:  "list available Vulkan devices and how they score",
			Flags:  []cli.Flag{validationFlag},
			Action: ListDevices,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
