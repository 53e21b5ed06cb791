package main

import (
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli"

	"github.com/vkngwrapper/framecore/internal/config"
	"github.com/vkngwrapper/framecore/internal/device"
	"github.com/vkngwrapper/framecore/internal/frame"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/scene"
	"github.com/vkngwrapper/framecore/internal/swapchain"
	"github.com/vkngwrapper/framecore/internal/vulkan"
	"github.com/vkngwrapper/framecore/internal/window"
)

// Features every device must offer to render.
var requiredFeatures = device.DefaultRequiredFeatures.With(gpu.TimelineSemaphore)

// Run renders the configured scene until the window closes.
func Run(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg := configFromContext(ctx)
	if err := cfg.Validate(); err != nil {
		return err
	}

	return render(cfg)
}

func render(cfg config.Config) error {
	win, err := window.NewSDL(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		return gpu.InitError(err, "open window")
	}
	defer win.Destroy()

	instance, err := vulkan.NewInstance(win, vulkan.InstanceOptions{
		ApplicationName: cfg.Title,
		Validation:      cfg.Validation,
	})
	if err != nil {
		return err
	}
	defer instance.Destroy()

	dev, adapter, err := device.Open(instance, device.Options{Required: requiredFeatures})
	if err != nil {
		return err
	}
	defer dev.Destroy()
	vkDevice := dev.(*vulkan.Device)
	logger.Noticef("rendering on %s (%s)", adapter.Properties().Name, adapter.Properties().Type)

	sc, err := scene.Load(cfg.ModelPath, cfg.TexturePath)
	if err != nil {
		return err
	}

	mesh, err := vkDevice.UploadMesh(sc.Mesh)
	if err != nil {
		return gpu.InitError(err, "upload mesh")
	}
	defer mesh.Destroy()

	texture, err := vkDevice.UploadTexture(sc.Texture)
	if err != nil {
		return gpu.InitError(err, "upload texture")
	}
	defer texture.Destroy()

	uniforms, err := vulkan.NewUniforms(vkDevice, texture, scene.DefaultCamera())
	if err != nil {
		return gpu.InitError(err, "create uniforms")
	}
	defer uniforms.Destroy()

	pipelines, err := vulkan.NewPipelineBuilder(vkDevice, vulkan.PipelineOptions{
		VertexShaderPath:   cfg.VertexShaderPath(),
		FragmentShaderPath: cfg.FragmentShaderPath(),
		SetLayout:          uniforms.SetLayout(),
		CachePath:          cfg.PipelineCachePath,
	})
	if err != nil {
		return gpu.InitError(err, "create pipeline builder")
	}
	defer pipelines.Destroy()

	orchestrator, err := frame.New(frame.Config{
		Device:    dev,
		Window:    win,
		Pipelines: pipelines,
		Uniforms:  uniforms,
		Geometry:  mesh.Geometry(),
		Surface: swapchain.Options{
			Preferred:     cfg.PreferredFormat,
			PreferMailbox: cfg.PreferMailbox,
		},
		StatsInterval: cfg.StatsInterval,
	})
	if err != nil {
		return err
	}

	// Fatal errors are logged by the orchestrator and printed by main.
	runErr := orchestrator.Run(cfg.MaxFrames)

	// Close drains the device, so everything deferred above is idle.
	err = errors.CombineErrors(runErr, orchestrator.Close())

	stats := orchestrator.Stats()
	logger.Noticef("%d frames presented, %d rebuilds, average frame %v",
		stats.Frames, stats.Rebuilds, stats.AverageFrame)

	if cacheErr := pipelines.SaveCache(); cacheErr != nil {
		logger.Warningf("pipeline cache not saved: %v", cacheErr)
	}

	return err
}
