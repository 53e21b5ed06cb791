package main

import (
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli"

	"github.com/vkngwrapper/framecore/internal/config"
	"github.com/vkngwrapper/framecore/internal/device"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/gpu/gputest"
)

func parseRunFlags(t *testing.T, args ...string) config.Config {
	var cfg config.Config

	app := cli.NewApp()
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Flags: renderFlags,
			Action: func(ctx *cli.Context) error {
				cfg = configFromContext(ctx)
				return nil
			},
		},
	}

	if err := app.Run(append([]string{"framecore", "run"}, args...)); err != nil {
		t.Fatalf("unexpected error parsing %v: %v", args, err)
	}
	return cfg
}

func TestConfigFromDefaultFlags(t *testing.T) {
	got := parseRunFlags(t)
	exp := config.Default()

	if got != exp {
		t.Fatalf("expected default flags to yield %+v; got %+v", exp, got)
	}
}

func TestConfigFromFlags(t *testing.T) {
	specs := []struct {
		args  []string
		check func(cfg config.Config) bool
	}{
		{[]string{"--width", "640", "--height", "480"}, func(cfg config.Config) bool {
			return cfg.Width == 640 && cfg.Height == 480
		}},
		{[]string{"-m", "cube.obj", "-t", "cube.png"}, func(cfg config.Config) bool {
			return cfg.ModelPath == "cube.obj" && cfg.TexturePath == "cube.png"
		}},
		{[]string{"--mailbox=false"}, func(cfg config.Config) bool {
			return !cfg.PreferMailbox
		}},
		{[]string{"--validation"}, func(cfg config.Config) bool {
			return cfg.Validation
		}},
		{[]string{"--stats-interval", "250ms", "--frames", "120"}, func(cfg config.Config) bool {
			return cfg.StatsInterval == 250*time.Millisecond && cfg.MaxFrames == 120
		}},
		{[]string{"--pipeline-cache", "/tmp/cache.bin", "--shaders", "spv"}, func(cfg config.Config) bool {
			return cfg.PipelineCachePath == "/tmp/cache.bin" && cfg.VertexShaderPath() == "spv/vert.spv"
		}},
	}

	for specIndex, spec := range specs {
		cfg := parseRunFlags(t, spec.args...)
		if !spec.check(cfg) {
			t.Fatalf("[spec %d] flags %v produced unexpected config %+v", specIndex, spec.args, cfg)
		}
	}
}

func TestDescribeRating(t *testing.T) {
	eligible := &gputest.Adapter{
		Props: gpu.AdapterProperties{
			Name:                "discrete",
			Type:                gpu.AdapterDiscrete,
			MaxImageDimension2D: 16384,
			ColorSampleCounts:   gpu.Samples1 | gpu.Samples4,
			DepthSampleCounts:   gpu.Samples1 | gpu.Samples4,
		},
		Feats:    requiredFeatures,
		Families: []gpu.QueueFamilyProperties{{Graphics: true, QueueCount: 1}},
		Present:  map[int]bool{0: true},
	}
	lacking := &gputest.Adapter{
		Props:    gpu.AdapterProperties{Name: "old", Type: gpu.AdapterIntegrated, MaxImageDimension2D: 4096},
		Feats:    device.DefaultRequiredFeatures,
		Families: []gpu.QueueFamilyProperties{{Graphics: true, QueueCount: 1}},
	}

	ratings := device.Rate([]gpu.Adapter{eligible, lacking}, requiredFeatures)

	specs := []struct {
		rating device.Rating
		exp    []string
	}{
		{ratings[0], []string{"[Device 00]", "discrete", "Score    17384", "graphics 0, present 0", "Samples  4", "Eligible yes"}},
		{ratings[1], []string{"[Device 01]", "integrated", "Score    0", "Queues   incomplete", "Eligible no, missing [TimelineSemaphore]"}},
	}

	for specIndex, spec := range specs {
		out := describeRating(specIndex, spec.rating)
		for _, exp := range spec.exp {
			if !strings.Contains(out, exp) {
				t.Fatalf("[spec %d] expected output to contain %q; got:\n%s", specIndex, exp, out)
			}
		}
	}
}
