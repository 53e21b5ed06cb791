// Package config holds the runtime settings of the renderer.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
)

type Config struct {
	Width  int
	Height int
	Title  string

	ModelPath   string
	TexturePath string
	// Directory holding vert.spv and frag.spv.
	ShaderDir string

	Validation      bool
	PreferredFormat gpu.SurfaceFormat
	PreferMailbox   bool
	// Empty disables the on-disk pipeline cache.
	PipelineCachePath string

	StatsInterval time.Duration
	// Zero renders until the window is closed.
	MaxFrames uint64
}

func Default() Config {
	return Config{
		Width:       1280,
		Height:      720,
		Title:       "framecore",
		ModelPath:   filepath.Join("assets", "models", "model.obj"),
		TexturePath: filepath.Join("assets", "textures", "texture.png"),
		ShaderDir:   filepath.Join("assets", "shaders"),
		PreferredFormat: gpu.SurfaceFormat{
			Format:     gpu.FormatB8G8R8A8SRGB,
			ColorSpace: gpu.ColorSpaceSRGBNonlinear,
		},
		PreferMailbox: true,
		StatsInterval: 5 * time.Second,
	}
}

func (c Config) VertexShaderPath() string {
	return filepath.Join(c.ShaderDir, "vert.spv")
}

func (c Config) FragmentShaderPath() string {
	return filepath.Join(c.ShaderDir, "frag.spv")
}

// Validate checks ranges and that every input file exists.
func (c Config) Validate() error {
	var err error

	if c.Width <= 0 || c.Height <= 0 {
		err = errors.CombineErrors(err, errors.Newf("invalid window size %dx%d", c.Width, c.Height))
	}
	if c.StatsInterval < 0 {
		err = errors.CombineErrors(err, errors.Newf("negative stats interval %s", c.StatsInterval))
	}

	for _, file := range []struct {
		what, path string
	}{
		{"model", c.ModelPath},
		{"texture", c.TexturePath},
		{"vertex shader", c.VertexShaderPath()},
		{"fragment shader", c.FragmentShaderPath()},
	} {
		if file.path == "" {
			err = errors.CombineErrors(err, errors.Newf("no %s path", file.what))
			continue
		}
		if _, statErr := os.Stat(file.path); statErr != nil {
			err = errors.CombineErrors(err, errors.Wrapf(statErr, "%s", file.what))
		}
	}

	if c.PipelineCachePath != "" {
		dir := filepath.Dir(c.PipelineCachePath)
		if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
			err = errors.CombineErrors(err, errors.Newf("pipeline cache directory %s does not exist", dir))
		}
	}

	return errors.Wrap(err, "invalid configuration")
}
