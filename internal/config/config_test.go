package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withAssets(t *testing.T) Config {
	dir := t.TempDir()
	cfg := Default()
	cfg.ModelPath = filepath.Join(dir, "model.obj")
	cfg.TexturePath = filepath.Join(dir, "texture.png")
	cfg.ShaderDir = dir

	for _, path := range []string{cfg.ModelPath, cfg.TexturePath, cfg.VertexShaderPath(), cfg.FragmentShaderPath()} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Fatalf("expected 1280x720; got %dx%d", cfg.Width, cfg.Height)
	}
	if !cfg.PreferMailbox || cfg.StatsInterval != 5*time.Second || cfg.MaxFrames != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := withAssets(t).Validate(); err != nil {
		t.Fatalf("expected valid config; got %v", err)
	}

	specs := []struct {
		mutate func(*Config)
		expErr string
	}{
		{func(c *Config) { c.Width = 0 }, "invalid window size"},
		{func(c *Config) { c.StatsInterval = -time.Second }, "negative stats interval"},
		{func(c *Config) { c.ModelPath = "" }, "no model path"},
		{func(c *Config) { c.TexturePath += ".missing" }, "texture"},
		{func(c *Config) { c.ShaderDir = filepath.Join(c.ShaderDir, "missing") }, "vertex shader"},
		{func(c *Config) { c.PipelineCachePath = "/does/not/exist/cache.bin" }, "pipeline cache directory"},
	}

	for specIndex, spec := range specs {
		cfg := withAssets(t)
		spec.mutate(&cfg)

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErr, err)
		}
	}
}
