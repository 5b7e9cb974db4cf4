// Package config provides TOML-based editor configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pixedit/internal/adjust"
	"pixedit/internal/editor"
	pximage "pixedit/internal/image"
	"pixedit/internal/palette"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the user config directory.
const FileName = "pixedit.toml"

type EditorConfig struct {
	OverlayOpacity float64 `toml:"overlay_opacity"`
	OverlayMode    string  `toml:"overlay_mode"` // "add" or "normal"
	HistoryLimit   int     `toml:"history_limit"` // 0 = unbounded
	Verbose        bool    `toml:"verbose"`
}

type PaletteConfig struct {
	Colors   int    `toml:"colors"`
	Method   string `toml:"method"`
	TileSize int    `toml:"tile_size"`
	Sort     bool   `toml:"sort"`
}

type OutputConfig struct {
	JPEGQuality int `toml:"jpeg_quality"`
}

// Config holds everything read from a config file.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Palette PaletteConfig `toml:"palette"`
	Output  OutputConfig  `toml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			OverlayOpacity: adjust.DefaultOpacity,
			OverlayMode:    "add",
		},
		Palette: PaletteConfig{
			Colors:   5,
			Method:   palette.KMeansPP.String(),
			TileSize: palette.DefaultTileSize,
		},
		Output: OutputConfig{
			JPEGQuality: pximage.DefaultJPEGQuality,
		},
	}
}

// DefaultPath returns ~/.config/pixedit/pixedit.toml (or the platform
// equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "pixedit", FileName)
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Editor.OverlayOpacity < 0 || c.Editor.OverlayOpacity > 1 {
		return fmt.Errorf("editor.overlay_opacity must be in [0, 1], got %v", c.Editor.OverlayOpacity)
	}
	if _, err := c.BlendMode(); err != nil {
		return err
	}
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("editor.history_limit must be >= 0, got %d", c.Editor.HistoryLimit)
	}
	if c.Palette.Colors < 1 {
		return fmt.Errorf("palette.colors must be >= 1, got %d", c.Palette.Colors)
	}
	if _, err := palette.ParseMethod(c.Palette.Method); err != nil {
		return fmt.Errorf("palette.method: %w", err)
	}
	if c.Palette.TileSize < 1 {
		return fmt.Errorf("palette.tile_size must be >= 1, got %d", c.Palette.TileSize)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be in [1, 100], got %d", c.Output.JPEGQuality)
	}
	return nil
}

// BlendMode parses editor.overlay_mode.
func (c *Config) BlendMode() (pximage.BlendMode, error) {
	switch c.Editor.OverlayMode {
	case "", "add":
		return pximage.BlendAdd, nil
	case "normal":
		return pximage.BlendNormal, nil
	}
	return 0, fmt.Errorf("editor.overlay_mode must be \"add\" or \"normal\", got %q", c.Editor.OverlayMode)
}

// EditorOptions converts the configuration into editor options. The config
// must have passed Validate.
func (c *Config) EditorOptions() editor.Options {
	opts := editor.DefaultOptions()
	opts.HistoryLimit = c.Editor.HistoryLimit
	opts.OverlayOpacity = c.Editor.OverlayOpacity
	opts.Verbose = c.Editor.Verbose
	opts.Save.JPEGQuality = c.Output.JPEGQuality
	if mode, err := c.BlendMode(); err == nil {
		opts.OverlayMode = mode
	}
	if method, err := palette.ParseMethod(c.Palette.Method); err == nil {
		opts.PaletteMethod = method
	}
	return opts
}
