// Package config loads viewer settings from defaults and an optional TOML
// file. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/taigrr/meshview/internal/convert"
	"github.com/taigrr/meshview/pkg/math3d"
	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/render"
	"github.com/taigrr/meshview/pkg/viewer"
)

// FileName is the config file looked up in the user config directory.
const FileName = "meshview.toml"

// Config holds every user-tunable setting.
type Config struct {
	FOV            float64    `toml:"fov"`
	CameraDistance float64    `toml:"camera_distance"`
	RotateSpeed    float64    `toml:"rotate_speed"`
	Background     string     `toml:"background"`
	GridColor      string     `toml:"grid_color"`
	TextColor      string     `toml:"text_color"`
	GridSpacing    int        `toml:"grid_spacing"`
	Palette        []string   `toml:"palette"`
	Light          [3]float64 `toml:"light"`
	Inertia        bool       `toml:"inertia"`
	CarryVertices  bool       `toml:"carry_vertices"`
	WatchDebounce  Duration   `toml:"watch_debounce"`
	Converter      Converter  `toml:"converter"`
}

// Converter configures the external mesh conversion tool.
type Converter struct {
	Command string   `toml:"command"`
	Script  string   `toml:"script"`
	Args    []string `toml:"args"`
	Stride  string   `toml:"stride"`
	Format  string   `toml:"format"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	light := render.DefaultLight()
	theme := render.DefaultTheme()
	return Config{
		FOV:            render.DefaultFOV,
		CameraDistance: render.DefaultDistance,
		RotateSpeed:    viewer.DefaultRotateSpeed,
		Background:     hex(theme.Background),
		GridColor:      hex(theme.Grid),
		TextColor:      hex(theme.Text),
		GridSpacing:    render.DefaultGridSpacing,
		Palette:        models.DefaultPaletteHex(),
		Light:          [3]float64{light.X, light.Y, light.Z},
		Inertia:        true,
		WatchDebounce:  Duration{250 * time.Millisecond},
		Converter: Converter{
			Command: "python3",
			Script:  "migoto_to_fbx.py",
			Stride:  "auto",
			Format:  "all",
		},
	}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// DefaultPath returns the config file location in the user config
// directory, or "" if there is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "meshview", FileName)
}

// Load returns the defaults overlaid with the TOML file at path. A missing
// file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and colors.
func (c Config) Validate() error {
	if c.FOV <= 0 {
		return fmt.Errorf("fov must be positive, got %v", c.FOV)
	}
	if c.CameraDistance <= 0 {
		return fmt.Errorf("camera_distance must be positive, got %v", c.CameraDistance)
	}
	if c.RotateSpeed <= 0 {
		return fmt.Errorf("rotate_speed must be positive, got %v", c.RotateSpeed)
	}
	if c.GridSpacing <= 0 {
		return fmt.Errorf("grid_spacing must be positive, got %d", c.GridSpacing)
	}
	if c.WatchDebounce.Duration < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %v", c.WatchDebounce)
	}
	for name, v := range map[string]string{
		"background": c.Background,
		"grid_color": c.GridColor,
		"text_color": c.TextColor,
	} {
		if _, err := models.ParseColor(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := models.ParsePalette(c.Palette); err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	return nil
}

// RenderOptions converts the settings to render options. The config must be
// valid.
func (c Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Lens = render.Lens{FOV: c.FOV, Distance: c.CameraDistance}
	opts.Light = math3d.V3(c.Light[0], c.Light[1], c.Light[2])
	opts.GridSpacing = c.GridSpacing
	if bg, err := models.ParseColor(c.Background); err == nil {
		opts.Theme.Background = bg
	}
	if g, err := models.ParseColor(c.GridColor); err == nil {
		opts.Theme.Grid = g
	}
	if t, err := models.ParseColor(c.TextColor); err == nil {
		opts.Theme.Text = t
	}
	return opts
}

// LoadOptions converts the settings to mesh loader options.
func (c Config) LoadOptions() models.LoadOptions {
	palette, err := models.ParsePalette(c.Palette)
	if err != nil {
		palette = models.DefaultPalette()
	}
	return models.LoadOptions{
		Palette:       palette,
		CarryVertices: c.CarryVertices,
	}
}

// ViewerOptions returns the viewer options implied by the settings.
func (c Config) ViewerOptions() []viewer.Option {
	return []viewer.Option{
		viewer.WithRenderOptions(c.RenderOptions()),
		viewer.WithLoadOptions(c.LoadOptions()),
		viewer.WithRotateSpeed(c.RotateSpeed),
	}
}

// Request builds a conversion request for the given directories.
func (c Converter) Request(buffers, output string) convert.Request {
	return convert.Request{
		Command: c.Command,
		Script:  c.Script,
		Args:    c.Args,
		Buffers: buffers,
		Output:  output,
		Stride:  c.Stride,
		Format:  c.Format,
	}
}
