// Package config loads the kathputli YAML configuration and turns its
// name-keyed sections into the typed rig and renderer configs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kathputli/internal/applog"
	"github.com/ayusman/kathputli/internal/capture"
	"github.com/ayusman/kathputli/internal/detector"
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/puppet"
	"github.com/ayusman/kathputli/internal/rig"
	"github.com/ayusman/kathputli/internal/sprite"
)

// Environment variables that override the file.
const (
	EnvAddr    = "KATHPUTLI_ADDR"
	EnvCamera  = "KATHPUTLI_CAMERA"
	EnvSprites = "KATHPUTLI_SPRITES"
)

// Server configures the HTTP front end and data directory.
type Server struct {
	Addr string `yaml:"addr"`
	// StaticDir overrides web directory discovery.
	StaticDir string `yaml:"static_dir"`
	// DataDir holds the sqlite database. Empty means ~/.kathputli.
	DataDir string `yaml:"data_dir"`
	// Hotkeys registers the global environment shortcuts.
	Hotkeys bool `yaml:"hotkeys"`
	// Tray shows the system tray menu.
	Tray bool `yaml:"tray"`
	// Window shows the local preview window.
	Window bool `yaml:"window"`
}

// Sprites locates the bitmaps and their pivots.
type Sprites struct {
	// Dir holds <partId>.png files. Empty uses flat placeholders.
	Dir string `yaml:"dir"`
	// PreRotate rotates parts at load, in degrees counter-clockwise.
	PreRotate map[string]float64 `yaml:"pre_rotate"`
	// Pivots overrides the sprite-center pivot, in normalized sprite coordinates.
	Pivots map[string]geom.Point `yaml:"pivots"`
}

// Sensors configures external environment sensors.
type Sensors struct {
	// Dir holds one subdirectory per sensor. Empty means <data dir>/sensors.
	Dir      string        `yaml:"dir"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Rig is the name-keyed form of rig.Config.
type Rig struct {
	Joints     map[string]rig.Calibration `yaml:"joints"`
	BodyTilt   float64                    `yaml:"body_tilt"`
	RestAnchor *geom.Point                `yaml:"rest_anchor"`
}

// Config is the whole configuration file.
type Config struct {
	Mode        string            `yaml:"mode"`
	Canvas      geom.Size         `yaml:"canvas"`
	Camera      capture.Config    `yaml:"camera"`
	Detector    detector.Config   `yaml:"detector"`
	CascadePath string            `yaml:"cascade_path"`
	Server      Server            `yaml:"server"`
	Log         applog.Config     `yaml:"log"`
	Sprites     Sprites           `yaml:"sprites"`
	Sensors     Sensors           `yaml:"sensors"`
	Rig         Rig               `yaml:"rig"`
	Render      puppet.Config     `yaml:"render"`
	Environment environment.State `yaml:"environment"`
}

// Default returns the reference configuration for the bundled puppet.
func Default() *Config {
	rc := rig.DefaultConfig()

	joints := make(map[string]rig.Calibration)
	for id, cal := range rc.Joints {
		if cal != (rig.Calibration{}) {
			joints[rig.AngleID(id).String()] = cal
		}
	}

	preRotate := make(map[string]float64, len(sprite.DefaultPreRotation))
	for id, deg := range sprite.DefaultPreRotation {
		preRotate[string(id)] = deg
	}

	return &Config{
		Mode:     "puppet",
		Canvas:   rc.Canvas,
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Server: Server{
			Addr:    ":8080",
			Hotkeys: true,
			Tray:    true,
			Window:  true,
		},
		Log: applog.DefaultConfig(),
		Sprites: Sprites{
			PreRotate: preRotate,
		},
		Sensors: Sensors{
			Interval: time.Minute,
			Timeout:  5 * time.Second,
		},
		Rig: Rig{
			Joints:   joints,
			BodyTilt: rc.BodyTilt,
		},
		Render:      puppet.DefaultConfig(),
		Environment: environment.Default(),
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv(EnvAddr, c.Server.Addr)
	c.Sprites.Dir = getEnv(EnvSprites, c.Sprites.Dir)

	if v := os.Getenv(EnvCamera); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid camera id %q", EnvCamera, v)
		}
		c.Camera.DeviceID = id
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// RigConfig resolves joint names into a rig.Config. Unknown names yield a
// *puppet.ConfigurationError.
func (c *Config) RigConfig() (rig.Config, error) {
	out := rig.Config{
		Canvas:   c.Canvas,
		BodyTilt: c.Rig.BodyTilt,
	}
	if c.Rig.RestAnchor != nil {
		out.RestAnchor = *c.Rig.RestAnchor
	} else {
		// Rest where the tracked puppet lands on its fixed layout.
		out.RestAnchor = c.Render.BodyAnchor.Sub(c.Render.TrackedOffset)
	}

	names := make([]string, 0, len(c.Rig.Joints))
	for name := range c.Rig.Joints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		id, err := rig.ParseAngle(name)
		if err != nil {
			return rig.Config{}, &puppet.ConfigurationError{Kind: "joint", Name: name}
		}
		out.Joints[id] = c.Rig.Joints[name]
	}

	if err := out.Validate(); err != nil {
		return rig.Config{}, err
	}
	return out, nil
}

// RenderConfig returns the validated renderer configuration.
func (c *Config) RenderConfig() (puppet.Config, error) {
	if err := c.Render.Validate(); err != nil {
		return puppet.Config{}, fmt.Errorf("render: %w", err)
	}
	return c.Render, nil
}

// PreRotation returns the per-part load rotations.
func (c *Config) PreRotation() map[puppet.PartID]float64 {
	out := make(map[puppet.PartID]float64, len(c.Sprites.PreRotate))
	for name, deg := range c.Sprites.PreRotate {
		out[puppet.PartID(name)] = deg
	}
	return out
}

// Pivots returns the per-part pivot overrides.
func (c *Config) Pivots() map[puppet.PartID]geom.Point {
	if len(c.Sprites.Pivots) == 0 {
		return nil
	}
	out := make(map[puppet.PartID]geom.Point, len(c.Sprites.Pivots))
	for name, p := range c.Sprites.Pivots {
		out[puppet.PartID(name)] = p
	}
	return out
}

// SpriteLibrary loads the configured sprites, or placeholders when no
// directory is set.
func (c *Config) SpriteLibrary() (*sprite.Library, error) {
	if c.Sprites.Dir == "" {
		return sprite.Placeholders(), nil
	}
	return sprite.Load(c.Sprites.Dir, c.PreRotation())
}
