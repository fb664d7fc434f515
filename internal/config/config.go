package config

import (
	"errors"
	"fmt"
	"os"

	"SceneGL/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
	Title  string `yaml:"title"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
}

type Render struct {
	ClearColor  [3]float32 `yaml:"clear_color"`
	DepthTest   bool       `yaml:"depth_test"`
	FaceCulling bool       `yaml:"face_culling"`
	Wireframe   bool       `yaml:"wireframe"`
	// Fov is the default vertical field of view in degrees.
	Fov float32 `yaml:"fov"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config holds engine settings. Fields absent from the file keep their
// default values.
type Config struct {
	Window Window `yaml:"window"`
	Render Render `yaml:"render"`
	Log    Log    `yaml:"log"`
	// Watch reloads material files when they change on disk.
	Watch bool `yaml:"watch"`
}

func Default() Config {
	return Config{
		Window: Window{Width: 1024, Height: 768, Title: "SceneGL", X: 100, Y: 100},
		Render: Render{
			ClearColor:  [3]float32{0.1, 0.1, 0.12},
			DepthTest:   true,
			FaceCulling: true,
			Fov:         45,
		},
		Log: Log{Level: "info", Development: true},
	}
}

// Load reads a YAML config over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Log.Info("No config file found, using defaults", zap.String("path", path))
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	logger.Log.Debug("Config loaded", zap.String("path", path))
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear color %v outside [0,1]", ErrInvalid, c.Render.ClearColor)
		}
	}
	if c.Render.Fov <= 0 || c.Render.Fov >= 180 {
		return fmt.Errorf("%w: fov %g", ErrInvalid, c.Render.Fov)
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
