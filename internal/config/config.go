// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Assets  AssetsConfig  `yaml:"assets"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Intro   IntroConfig   `yaml:"intro"`
	Remote  RemoteConfig  `yaml:"remote"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// AssetsConfig locates the scene and environment files.
// Base is either a directory or an http(s) URL prefix.
type AssetsConfig struct {
	Base        string        `yaml:"base"`
	Scene       string        `yaml:"scene"`
	Environment string        `yaml:"environment"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CameraConfig holds projection and orbit-control settings.
type CameraConfig struct {
	FOV         float32 `yaml:"fov"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
	Damping     float32 `yaml:"damping"`
	FitScale    float32 `yaml:"fit_scale"`
}

// RenderConfig holds the slider-driven parameters and shadow quality.
type RenderConfig struct {
	Exposure      float32 `yaml:"exposure"`
	KeyLight      float32 `yaml:"key_light"`
	AmbientLight  float32 `yaml:"ambient_light"`
	Reflection    float32 `yaml:"reflection"`
	ShadowMapSize int     `yaml:"shadow_map_size"`
	Background    string  `yaml:"background"`
}

// IntroConfig holds the scripted intro timings.
type IntroConfig struct {
	RotationDuration time.Duration `yaml:"rotation_duration"`
	HandoffDelay     time.Duration `yaml:"handoff_delay"`
	AutoStart        bool          `yaml:"auto_start"`
}

// RemoteConfig holds the optional control endpoint.
type RemoteConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock viewer settings.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Showroom",
			Width:  1280,
			Height: 720,
		},
		Assets: AssetsConfig{
			Base:        ".",
			Scene:       "compressed.glb",
			Environment: "hdr2.hdr",
			Timeout:     60 * time.Second,
		},
		Camera: CameraConfig{
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			MinDistance: 5,
			MaxDistance: 50,
			Damping:     0.05,
			FitScale:    1.15,
		},
		Render: RenderConfig{
			Exposure:      1.2,
			KeyLight:      2.5,
			AmbientLight:  0.15,
			Reflection:    1.0,
			ShadowMapSize: 4096,
			Background:    "#f0f0f0",
		},
		Intro: IntroConfig{
			RotationDuration: 7 * time.Second,
			HandoffDelay:     100 * time.Millisecond,
			AutoStart:        true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
