package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagScene   = flag.String("scene", "", "Scene file name (.glb)")
	flagEnv     = flag.String("env", "", "Environment map file name (.hdr)")
	flagBase    = flag.String("base", "", "Asset directory or http(s) base URL")
	flagWidth   = flag.Int("width", 0, "Window width")
	flagHeight  = flag.Int("height", 0, "Window height")
	flagNoIntro = flag.Bool("no-intro", false, "Do not start the intro automatically")
	flagRemote  = flag.String("remote", "", "Listen address for the websocket control endpoint")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Assets.Scene = *flagScene
	}
	if *flagEnv != "" {
		cfg.Assets.Environment = *flagEnv
	}
	if *flagBase != "" {
		cfg.Assets.Base = *flagBase
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagNoIntro {
		cfg.Intro.AutoStart = false
	}
	if *flagRemote != "" {
		cfg.Remote.Listen = *flagRemote
	}
}
