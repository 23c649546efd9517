package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagEndpoint     = flag.String("endpoint", "", "Elevation tile server base URL")
	flagAPIKey       = flag.String("api-key", "", "Tile server API key")
	flagViewDistance = flag.Float64("view-distance", 0, "Streaming view distance in meters")
	flagWorkers      = flag.Int("workers", 0, "Mesh build worker count")
	flagMetrics      = flag.String("metrics", "", "Prometheus listen address (host:port)")
	flagSaveConfig   = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was passed.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagEndpoint != "" {
		cfg.Tiles.Endpoint = *flagEndpoint
	}
	if *flagAPIKey != "" {
		cfg.Tiles.APIKey = *flagAPIKey
	}
	if *flagViewDistance > 0 {
		cfg.Streaming.ViewDistance = *flagViewDistance
	}
	if *flagWorkers > 0 {
		cfg.Streaming.NumWorkers = *flagWorkers
	}
	if *flagMetrics != "" {
		cfg.Metrics.Listen = *flagMetrics
	}
}
