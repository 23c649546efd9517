// Package config handles engine configuration loading and management.
package config

import (
	"fmt"

	"github.com/samschaack/terrastream/internal/geo"
)

// Config holds all engine settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Tiles     TilesConfig     `yaml:"tiles"`
	Streaming StreamingConfig `yaml:"streaming"`
	Origin    OriginConfig    `yaml:"origin"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TerrainConfig holds mesh generation settings.
type TerrainConfig struct {
	Resolution  int     `yaml:"resolution"`   // Cells per chunk edge
	HeightScale float32 `yaml:"height_scale"` // Vertical exaggeration
}

// TilesConfig holds elevation tile source settings.
type TilesConfig struct {
	Endpoint      string `yaml:"endpoint"` // Tile server base URL; empty uses synthetic terrain
	APIKey        string `yaml:"api_key"`
	NoiseSeed     int64  `yaml:"noise_seed"` // Seed for synthetic terrain
	MinZoom       int    `yaml:"min_zoom"`
	MaxZoom       int    `yaml:"max_zoom"`
	CacheCapacity int    `yaml:"cache_capacity"` // Resident tiles before eviction
}

// StreamingConfig holds chunk streaming settings.
type StreamingConfig struct {
	LodFactor          float64 `yaml:"lod_factor"` // Subdivide while distance < factor * tile size
	ViewDistance       float64 `yaml:"view_distance"`
	NumWorkers         int     `yaml:"num_workers"`
	MaxConcurrentLoads int     `yaml:"max_concurrent_loads"`
}

// OriginConfig anchors the local world frame on the globe.
type OriginConfig struct {
	CenterLon float64 `yaml:"center_lon"`
	CenterLat float64 `yaml:"center_lat"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // host:port for /metrics; empty disables
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Resolution:  64,
			HeightScale: 1,
		},
		Tiles: TilesConfig{
			Endpoint:      "",
			NoiseSeed:     1337,
			MinZoom:       6,
			MaxZoom:       12,
			CacheCapacity: 256,
		},
		Streaming: StreamingConfig{
			LodFactor:          2.5,
			ViewDistance:       60000,
			NumWorkers:         4,
			MaxConcurrentLoads: 8,
		},
		Origin: OriginConfig{
			CenterLon: 8.5417, // Zurich
			CenterLat: 47.3769,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Metrics: MetricsConfig{
			Listen: "",
		},
	}
}

// Validate checks the config for values the engine cannot run with and
// clamps zooms to the supported tile pyramid.
func (c *Config) Validate() error {
	if c.Terrain.Resolution <= 0 {
		return fmt.Errorf("terrain.resolution %d, want > 0", c.Terrain.Resolution)
	}
	if c.Terrain.HeightScale <= 0 {
		return fmt.Errorf("terrain.height_scale %f, want > 0", c.Terrain.HeightScale)
	}
	if c.Tiles.CacheCapacity <= 0 {
		return fmt.Errorf("tiles.cache_capacity %d, want > 0", c.Tiles.CacheCapacity)
	}
	if c.Tiles.MinZoom < geo.MinSupportedZoom {
		c.Tiles.MinZoom = geo.MinSupportedZoom
	}
	if c.Tiles.MaxZoom > geo.MaxSupportedZoom {
		c.Tiles.MaxZoom = geo.MaxSupportedZoom
	}
	if c.Tiles.MinZoom > c.Tiles.MaxZoom {
		return fmt.Errorf("tiles.min_zoom %d exceeds tiles.max_zoom %d", c.Tiles.MinZoom, c.Tiles.MaxZoom)
	}
	if c.Streaming.LodFactor <= 0 {
		return fmt.Errorf("streaming.lod_factor %f, want > 0", c.Streaming.LodFactor)
	}
	if c.Streaming.ViewDistance <= 0 {
		return fmt.Errorf("streaming.view_distance %f, want > 0", c.Streaming.ViewDistance)
	}
	if c.Streaming.NumWorkers <= 0 {
		return fmt.Errorf("streaming.num_workers %d, want > 0", c.Streaming.NumWorkers)
	}
	if c.Streaming.MaxConcurrentLoads <= 0 {
		return fmt.Errorf("streaming.max_concurrent_loads %d, want > 0", c.Streaming.MaxConcurrentLoads)
	}
	return nil
}
