package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Terrain.Resolution != 64 {
		t.Errorf("expected resolution 64, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.HeightScale != 1 {
		t.Errorf("expected height scale 1, got %f", cfg.Terrain.HeightScale)
	}

	if cfg.Tiles.Endpoint != "" {
		t.Errorf("expected empty endpoint (synthetic terrain), got %s", cfg.Tiles.Endpoint)
	}
	if cfg.Tiles.MinZoom != 6 || cfg.Tiles.MaxZoom != 12 {
		t.Errorf("expected zoom range 6..12, got %d..%d", cfg.Tiles.MinZoom, cfg.Tiles.MaxZoom)
	}
	if cfg.Tiles.CacheCapacity != 256 {
		t.Errorf("expected cache capacity 256, got %d", cfg.Tiles.CacheCapacity)
	}

	if cfg.Streaming.LodFactor != 2.5 {
		t.Errorf("expected lod factor 2.5, got %f", cfg.Streaming.LodFactor)
	}
	if cfg.Streaming.NumWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Streaming.NumWorkers)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("expected metrics disabled by default, got %s", cfg.Metrics.Listen)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  resolution: 128
  height_scale: 1.5

tiles:
  endpoint: "https://tiles.example.com/terrain"
  api_key: "secret"
  min_zoom: 8
  max_zoom: 14
  cache_capacity: 512

streaming:
  lod_factor: 3.0
  view_distance: 80000
  num_workers: 8
  max_concurrent_loads: 16

origin:
  center_lon: -122.4194
  center_lat: 37.7749

logging:
  level: "debug"
  log_file: "engine.log"

metrics:
  listen: "127.0.0.1:9300"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.Resolution != 128 {
		t.Errorf("expected resolution 128, got %d", cfg.Terrain.Resolution)
	}
	if cfg.Terrain.HeightScale != 1.5 {
		t.Errorf("expected height scale 1.5, got %f", cfg.Terrain.HeightScale)
	}
	if cfg.Tiles.Endpoint != "https://tiles.example.com/terrain" {
		t.Errorf("unexpected endpoint %s", cfg.Tiles.Endpoint)
	}
	if cfg.Tiles.APIKey != "secret" {
		t.Errorf("unexpected api key %s", cfg.Tiles.APIKey)
	}
	if cfg.Tiles.MinZoom != 8 || cfg.Tiles.MaxZoom != 14 {
		t.Errorf("expected zoom range 8..14, got %d..%d", cfg.Tiles.MinZoom, cfg.Tiles.MaxZoom)
	}
	if cfg.Streaming.ViewDistance != 80000 {
		t.Errorf("expected view distance 80000, got %f", cfg.Streaming.ViewDistance)
	}
	if cfg.Streaming.MaxConcurrentLoads != 16 {
		t.Errorf("expected 16 max concurrent loads, got %d", cfg.Streaming.MaxConcurrentLoads)
	}
	if cfg.Origin.CenterLat != 37.7749 {
		t.Errorf("expected center lat 37.7749, got %f", cfg.Origin.CenterLat)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9300" {
		t.Errorf("unexpected metrics listen %s", cfg.Metrics.Listen)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  resolution: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero resolution", func(c *Config) { c.Terrain.Resolution = 0 }, true},
		{"negative height scale", func(c *Config) { c.Terrain.HeightScale = -1 }, true},
		{"zero cache capacity", func(c *Config) { c.Tiles.CacheCapacity = 0 }, true},
		{"inverted zoom range", func(c *Config) { c.Tiles.MinZoom = 10; c.Tiles.MaxZoom = 5 }, true},
		{"zero lod factor", func(c *Config) { c.Streaming.LodFactor = 0 }, true},
		{"zero view distance", func(c *Config) { c.Streaming.ViewDistance = 0 }, true},
		{"zero workers", func(c *Config) { c.Streaming.NumWorkers = 0 }, true},
		{"zero max loads", func(c *Config) { c.Streaming.MaxConcurrentLoads = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateClampsZoom(t *testing.T) {
	cfg := Default()
	cfg.Tiles.MinZoom = -3
	cfg.Tiles.MaxZoom = 40

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Tiles.MinZoom != 0 {
		t.Errorf("expected min zoom clamped to 0, got %d", cfg.Tiles.MinZoom)
	}
	if cfg.Tiles.MaxZoom != 15 {
		t.Errorf("expected max zoom clamped to 15, got %d", cfg.Tiles.MaxZoom)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty absolute path; the exact
	// location depends on the OS.
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  resolution: 32\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "endpoint flag",
			setup: func() { *flagEndpoint = "https://other.example.com" },
			verify: func(cfg *Config) {
				if cfg.Tiles.Endpoint != "https://other.example.com" {
					t.Errorf("unexpected endpoint %s", cfg.Tiles.Endpoint)
				}
			},
			teardown: func() { *flagEndpoint = "" },
		},
		{
			name:  "view distance flag",
			setup: func() { *flagViewDistance = 120000 },
			verify: func(cfg *Config) {
				if cfg.Streaming.ViewDistance != 120000 {
					t.Errorf("expected view distance 120000, got %f", cfg.Streaming.ViewDistance)
				}
			},
			teardown: func() { *flagViewDistance = 0 },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 12 },
			verify: func(cfg *Config) {
				if cfg.Streaming.NumWorkers != 12 {
					t.Errorf("expected 12 workers, got %d", cfg.Streaming.NumWorkers)
				}
			},
			teardown: func() { *flagWorkers = 0 },
		},
		{
			name:  "metrics flag",
			setup: func() { *flagMetrics = ":9300" },
			verify: func(cfg *Config) {
				if cfg.Metrics.Listen != ":9300" {
					t.Errorf("expected metrics listen ':9300', got %s", cfg.Metrics.Listen)
				}
			},
			teardown: func() { *flagMetrics = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
streaming:
  view_distance: 40000
  num_workers: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Flag overrides the file, file overrides the default.
	*flagConfig = configPath
	*flagViewDistance = 90000
	defer func() {
		*flagConfig = ""
		*flagViewDistance = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Streaming.ViewDistance != 90000 {
		t.Errorf("expected view distance 90000 from flag, got %f", cfg.Streaming.ViewDistance)
	}
	if cfg.Streaming.NumWorkers != 2 {
		t.Errorf("expected 2 workers from file, got %d", cfg.Streaming.NumWorkers)
	}
}

func TestSaveRequested(t *testing.T) {
	if SaveRequested() {
		t.Error("save-config should default to off")
	}
	*flagSaveConfig = true
	defer func() { *flagSaveConfig = false }()
	if !SaveRequested() {
		t.Error("save-config flag not reported")
	}
}

func TestSavedConfigIsDiscoverable(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// Save and discovery must agree on the file name.
	cfg := Default()
	if err := cfg.SaveTo(filepath.Join(tmpDir, configFileName)); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("saved config not found by the loader")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Tiles.Endpoint = "https://tiles.example.com"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Tiles.Endpoint != "https://tiles.example.com" {
		t.Errorf("round-tripped endpoint %s", loaded.Tiles.Endpoint)
	}
}
