// Package app assembles the terrain streaming engine from its parts and
// drives the headless update loop.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samschaack/terrastream/internal/chunk"
	"github.com/samschaack/terrastream/internal/config"
	"github.com/samschaack/terrastream/internal/elevation"
	"github.com/samschaack/terrastream/internal/geo"
	"github.com/samschaack/terrastream/internal/lod"
	"github.com/samschaack/terrastream/internal/logger"
)

const tickInterval = 100 * time.Millisecond

// App owns the wired streaming pipeline and the optional metrics server.
type App struct {
	cfg     *config.Config
	manager *chunk.Manager
	metrics *http.Server
}

// New wires the tile source, cache, selector and chunk manager from config.
// An empty tile endpoint selects synthetic perlin terrain, which makes the
// engine runnable without network access or an API key.
func New(cfg *config.Config) (*App, error) {
	proj, err := geo.NewProjection(cfg.Origin.CenterLon, cfg.Origin.CenterLat)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}

	var source elevation.Source
	if cfg.Tiles.Endpoint != "" {
		source, err = elevation.NewHTTPSource(cfg.Tiles.Endpoint, cfg.Tiles.APIKey)
		logger.Info("using tile server", zap.String("endpoint", cfg.Tiles.Endpoint))
	} else {
		source, err = elevation.NewNoiseSource(cfg.Tiles.NoiseSeed, 256)
		logger.Info("using synthetic terrain", zap.Int64("seed", cfg.Tiles.NoiseSeed))
	}
	if err != nil {
		return nil, fmt.Errorf("tile source: %w", err)
	}

	cache, err := elevation.NewCache(source, cfg.Tiles.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}

	selector, err := lod.NewSelector(lod.Params{
		MinZoom:      cfg.Tiles.MinZoom,
		MaxZoom:      cfg.Tiles.MaxZoom,
		LodFactor:    cfg.Streaming.LodFactor,
		ViewDistance: cfg.Streaming.ViewDistance,
	}, proj)
	if err != nil {
		return nil, fmt.Errorf("lod selector: %w", err)
	}

	manager, err := chunk.NewManager(chunk.Config{
		Resolution:         cfg.Terrain.Resolution,
		HeightScale:        cfg.Terrain.HeightScale,
		NumWorkers:         cfg.Streaming.NumWorkers,
		MaxConcurrentLoads: cfg.Streaming.MaxConcurrentLoads,
	}, proj, cache, selector, chunk.NullRenderer{})
	if err != nil {
		return nil, fmt.Errorf("chunk manager: %w", err)
	}

	a := &App{cfg: cfg, manager: manager}
	if cfg.Metrics.Listen != "" {
		a.metrics = a.serveMetrics(cfg.Metrics.Listen)
	}
	return a, nil
}

// serveMetrics exposes Prometheus counters on /metrics.
func (a *App) serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// Run streams terrain along a simulated eastward flight until the context
// is cancelled. It stands in for a render loop: each tick is one frame.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// Eastward at 200 m/s, the pace of a small aircraft.
	const speed = 200.0
	start := time.Now()
	lastLog := start

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			viewX := speed * now.Sub(start).Seconds()
			a.manager.Update(viewX, 0)

			if now.Sub(lastLog) >= 5*time.Second {
				lastLog = now
				stats := a.manager.Stats()
				height, known := a.manager.HeightAt(viewX, 0)
				logger.Info("streaming",
					zap.Float64("view_x", viewX),
					zap.Int("ready", stats.Ready),
					zap.Int("pending", stats.Pending),
					zap.Int("built", stats.Built),
					zap.Int("discarded", stats.Discarded),
					zap.Float32("ground_height", height),
					zap.Bool("ground_known", known))
			}
		}
	}
}

// Close shuts down the pipeline and the metrics server.
func (a *App) Close() {
	a.manager.Close()
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", zap.Error(err))
		}
	}
}
