// Package metrics exposes Prometheus instrumentation for the streaming engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TileFetches counts source fetches by result ("ok" or "fallback").
	TileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terrastream_tile_fetches_total",
		Help: "Elevation tile fetches against the tile source, by result.",
	}, []string{"result"})

	// CacheHits counts tile cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrastream_tile_cache_hits_total",
		Help: "Tile cache hits.",
	})

	// CacheMisses counts tile cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrastream_tile_cache_misses_total",
		Help: "Tile cache misses.",
	})

	// CacheEvictions counts tiles evicted from the cache.
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrastream_tile_cache_evictions_total",
		Help: "Tiles evicted from the cache.",
	})

	// BuildsCompleted counts finished mesh builds.
	BuildsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrastream_mesh_builds_total",
		Help: "Completed mesh builds.",
	})

	// BuildsDiscarded counts builds whose chunk was no longer desired on arrival.
	BuildsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrastream_mesh_builds_discarded_total",
		Help: "Mesh builds discarded because the chunk was superseded while pending.",
	})

	// ResidentChunks tracks chunks currently in the Ready state.
	ResidentChunks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrastream_resident_chunks",
		Help: "Chunks currently resident and visible.",
	})

	// PendingBuilds tracks fetch+build pipelines currently in flight.
	PendingBuilds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrastream_pending_builds",
		Help: "Chunk builds currently in flight.",
	})
)
