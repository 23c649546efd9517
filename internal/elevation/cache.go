package elevation

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/samschaack/terrastream/internal/geo"
	"github.com/samschaack/terrastream/internal/logger"
	"github.com/samschaack/terrastream/internal/metrics"
)

// Cache is an LRU cache of decoded elevation grids keyed by tile identity.
// Concurrent fetches of the same tile collapse into one source call, and a
// failed fetch completes every waiter with the zero-grid fallback so mesh
// building never stalls on a bad tile.
//
// All mutation (insert, evict, recency) is serialized through the cache's
// own entry points; callers never touch entries directly.
type Cache struct {
	source   Source
	resident *lru.Cache[geo.TileID, *Grid]
	group    singleflight.Group
}

// NewCache builds a cache holding at most capacity tiles.
func NewCache(source Source, capacity int) (*Cache, error) {
	if source == nil {
		return nil, fmt.Errorf("elevation: nil source")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("elevation: cache capacity %d, want > 0", capacity)
	}
	resident, err := lru.NewWithEvict[geo.TileID, *Grid](capacity, func(id geo.TileID, _ *Grid) {
		metrics.CacheEvictions.Inc()
		logger.Debug("tile evicted", zap.Stringer("tile", id))
	})
	if err != nil {
		return nil, fmt.Errorf("elevation: building lru: %w", err)
	}
	return &Cache{source: source, resident: resident}, nil
}

// Fetch returns the grid for a tile, fetching and decoding it if needed.
// Resident tiles return immediately and become most recently used. A fetch
// already in flight is joined, never duplicated. Fetch never returns nil:
// on failure every waiter receives the same zero grid.
func (c *Cache) Fetch(ctx context.Context, id geo.TileID) *Grid {
	if grid, ok := c.resident.Get(id); ok {
		metrics.CacheHits.Inc()
		return grid
	}
	metrics.CacheMisses.Inc()

	v, _, _ := c.group.Do(id.String(), func() (interface{}, error) {
		// A previous flight may have inserted the tile between our miss
		// and this call.
		if grid, ok := c.resident.Get(id); ok {
			return grid, nil
		}

		grid, err := c.source.FetchTile(ctx, id)
		if err != nil {
			logger.Warn("tile fetch failed, using flat fallback",
				zap.Stringer("tile", id), zap.Error(err))
			metrics.TileFetches.WithLabelValues("fallback").Inc()
			grid = Zero(id, c.source.GridSize())
		} else {
			metrics.TileFetches.WithLabelValues("ok").Inc()
		}

		c.resident.Add(id, grid)
		return grid, nil
	})
	return v.(*Grid)
}

// Resident reports whether a tile is held in the cache, without fetching.
func (c *Cache) Resident(id geo.TileID) bool {
	return c.resident.Contains(id)
}

// Peek returns a resident grid without touching recency and without
// triggering a fetch. It is safe for contexts that must not wait, such as
// live height queries.
func (c *Cache) Peek(id geo.TileID) (*Grid, bool) {
	return c.resident.Peek(id)
}

// Len returns the number of resident tiles.
func (c *Cache) Len() int {
	return c.resident.Len()
}
