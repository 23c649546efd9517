// Package chunk orchestrates the terrain streaming pipeline: it diffs the
// desired tile set against resident chunks every frame, drives tile fetches
// and mesh builds, and manages chunk lifecycle from pending to ready to
// removed.
package chunk

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/samschaack/terrastream/internal/elevation"
	"github.com/samschaack/terrastream/internal/geo"
	"github.com/samschaack/terrastream/internal/lod"
	"github.com/samschaack/terrastream/internal/logger"
	"github.com/samschaack/terrastream/internal/mesh"
	"github.com/samschaack/terrastream/internal/metrics"
	"github.com/samschaack/terrastream/internal/worker"
)

// State is the lifecycle state of a resident chunk.
type State int

const (
	// StatePending means the chunk's fetch or build is in flight.
	StatePending State = iota
	// StateReady means the chunk's mesh is uploaded and visible.
	StateReady
)

// Config holds the manager's tuning parameters.
type Config struct {
	// Resolution is the number of cells per chunk edge; a chunk has
	// (Resolution+1)^2 vertices.
	Resolution int
	// HeightScale multiplies elevation samples into world Y.
	HeightScale float32
	// NumWorkers is the mesh build pool size.
	NumWorkers int
	// MaxConcurrentLoads bounds simultaneous fetch+build pipelines,
	// independently of the pool size, so a fast-moving viewpoint cannot
	// cause a fetch storm.
	MaxConcurrentLoads int
}

type buildResult struct {
	key     geo.TileID
	buffers *mesh.Buffers
}

type record struct {
	state   State
	discard bool // no longer desired; drop the result when it arrives
	handle  Handle
	originX float64 // world position of the chunk's north-west corner
	originZ float64
}

// Stats is a snapshot of streaming counters.
type Stats struct {
	Ready     int
	Pending   int
	Built     int
	Discarded int
}

// Manager owns the per-frame update loop. Update must be called from a
// single goroutine; all chunk state is confined to it. Only the tile cache
// is shared with the background fetch goroutines, and it serializes its
// own mutation.
type Manager struct {
	cfg      Config
	proj     geo.Projection
	cache    *elevation.Cache
	selector *lod.Selector
	renderer Renderer
	pool     *worker.Pool[buildResult]

	chunks   map[geo.TileID]*record
	inflight int
	seq      uint64
	free     []*mesh.Buffers

	built     int
	discarded int
}

// NewManager wires the streaming pipeline together.
func NewManager(cfg Config, proj geo.Projection, cache *elevation.Cache, selector *lod.Selector, renderer Renderer) (*Manager, error) {
	if cfg.Resolution <= 0 {
		return nil, fmt.Errorf("chunk: resolution %d, want > 0", cfg.Resolution)
	}
	if cfg.NumWorkers <= 0 {
		return nil, fmt.Errorf("chunk: %d workers, want > 0", cfg.NumWorkers)
	}
	if cfg.MaxConcurrentLoads <= 0 {
		return nil, fmt.Errorf("chunk: max concurrent loads %d, want > 0", cfg.MaxConcurrentLoads)
	}
	if cache == nil || selector == nil || renderer == nil {
		return nil, fmt.Errorf("chunk: nil collaborator")
	}

	// The queue never fills while the load throttle holds, so a submit
	// only fails after Close.
	pool, err := worker.New[buildResult](cfg.NumWorkers, cfg.MaxConcurrentLoads+cfg.NumWorkers)
	if err != nil {
		return nil, fmt.Errorf("chunk: building pool: %w", err)
	}

	return &Manager{
		cfg:      cfg,
		proj:     proj,
		cache:    cache,
		selector: selector,
		renderer: renderer,
		pool:     pool,
		chunks:   make(map[geo.TileID]*record),
	}, nil
}

// Update advances the streaming state for one frame at the given viewpoint
// (world meters). It applies finished builds, diffs the desired tile set
// against resident chunks, starts missing builds up to the load throttle
// and re-places every visible chunk relative to the viewpoint.
func (m *Manager) Update(viewX, viewZ float64) {
	m.drainCompletions()

	desired := m.selector.Select(viewX, viewZ)
	desiredSet := make(map[geo.TileID]struct{}, len(desired))
	for _, d := range desired {
		desiredSet[d.Tile] = struct{}{}
	}

	// Retire chunks that fell out of the desired set. In-flight work
	// cannot be preempted, so pending chunks are marked for discard on
	// arrival instead.
	for key, rec := range m.chunks {
		if _, ok := desiredSet[key]; ok {
			if rec.state == StatePending {
				rec.discard = false // re-desired before the build landed
			}
			continue
		}
		if rec.state == StatePending {
			rec.discard = true
			continue
		}
		m.renderer.Release(rec.handle)
		delete(m.chunks, key)
		metrics.ResidentChunks.Dec()
		logger.Debug("chunk removed", zap.Stringer("tile", key))
	}

	// Start builds for desired chunks that are not resident yet, up to
	// the concurrency throttle. The rest wait for a later frame.
	for _, d := range desired {
		if m.inflight >= m.cfg.MaxConcurrentLoads {
			break
		}
		if _, ok := m.chunks[d.Tile]; ok {
			continue
		}
		m.startBuild(d)
	}

	// Floating origin: translate every visible chunk by the negative
	// viewpoint so geometry stays near world zero.
	for _, rec := range m.chunks {
		if rec.state != StateReady {
			continue
		}
		m.renderer.Place(rec.handle, mgl32.Translate3D(
			float32(rec.originX-viewX), 0, float32(rec.originZ-viewZ)))
	}
}

// startBuild marks a chunk pending and launches its fetch+build pipeline.
func (m *Manager) startBuild(d lod.Descriptor) {
	m.chunks[d.Tile] = &record{
		state:   StatePending,
		originX: d.MinX,
		originZ: d.MinZ,
	}
	m.inflight++
	metrics.PendingBuilds.Inc()

	seq := m.seq
	m.seq++
	buf := m.takeBuffers()
	tile := d.Tile
	// Meshes are built in chunk-local coordinates anchored at the
	// north-west corner; placement happens per frame.
	local := mesh.Bounds{
		MaxX: float32(d.MaxX - d.MinX),
		MaxZ: float32(d.MaxZ - d.MinZ),
	}

	go func() {
		grid := m.cache.Fetch(context.Background(), tile)
		ok := m.pool.Submit(seq, func() buildResult {
			mesh.Build(grid, local, m.cfg.Resolution, m.cfg.HeightScale, buf)
			return buildResult{key: tile, buffers: buf}
		})
		if !ok {
			logger.Debug("build submit rejected, pool closed", zap.Stringer("tile", tile))
		}
	}()
}

// drainCompletions applies every finished build without blocking.
func (m *Manager) drainCompletions() {
	for {
		select {
		case c := <-m.pool.Results():
			m.applyCompletion(c.Value)
		default:
			return
		}
	}
}

// applyCompletion transitions a pending chunk to ready, or discards the
// result if the chunk was superseded while the build was in flight.
func (m *Manager) applyCompletion(r buildResult) {
	m.inflight--
	metrics.PendingBuilds.Dec()

	rec, ok := m.chunks[r.key]
	if !ok || rec.state != StatePending || rec.discard {
		if ok && rec.state == StatePending {
			delete(m.chunks, r.key)
		}
		m.putBuffers(r.buffers)
		m.discarded++
		metrics.BuildsDiscarded.Inc()
		logger.Debug("stale build discarded", zap.Stringer("tile", r.key))
		return
	}

	rec.handle = m.renderer.Upload(r.buffers)
	rec.state = StateReady
	m.putBuffers(r.buffers)
	m.built++
	metrics.BuildsCompleted.Inc()
	metrics.ResidentChunks.Inc()
}

// HeightAt returns the terrain height at a world position using only
// resident tiles, finest zoom first. It never blocks and never triggers a
// fetch, so it is safe for per-frame gameplay queries. The second return
// is false when no covering tile is resident yet.
func (m *Manager) HeightAt(worldX, worldZ float64) (float32, bool) {
	lon, lat := m.proj.WorldToLonLat(worldX, worldZ)
	p := m.selector.Params()
	for zoom := p.MaxZoom; zoom >= p.MinZoom; zoom-- {
		x, y := geo.LonLatToTile(lon, lat, zoom)
		grid, ok := m.cache.Peek(geo.TileID{Zoom: zoom, X: x, Y: y})
		if !ok {
			continue
		}
		b := grid.Bounds
		u := (lon - b.West) / (b.East - b.West)
		v := (b.North - lat) / (b.North - b.South)
		return grid.SampleBilinear(float32(u), float32(v)) * m.cfg.HeightScale, true
	}
	return 0, false
}

// Busy reports whether any fetch or build is outstanding, including
// completions not yet applied by Update.
func (m *Manager) Busy() bool {
	return m.inflight > 0 || m.pool.Busy()
}

// Stats returns a snapshot of the streaming counters.
func (m *Manager) Stats() Stats {
	s := Stats{Built: m.built, Discarded: m.discarded}
	for _, rec := range m.chunks {
		switch rec.state {
		case StateReady:
			s.Ready++
		case StatePending:
			s.Pending++
		}
	}
	return s
}

// ReadyKeys returns the keys of all visible chunks.
func (m *Manager) ReadyKeys() []geo.TileID {
	keys := make([]geo.TileID, 0, len(m.chunks))
	for key, rec := range m.chunks {
		if rec.state == StateReady {
			keys = append(keys, key)
		}
	}
	return keys
}

// Close tears down the pipeline: waits for in-flight builds, discards
// their results and releases every visible chunk.
func (m *Manager) Close() {
	m.pool.Close()
	for c := range m.pool.Results() {
		m.putBuffers(c.Value.buffers)
	}
	for key, rec := range m.chunks {
		if rec.state == StateReady {
			m.renderer.Release(rec.handle)
			metrics.ResidentChunks.Dec()
		}
		delete(m.chunks, key)
	}
}

// takeBuffers pops a buffer set from the free list, or allocates one.
// Reuse avoids reallocation churn across chunk create/destroy cycles.
func (m *Manager) takeBuffers() *mesh.Buffers {
	if n := len(m.free); n > 0 {
		buf := m.free[n-1]
		m.free = m.free[:n-1]
		return buf
	}
	return mesh.NewBuffers(m.cfg.Resolution)
}

func (m *Manager) putBuffers(buf *mesh.Buffers) {
	if buf == nil {
		return
	}
	m.free = append(m.free, buf)
}
