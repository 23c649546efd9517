// Package lod selects the set of terrain tiles relevant to a viewpoint.
//
// The selector walks the tile pyramid as a quadtree: tiles near the viewer
// are subdivided into their four children at the next zoom level, tiles far
// away stay coarse. The traversal is stateless and rebuilt from scratch on
// every query; no tree survives between frames.
package lod

import (
	"fmt"
	"math"

	"github.com/samschaack/terrastream/internal/geo"
)

// Params configures the level-of-detail policy.
type Params struct {
	// MinZoom is the coarsest zoom level; traversal starts here.
	MinZoom int
	// MaxZoom is the finest zoom level; no tile descends past it.
	MaxZoom int
	// LodFactor scales the subdivision distance: a tile subdivides while
	// the viewpoint is closer than LodFactor times the tile edge length.
	LodFactor float64
	// ViewDistance is the streaming radius in meters.
	ViewDistance float64
}

// Descriptor is a terminal tile selected for the current frame, with its
// placement in the world frame.
type Descriptor struct {
	Tile geo.TileID

	// World-space footprint on the XZ plane. MinZ is the northern edge.
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// CenterX returns the x coordinate of the footprint center.
func (d Descriptor) CenterX() float64 { return (d.MinX + d.MaxX) / 2 }

// CenterZ returns the z coordinate of the footprint center.
func (d Descriptor) CenterZ() float64 { return (d.MinZ + d.MaxZ) / 2 }

// Selector performs quadtree tile selection. It holds no per-frame state
// and performs no I/O.
type Selector struct {
	params Params
	proj   geo.Projection
}

// NewSelector validates the parameters and builds a selector. Zoom levels
// outside the provider's supported range are clamped rather than rejected.
func NewSelector(params Params, proj geo.Projection) (*Selector, error) {
	if params.MinZoom < geo.MinSupportedZoom {
		params.MinZoom = geo.MinSupportedZoom
	}
	if params.MaxZoom > geo.MaxSupportedZoom {
		params.MaxZoom = geo.MaxSupportedZoom
	}
	if params.MinZoom > params.MaxZoom {
		return nil, fmt.Errorf("lod: min zoom %d above max zoom %d", params.MinZoom, params.MaxZoom)
	}
	if params.LodFactor <= 0 {
		return nil, fmt.Errorf("lod: lod factor %f, want > 0", params.LodFactor)
	}
	if params.ViewDistance <= 0 {
		return nil, fmt.Errorf("lod: view distance %f, want > 0", params.ViewDistance)
	}
	return &Selector{params: params, proj: proj}, nil
}

// Params returns the validated (clamped) parameters.
func (s *Selector) Params() Params { return s.params }

// Select returns the deduplicated set of terminal tiles for a viewpoint
// given in world meters. Output order is deterministic for a fixed input.
func (s *Selector) Select(viewX, viewZ float64) []Descriptor {
	lon, lat := s.proj.WorldToLonLat(viewX, viewZ)

	// Seed with the minZoom tiles covering the view radius. Tiles narrow
	// toward the poles, so the radius must come from the tile size at the
	// poleward edge of the view disc, not at the viewpoint: a disc spanning
	// several degrees of latitude needs more index steps per meter on its
	// poleward rows than at its center.
	cx, cy := geo.LonLatToTile(lon, lat, s.params.MinZoom)
	_, latNorth := s.proj.WorldToLonLat(viewX, viewZ-s.params.ViewDistance)
	_, latSouth := s.proj.WorldToLonLat(viewX, viewZ+s.params.ViewDistance)
	poleward := math.Max(math.Abs(latNorth), math.Abs(latSouth))
	seedSize := geo.TileSizeMeters(s.params.MinZoom, poleward)
	radius := int(math.Ceil(s.params.ViewDistance/seedSize)) + 1

	var out []Descriptor
	seen := make(map[geo.TileID]struct{})
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			id := geo.TileID{Zoom: s.params.MinZoom, X: cx + dx, Y: cy + dy}
			if !id.Valid() {
				continue
			}
			out = s.descend(id, viewX, viewZ, seen, out)
		}
	}
	return out
}

// descend recursively subdivides a tile toward the viewpoint and appends
// terminal descriptors.
func (s *Selector) descend(id geo.TileID, viewX, viewZ float64, seen map[geo.TileID]struct{}, out []Descriptor) []Descriptor {
	d := s.describe(id)
	size := math.Max(d.MaxX-d.MinX, d.MaxZ-d.MinZ)
	dist := math.Hypot(d.CenterX()-viewX, d.CenterZ()-viewZ)

	// Cull tiles entirely beyond the streaming radius.
	if dist > s.params.ViewDistance+size {
		return out
	}

	// Ties resolve to not subdividing, so a viewpoint sitting exactly on
	// the threshold does not oscillate between levels.
	if id.Zoom < s.params.MaxZoom && dist < s.params.LodFactor*size {
		for _, child := range id.Children() {
			out = s.descend(child, viewX, viewZ, seen, out)
		}
		return out
	}

	if _, dup := seen[id]; dup {
		return out
	}
	seen[id] = struct{}{}
	return append(out, d)
}

// describe projects a tile's geographic bounds into the world frame.
func (s *Selector) describe(id geo.TileID) Descriptor {
	b := geo.TileBounds(id)
	minX, minZ := s.proj.LonLatToWorld(b.West, b.North)
	maxX, maxZ := s.proj.LonLatToWorld(b.East, b.South)
	return Descriptor{
		Tile: id,
		MinX: minX,
		MinZ: minZ,
		MaxX: maxX,
		MaxZ: maxZ,
	}
}
