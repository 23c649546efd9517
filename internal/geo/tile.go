// Package geo provides conversions between geographic coordinates, slippy-map
// tile indices and the local planar world frame used by the streaming engine.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Zoom levels supported by elevation tile providers.
const (
	MinSupportedZoom = 0
	MaxSupportedZoom = 15
)

// maxLatitude bounds latitude before any Web-Mercator math. The projection
// is undefined at the poles.
const maxLatitude = 85.0

// TileID identifies a raster tile in the pyramid.
type TileID struct {
	Zoom int
	X    int
	Y    int
}

// Valid reports whether the tile indices are inside the pyramid at its zoom level.
func (t TileID) Valid() bool {
	if t.Zoom < MinSupportedZoom || t.Zoom > MaxSupportedZoom {
		return false
	}
	n := 1 << t.Zoom
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// Children returns the four tiles covering t at zoom+1.
func (t TileID) Children() [4]TileID {
	z, x, y := t.Zoom+1, t.X*2, t.Y*2
	return [4]TileID{
		{z, x, y},
		{z, x + 1, y},
		{z, x, y + 1},
		{z, x + 1, y + 1},
	}
}

// Parent returns the tile covering t at zoom-1.
func (t TileID) Parent() TileID {
	return TileID{t.Zoom - 1, t.X / 2, t.Y / 2}
}

func (t TileID) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// Bounds is a geographic bounding box in degrees.
type Bounds struct {
	West  float64
	East  float64
	North float64
	South float64
}

// LonLatToTile returns the tile indices containing the given coordinate.
// Latitude is clamped to the Web-Mercator validity range first.
func LonLatToTile(lon, lat float64, zoom int) (x, y int) {
	lat = clamp(lat, -maxLatitude, maxLatitude)
	lon = clamp(lon, -180, 180)
	tile := maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
	n := 1 << zoom
	x = int(tile.X)
	y = int(tile.Y)
	if x >= n {
		x = n - 1
	}
	if y >= n {
		y = n - 1
	}
	return x, y
}

// TileBounds returns the geographic bounds of a tile.
func TileBounds(id TileID) Bounds {
	b := maptile.New(uint32(id.X), uint32(id.Y), maptile.Zoom(id.Zoom)).Bound()
	return Bounds{
		West:  b.Min.Lon(),
		East:  b.Max.Lon(),
		North: b.Max.Lat(),
		South: b.Min.Lat(),
	}
}

// TileCenter returns the geographic center of a tile.
func TileCenter(id TileID) (lon, lat float64) {
	b := TileBounds(id)
	return (b.West + b.East) / 2, (b.North + b.South) / 2
}

// TileSizeMeters returns the approximate edge length of a tile in meters
// at the given latitude.
func TileSizeMeters(zoom int, lat float64) float64 {
	const earthCircumference = 40075016.686
	lat = clamp(lat, -maxLatitude, maxLatitude)
	return earthCircumference * math.Cos(lat*math.Pi/180) / float64(int(1)<<zoom)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
