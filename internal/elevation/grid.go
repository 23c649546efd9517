// Package elevation decodes raster elevation tiles and caches them for the
// streaming engine. Tiles use the terrain-RGB encoding: each pixel packs an
// elevation sample as height = -10000 + (R*65536 + G*256 + B) * 0.1 meters.
package elevation

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"github.com/samschaack/terrastream/internal/geo"
)

// Grid is an immutable square grid of elevation samples in meters.
// Row 0 is the northern edge of the tile. Grids are safe to share across
// goroutines once built.
type Grid struct {
	ID      geo.TileID
	Size    int
	Bounds  geo.Bounds
	samples []float32
}

// DecodeImage decodes a terrain-RGB raster into an elevation grid.
// The raster must be square.
func DecodeImage(img image.Image, id geo.TileID) (*Grid, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != h {
		return nil, fmt.Errorf("elevation: raster for %s is %dx%d, want square", id, w, h)
	}
	if w < 2 {
		return nil, fmt.Errorf("elevation: raster for %s too small (%d)", id, w)
	}

	samples := make([]float32, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; the encoding uses 8-bit.
			packed := (r>>8)<<16 | (g>>8)<<8 | bl>>8
			samples[i] = -10000 + float32(packed)*0.1
			i++
		}
	}

	return &Grid{
		ID:      id,
		Size:    w,
		Bounds:  geo.TileBounds(id),
		samples: samples,
	}, nil
}

// NewGrid builds a grid from raw samples, row-major with row 0 north.
// Used by synthetic sources and tests.
func NewGrid(id geo.TileID, size int, samples []float32) (*Grid, error) {
	if size < 2 {
		return nil, fmt.Errorf("elevation: grid size %d too small", size)
	}
	if len(samples) != size*size {
		return nil, fmt.Errorf("elevation: %d samples for size %d", len(samples), size)
	}
	return &Grid{
		ID:      id,
		Size:    size,
		Bounds:  geo.TileBounds(id),
		samples: samples,
	}, nil
}

// Zero returns an all-zero grid, the fallback substituted when a tile
// cannot be fetched. A failed tile degrades to flat terrain.
func Zero(id geo.TileID, size int) *Grid {
	if size < 2 {
		size = 2
	}
	return &Grid{
		ID:      id,
		Size:    size,
		Bounds:  geo.TileBounds(id),
		samples: make([]float32, size*size),
	}
}

// At returns the sample at integer grid indices, clamped to the grid.
func (g *Grid) At(ix, iy int) float32 {
	if ix < 0 {
		ix = 0
	}
	if iy < 0 {
		iy = 0
	}
	if ix >= g.Size {
		ix = g.Size - 1
	}
	if iy >= g.Size {
		iy = g.Size - 1
	}
	return g.samples[iy*g.Size+ix]
}

// SampleBilinear samples the grid at fractional tile coordinates.
// u runs west to east and v runs north to south, both in [0, 1]; values
// outside that range clamp to the tile edge.
func (g *Grid) SampleBilinear(u, v float32) float32 {
	px := u * float32(g.Size-1)
	py := v * float32(g.Size-1)

	ix := int(math32.Floor(px))
	iy := int(math32.Floor(py))
	fx := px - float32(ix)
	fy := py - float32(iy)
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}

	// Corner lookups clamp, so out-of-range fractions at tile edges
	// never index out of bounds.
	h00 := g.At(ix, iy)
	h10 := g.At(ix+1, iy)
	h01 := g.At(ix, iy+1)
	h11 := g.At(ix+1, iy+1)

	north := h00 + (h10-h00)*fx
	south := h01 + (h11-h01)*fx
	return north + (south-north)*fy
}
