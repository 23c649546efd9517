package mesh

import (
	"math"
	"testing"

	"github.com/samschaack/terrastream/internal/elevation"
	"github.com/samschaack/terrastream/internal/geo"
)

func flatGrid(t *testing.T, size int, height float32) *elevation.Grid {
	t.Helper()
	samples := make([]float32, size*size)
	for i := range samples {
		samples[i] = height
	}
	g, err := elevation.NewGrid(geo.TileID{Zoom: 1, X: 0, Y: 0}, size, samples)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestBuildBufferSizes(t *testing.T) {
	grid := flatGrid(t, 5, 100)
	bounds := Bounds{MinX: 0, MinZ: 0, MaxX: 1000, MaxZ: 1000}

	for _, res := range []int{1, 2, 8, 16} {
		out := NewBuffers(res)
		Build(grid, bounds, res, 1, out)

		n := (res + 1) * (res + 1)
		m := 2 * res * res
		if len(out.Positions) != 3*n {
			t.Errorf("res %d: positions %d, want %d", res, len(out.Positions), 3*n)
		}
		if len(out.Normals) != 3*n {
			t.Errorf("res %d: normals %d, want %d", res, len(out.Normals), 3*n)
		}
		if len(out.Colors) != 3*n {
			t.Errorf("res %d: colors %d, want %d", res, len(out.Colors), 3*n)
		}
		if len(out.Texcoords) != 2*n {
			t.Errorf("res %d: texcoords %d, want %d", res, len(out.Texcoords), 2*n)
		}
		if len(out.Indices) != 3*m {
			t.Errorf("res %d: indices %d, want %d", res, len(out.Indices), 3*m)
		}
		for _, ix := range out.Indices {
			if int(ix) >= n {
				t.Fatalf("res %d: index %d out of range", res, ix)
			}
		}
	}
}

func TestBuildFlatGridNormalsPointUp(t *testing.T) {
	grid := flatGrid(t, 4, 50)
	out := NewBuffers(4)
	Build(grid, Bounds{MinX: -500, MinZ: -500, MaxX: 500, MaxZ: 500}, 4, 1, out)

	for i := 0; i < len(out.Normals); i += 3 {
		nx, ny, nz := out.Normals[i], out.Normals[i+1], out.Normals[i+2]
		if math.Abs(float64(nx)) > 1e-5 || math.Abs(float64(nz)) > 1e-5 {
			t.Fatalf("vertex %d: normal (%f, %f, %f) not vertical", i/3, nx, ny, nz)
		}
		if math.Abs(float64(ny-1)) > 1e-5 {
			t.Fatalf("vertex %d: normal y = %f, want 1 (upward)", i/3, ny)
		}
	}
}

func TestBuildNormalsUnitLengthOnSlope(t *testing.T) {
	// A sloped grid: heights rise to the east.
	size := 5
	samples := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			samples[y*size+x] = float32(x) * 200
		}
	}
	grid, err := elevation.NewGrid(geo.TileID{Zoom: 1, X: 0, Y: 0}, size, samples)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	out := NewBuffers(8)
	Build(grid, Bounds{MinX: 0, MinZ: 0, MaxX: 800, MaxZ: 800}, 8, 1, out)

	for i := 0; i < len(out.Normals); i += 3 {
		nx, ny, nz := out.Normals[i], out.Normals[i+1], out.Normals[i+2]
		length := math.Sqrt(float64(nx*nx + ny*ny + nz*nz))
		if math.Abs(length-1) > 1e-4 {
			t.Fatalf("vertex %d: normal length %f", i/3, length)
		}
		// Slope rises eastward, so normals lean west.
		if nx >= 0 {
			t.Fatalf("vertex %d: normal x = %f, want negative (leaning west)", i/3, nx)
		}
	}
}

func TestBuildPositionsSpanBounds(t *testing.T) {
	grid := flatGrid(t, 3, 250)
	bounds := Bounds{MinX: 100, MinZ: -300, MaxX: 500, MaxZ: 100}
	out := NewBuffers(2)
	Build(grid, bounds, 2, 2, out)

	n := 3 // resolution+1
	// First vertex: north-west corner.
	if out.Positions[0] != bounds.MinX || out.Positions[2] != bounds.MinZ {
		t.Errorf("first vertex at (%f, %f)", out.Positions[0], out.Positions[2])
	}
	// Last vertex: south-east corner.
	last := 3 * (n*n - 1)
	if out.Positions[last] != bounds.MaxX || out.Positions[last+2] != bounds.MaxZ {
		t.Errorf("last vertex at (%f, %f)", out.Positions[last], out.Positions[last+2])
	}
	// Height scale applies to elevation.
	if out.Positions[1] != 500 {
		t.Errorf("vertex height = %f, want 500", out.Positions[1])
	}
}

func TestBuildWinding(t *testing.T) {
	grid := flatGrid(t, 2, 0)
	out := NewBuffers(1)
	Build(grid, Bounds{MinX: 0, MinZ: 0, MaxX: 1, MaxZ: 1}, 1, 1, out)

	// One cell, two triangles: (tl, bl, tr) and (tr, bl, br).
	// Vertex layout: 0=tl 1=tr 2=bl 3=br.
	want := []uint32{0, 2, 1, 1, 2, 3}
	if len(out.Indices) != len(want) {
		t.Fatalf("indices %v", out.Indices)
	}
	for i, ix := range want {
		if out.Indices[i] != ix {
			t.Fatalf("indices = %v, want %v", out.Indices, want)
		}
	}
}

func TestBuildTexcoords(t *testing.T) {
	grid := flatGrid(t, 3, 0)
	out := NewBuffers(2)
	Build(grid, Bounds{MaxX: 10, MaxZ: 10}, 2, 1, out)

	// Corner texcoords span the unit square.
	if out.Texcoords[0] != 0 || out.Texcoords[1] != 0 {
		t.Errorf("first texcoord (%f, %f)", out.Texcoords[0], out.Texcoords[1])
	}
	n := 3
	last := 2 * (n*n - 1)
	if out.Texcoords[last] != 1 || out.Texcoords[last+1] != 1 {
		t.Errorf("last texcoord (%f, %f)", out.Texcoords[last], out.Texcoords[last+1])
	}
}

func TestBuffersReuse(t *testing.T) {
	out := NewBuffers(8)
	positions := &out.Positions[0]

	out.Reset(4)
	if len(out.Positions) != 3*25 {
		t.Errorf("after shrink: positions %d", len(out.Positions))
	}
	if &out.Positions[0] != positions {
		t.Error("shrinking reallocated the positions array")
	}

	out.Reset(16)
	if len(out.Positions) != 3*289 {
		t.Errorf("after grow: positions %d", len(out.Positions))
	}
}

func TestColorForHeight(t *testing.T) {
	deep := colorForHeight(-2000)
	if deep != palette[0].color {
		t.Errorf("deep water color %v", deep)
	}
	snow := colorForHeight(9000)
	if snow != palette[len(palette)-1].color {
		t.Errorf("snow color %v", snow)
	}

	// Beach band is tan: red-dominant over blue.
	beach := colorForHeight(5)
	if beach[0] <= beach[2] {
		t.Errorf("beach color %v not tan", beach)
	}

	// Grass band is green-dominant.
	grass := colorForHeight(200)
	if grass[1] <= grass[0] || grass[1] <= grass[2] {
		t.Errorf("grass color %v not green", grass)
	}

	// Exactly at a stop returns the stop color.
	if got := colorForHeight(1500); got != palette[5].color {
		t.Errorf("color at 1500 = %v, want %v", got, palette[5].color)
	}

	// Interpolation is continuous across a stop.
	below := colorForHeight(1499.9)
	at := colorForHeight(1500)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(below[i]-at[i])) > 0.01 {
			t.Errorf("palette discontinuity near 1500: %v vs %v", below, at)
		}
	}
}
