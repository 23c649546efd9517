// Package mesh turns elevation grids into renderable terrain mesh buffers.
//
// Building a mesh is the most CPU-intensive step of the pipeline, which is
// why callers run it on the worker pool rather than inline.
package mesh

// Bounds is a chunk footprint on the world XZ plane, in meters.
// MinZ is the northern edge of the chunk.
type Bounds struct {
	MinX, MinZ float32
	MaxX, MaxZ float32
}

// Buffers holds the attribute and index arrays of one terrain chunk.
// For a grid resolution r there are (r+1)^2 vertices and 2*r^2 triangles.
// Once a build completes, ownership transfers to the consumer; the builder
// never retains a reference.
type Buffers struct {
	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex
	Colors    []float32 // 3 per vertex
	Texcoords []float32 // 2 per vertex
	Indices   []uint32  // 3 per triangle

	Resolution int
}

// NewBuffers allocates buffers sized for the given grid resolution.
func NewBuffers(resolution int) *Buffers {
	b := &Buffers{}
	b.Reset(resolution)
	return b
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	n := b.Resolution + 1
	return n * n
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return 2 * b.Resolution * b.Resolution
}

// Reset resizes the buffers for a resolution, reusing the underlying arrays
// when they are large enough. This is what makes free-list pooling of
// buffers across chunk create/destroy cycles cheap.
func (b *Buffers) Reset(resolution int) {
	if resolution < 1 {
		resolution = 1
	}
	b.Resolution = resolution
	n := (resolution + 1) * (resolution + 1)
	m := 2 * resolution * resolution

	b.Positions = resize(b.Positions, 3*n)
	b.Normals = resize(b.Normals, 3*n)
	b.Colors = resize(b.Colors, 3*n)
	b.Texcoords = resize(b.Texcoords, 2*n)

	if cap(b.Indices) >= 3*m {
		b.Indices = b.Indices[:3*m]
	} else {
		b.Indices = make([]uint32, 3*m)
	}
}

func resize(s []float32, n int) []float32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float32, n)
}
