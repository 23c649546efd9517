package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/samschaack/terrastream/internal/elevation"
)

// Build fills out with the mesh for one terrain chunk. It samples the
// elevation grid bilinearly at (resolution+1)^2 vertices, interpolates
// positions across bounds, triangulates the regular grid, assigns palette
// colors by height band and accumulates smooth per-vertex normals.
//
// Build is deterministic and side-effect free: it touches nothing but out,
// so it is safe to run on any worker goroutine.
func Build(grid *elevation.Grid, bounds Bounds, resolution int, heightScale float32, out *Buffers) {
	out.Reset(resolution)

	n := resolution + 1
	inv := 1 / float32(resolution)

	// Vertices: position, color, texcoord. v=0 is the chunk's northern
	// edge, matching the grid's row 0.
	for gy := 0; gy < n; gy++ {
		v := float32(gy) * inv
		z := bounds.MinZ + (bounds.MaxZ-bounds.MinZ)*v
		for gx := 0; gx < n; gx++ {
			u := float32(gx) * inv
			x := bounds.MinX + (bounds.MaxX-bounds.MinX)*u

			h := grid.SampleBilinear(u, v)
			y := h * heightScale

			i := gy*n + gx
			out.Positions[3*i] = x
			out.Positions[3*i+1] = y
			out.Positions[3*i+2] = z

			c := colorForHeight(h)
			out.Colors[3*i] = c[0]
			out.Colors[3*i+1] = c[1]
			out.Colors[3*i+2] = c[2]

			out.Texcoords[2*i] = u
			out.Texcoords[2*i+1] = v
		}
	}

	// Triangulation: each cell emits two triangles with fixed winding,
	// (top-left, bottom-left, top-right) then (top-right, bottom-left,
	// bottom-right).
	idx := 0
	for gy := 0; gy < resolution; gy++ {
		for gx := 0; gx < resolution; gx++ {
			tl := uint32(gy*n + gx)
			tr := tl + 1
			bl := tl + uint32(n)
			br := bl + 1

			out.Indices[idx] = tl
			out.Indices[idx+1] = bl
			out.Indices[idx+2] = tr
			out.Indices[idx+3] = tr
			out.Indices[idx+4] = bl
			out.Indices[idx+5] = br
			idx += 6
		}
	}

	buildNormals(out)
}

// buildNormals accumulates the non-normalized cross product of every
// triangle into its three vertices, then normalizes each accumulated
// vector. Degenerate accumulations stay zero rather than dividing by zero.
func buildNormals(out *Buffers) {
	for i := range out.Normals {
		out.Normals[i] = 0
	}

	pos := out.Positions
	for t := 0; t < len(out.Indices); t += 3 {
		i0 := out.Indices[t]
		i1 := out.Indices[t+1]
		i2 := out.Indices[t+2]

		p0 := mgl32.Vec3{pos[3*i0], pos[3*i0+1], pos[3*i0+2]}
		p1 := mgl32.Vec3{pos[3*i1], pos[3*i1+1], pos[3*i1+2]}
		p2 := mgl32.Vec3{pos[3*i2], pos[3*i2+1], pos[3*i2+2]}

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, vi := range [3]uint32{i0, i1, i2} {
			out.Normals[3*vi] += face.X()
			out.Normals[3*vi+1] += face.Y()
			out.Normals[3*vi+2] += face.Z()
		}
	}

	for i := 0; i < len(out.Normals); i += 3 {
		nx, ny, nz := out.Normals[i], out.Normals[i+1], out.Normals[i+2]
		length := math32.Sqrt(nx*nx + ny*ny + nz*nz)
		if length == 0 {
			continue
		}
		out.Normals[i] = nx / length
		out.Normals[i+1] = ny / length
		out.Normals[i+2] = nz / length
	}
}
