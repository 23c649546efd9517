package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/samschaack/terrastream/internal/mesh"
)

// Handle is an opaque reference to a mesh owned by the renderer.
type Handle any

// Renderer is the boundary to the rendering collaborator. The engine
// assumes nothing beyond these three operations.
//
// Upload consumes the buffer contents synchronously (for example by
// copying them to GPU memory); the caller may reuse the buffers after it
// returns. Place sets a mesh's world transform. Release disposes of a
// handle; the handle must not be used afterwards.
type Renderer interface {
	Upload(buf *mesh.Buffers) Handle
	Place(h Handle, transform mgl32.Mat4)
	Release(h Handle)
}

// NullRenderer discards everything. It serves headless runs and tests.
type NullRenderer struct{}

func (NullRenderer) Upload(*mesh.Buffers) Handle { return nil }
func (NullRenderer) Place(Handle, mgl32.Mat4)    {}
func (NullRenderer) Release(Handle)              {}
