package kernel

import (
	"fmt"

	"github.com/chazu/kerf/pkg/section"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh in flat arrays: vertices has 3 floats
// per vertex (x,y,z), indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i in double precision.
func (m *Mesh) Vertex(i int) r3.Vec {
	return r3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// Section converts m to the form section.Intersect and section.Clip take.
// Unlike those, it validates the indices, since meshes may come from
// scripts.
func (m *Mesh) Section() (*section.Mesh, error) {
	if len(m.Vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q: vertex array length %d is not a multiple of 3", m.Name, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q: index array length %d is not a multiple of 3", m.Name, len(m.Indices))
	}

	n := m.VertexCount()
	vertices := make([]r3.Vec, n)
	for i := range vertices {
		vertices[i] = m.Vertex(i)
	}

	faces := make([]section.Face, m.TriangleCount())
	for t := range faces {
		for j := 0; j < 3; j++ {
			idx := m.Indices[t*3+j]
			if int(idx) >= n {
				return nil, fmt.Errorf("mesh %q: triangle %d: vertex index %d out of range (%d vertices)", m.Name, t, idx, n)
			}
			faces[t][j] = int(idx)
		}
	}
	return section.NewMesh(vertices, faces), nil
}
