package section

import "gonum.org/v1/gonum/spatial/r3"

// query holds the per-call state shared by the pipeline stages.
type query struct {
	mesh    *Mesh
	offsets []float64
}

func newQuery(m *Mesh, p Plane) *query {
	return &query{mesh: m, offsets: vertexOffsets(m.Vertices, p)}
}

// edgePaths traces and chains the plane crossings of the mesh.
func (q *query) edgePaths() [][]Edge {
	return chainEdgePaths(traceEdgePaths(crossingFaces(q.mesh.Faces, q.offsets)))
}

// point returns the position represented by e: the vertex itself for a
// self-edge, otherwise the point where the edge meets the plane.
func (q *query) point(e Edge) r3.Vec {
	a := q.mesh.Vertices[e.A]
	if e.A == e.B {
		return a
	}
	b := q.mesh.Vertices[e.B]
	t := q.offsets[e.A] / (q.offsets[e.A] - q.offsets[e.B])
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

func (q *query) paths(edgePaths [][]Edge) []Path {
	paths := make([]Path, 0, len(edgePaths))
	for _, ep := range edgePaths {
		points := make([]r3.Vec, 0, len(ep))
		for _, e := range ep {
			points = append(points, q.point(e))
		}
		closed := isClosed(ep)
		if closed {
			points = points[:len(points)-1]
		}
		paths = append(paths, Path{Points: points, Closed: closed})
	}
	return paths
}

// Intersect returns the curves along which the mesh crosses the plane.
// Closed curves come out as closed paths; curves that run off the mesh
// boundary are open.
func Intersect(m *Mesh, p Plane) []Path {
	q := newQuery(m, p)
	return q.paths(q.edgePaths())
}

// Clip returns the cross sections of the mesh on the positive side of the
// plane. Open intersection curves are closed with the boundary vertices
// lying on the positive side, and boundary loops lying wholly on that side
// are returned as extra closed paths after the intersection curves.
func Clip(m *Mesh, p Plane) []Path {
	q := newQuery(m, p)
	runs := boundaryRuns(freeEdges(m.Faces, q.offsets), q.offsets)
	return q.paths(closeWithBoundary(q.edgePaths(), runs))
}
