package section

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// singleFace is one triangle standing in the xz plane, its middle vertex
// above z=0 and the other two below.
func singleFace() *Mesh {
	return NewMesh(
		[]r3.Vec{
			{X: 1, Y: 0, Z: -1},
			{X: 3, Y: 0, Z: 1},
			{X: 7, Y: 0, Z: -1},
		},
		[]Face{{0, 1, 2}},
	)
}

// pyramid is a square pyramid without its base:
//
//	3     2
//	   4
//	0     1
func pyramid() *Mesh {
	return NewMesh(
		[]r3.Vec{
			{X: -1, Y: -1, Z: -1},
			{X: 1, Y: -1, Z: -1},
			{X: 1, Y: 1, Z: -1},
			{X: -1, Y: 1, Z: -1},
			{X: 0, Y: 0, Z: 1},
		},
		[]Face{
			{0, 1, 4},
			{1, 2, 4},
			{2, 3, 4},
			{3, 0, 4},
		},
	)
}

// doublePyramidFaces are the eight faces of two open pyramids sharing the
// edge 2-3:
//
//	1     3     5
//	   6     7
//	0     2     4
var doublePyramidFaces = []Face{
	{0, 1, 6},
	{1, 3, 6},
	{3, 2, 6},
	{2, 0, 6},
	{2, 3, 7},
	{3, 5, 7},
	{7, 5, 4},
	{2, 7, 4},
}

func doublePyramidVertices() []r3.Vec {
	return []r3.Vec{
		{X: -2, Y: -1, Z: -1},
		{X: -2, Y: 1, Z: -1},
		{X: 0, Y: -1, Z: -1},
		{X: 0, Y: 1, Z: -1},
		{X: 2, Y: -1, Z: -1},
		{X: 2, Y: 1, Z: -1},
		{X: -1, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
	}
}

// doublePyramid returns the double pyramid with the faces at the given
// indices of doublePyramidFaces left out.
func doublePyramid(missing ...int) *Mesh {
	skip := make(map[int]bool, len(missing))
	for _, i := range missing {
		skip[i] = true
	}
	var faces []Face
	for i, f := range doublePyramidFaces {
		if !skip[i] {
			faces = append(faces, f)
		}
	}
	return NewMesh(doublePyramidVertices(), faces)
}

// shape is the point count and closedness of one path.
type shape struct {
	points int
	closed bool
}

func shapes(paths []Path) []shape {
	out := make([]shape, 0, len(paths))
	for _, p := range paths {
		out = append(out, shape{points: len(p.Points), closed: p.Closed})
	}
	return out
}

func open(n int) shape   { return shape{points: n} }
func closed(n int) shape { return shape{points: n, closed: true} }

func planeAt(z float64) Plane {
	p := DefaultPlane()
	p.Origin.Z = z
	return p
}
