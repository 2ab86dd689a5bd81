package section

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a triangle given by three vertex indices. The winding
// v0→v1→v2→v0 fixes the orientation of the traced curves.
type Face [3]int

// Mesh is an indexed triangle mesh. Intersect and Clip only read it.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face
}

// NewMesh wraps existing vertex and face slices without copying them.
func NewMesh(vertices []r3.Vec, faces []Face) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// Intersect is shorthand for Intersect(m, p).
func (m *Mesh) Intersect(p Plane) []Path {
	return Intersect(m, p)
}

// Clip is shorthand for Clip(m, p).
func (m *Mesh) Clip(p Plane) []Path {
	return Clip(m, p)
}

// Plane is an infinite plane through Origin. Normal need not be unit
// length; it points towards the positive side.
type Plane struct {
	Origin r3.Vec `json:"origin"`
	Normal r3.Vec `json:"normal"`
}

// DefaultPlane returns the z=0 plane with its normal along +z.
func DefaultPlane() Plane {
	return Plane{Normal: r3.Vec{Z: 1}}
}

// Flip returns the same plane with the normal negated.
func (p Plane) Flip() Plane {
	return Plane{Origin: p.Origin, Normal: r3.Scale(-1, p.Normal)}
}

// Offset returns the signed offset of v from the plane, scaled by the
// length of the normal.
func (p Plane) Offset(v r3.Vec) float64 {
	return r3.Dot(p.Normal, r3.Sub(v, p.Origin))
}

// Edge is an undirected pair of vertex indices. Edges built by NewEdge have
// A <= B so that they can be compared and used as map keys. An edge with
// A == B stands for the vertex itself.
type Edge struct {
	A, B int
}

// NewEdge returns the canonical edge between a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		return Edge{A: b, B: a}
	}
	return Edge{A: a, B: b}
}

func (e Edge) canonical() Edge { return NewEdge(e.A, e.B) }

func (e Edge) swapped() Edge { return Edge{A: e.B, B: e.A} }

func compareEdges(x, y Edge) int {
	if x.A != y.A {
		return x.A - y.A
	}
	return x.B - y.B
}

// Path is one output curve. A closed path does not repeat its first point.
type Path struct {
	Points []r3.Vec `json:"points"`
	Closed bool     `json:"closed"`
}

// Len returns the number of points.
func (p Path) Len() int {
	return len(p.Points)
}

// Perimeter returns the length of the polyline, including the closing
// segment when the path is closed.
func (p Path) Perimeter() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(p.Points); i++ {
		sum += r3.Norm(r3.Sub(p.Points[i], p.Points[i-1]))
	}
	if p.Closed {
		sum += r3.Norm(r3.Sub(p.Points[0], p.Points[len(p.Points)-1]))
	}
	return sum
}

// Mode selects between the two cutting operations.
type Mode int

const (
	ModeIntersect Mode = iota // bare plane crossings
	ModeClip                  // crossings closed with the positive-side boundary
)

func (m Mode) String() string {
	switch m {
	case ModeIntersect:
		return "intersect"
	case ModeClip:
		return "clip"
	default:
		return "unknown"
	}
}

// ParseMode converts "intersect" or "clip" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "intersect":
		return ModeIntersect, nil
	case "clip":
		return ModeClip, nil
	}
	return 0, fmt.Errorf("invalid mode %q, expected intersect or clip", s)
}

// MarshalText encodes m as its name.
func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeIntersect && m != ModeClip {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Section runs Intersect or Clip depending on mode.
func Section(m *Mesh, p Plane, mode Mode) []Path {
	if mode == ModeClip {
		return Clip(m, p)
	}
	return Intersect(m, p)
}

// Valid reports whether p has a usable normal. The cutting functions do not
// call it; it is meant for callers that accept planes from users.
func (p Plane) Valid() bool {
	n := r3.Norm(p.Normal)
	return n > 0 && !math.IsInf(n, 0)
}
