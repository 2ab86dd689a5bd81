// Package kernel defines the abstract geometry kernel interface and the
// triangle mesh it produces. Backends (sdfx) build solids and tessellate
// them; the resulting Mesh converts to a section.Mesh for plane cuts.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centred on the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s into an indexed mesh whose coincident vertices
	// are shared, so that Mesh.Section sees a connected surface.
	ToMesh(s Solid) (*Mesh, error)
}
