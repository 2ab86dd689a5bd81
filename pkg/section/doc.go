// Package section cuts triangle meshes with an infinite plane.
//
// Intersect returns the curves where the surface crosses the plane. Clip
// returns the same curves closed off with the part of the mesh boundary that
// lies on the positive side of the plane, plus any boundary loops lying
// entirely on that side, which is what is needed to cap a cut solid.
//
// The package is a low-level geometry primitive. It does not validate its
// input: face indices must be valid vertex indices, the plane normal must be
// non-zero, and no edge may be shared by more than two faces. Violating these
// preconditions yields undefined (but non-panicking for in-range indices)
// output rather than an error.
//
// Every call allocates its own working state; a Mesh may be shared by
// concurrent callers as long as nobody mutates it.
package section
