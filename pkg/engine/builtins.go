package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/section"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel.Solid built by the primitives and booleans.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return "(" + s.desc + ")"
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a section-ready mesh, either given literally or
// tessellated from a solid.
type sexpMesh struct {
	mesh *section.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices %d faces)", len(m.mesh.Vertices), len(m.mesh.Faces))
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a section.Plane.
type sexpPlane struct {
	plane section.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	o, n := p.plane.Origin, p.plane.Normal
	return fmt.Sprintf("(plane :origin (vec3 %g %g %g) :normal (vec3 %g %g %g))", o.X, o.Y, o.Z, n.X, n.Y, n.Z)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpSection is returned by intersect and clip.
type sexpSection struct {
	name  string
	mode  section.Mode
	paths int
}

func (s *sexpSection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q: %d paths)", s.mode, s.name, s.paths)
}
func (s *sexpSection) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Keyword at end with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads keyword name as a number, falling back to def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// vec reads keyword name as a vec3, falling back to def when absent.
func (a kwArgs) vec(name string, def r3.Vec) (r3.Vec, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a non-negative integer index.
func toInt(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 {
		return 0, fmt.Errorf("expected non-negative integer, got %d", v.Val)
	}
	return int(v.Val), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a sexpSolid.
func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toPlane extracts a section.Plane from a sexpPlane.
func toPlane(s zygo.Sexp) (section.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	return section.Plane{}, fmt.Errorf("expected plane, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtins holds what the DSL functions of one evaluation share.
type builtins struct {
	kernel kernel.Kernel
	result *Result
}

// registerBuiltins installs all kerf DSL builtins into a zygomys environment.
// Solids are built with k; intersect and clip append their sections to res.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, res *Result) {
	b := &builtins{kernel: k, result: res}

	env.AddFunction("vec3", b.vec3)
	env.AddFunction("box", b.box)
	env.AddFunction("cylinder", b.cylinder)
	env.AddFunction("sphere", b.sphere)
	env.AddFunction("translate", b.transform("translate", kernel.Kernel.Translate))
	env.AddFunction("rotate", b.transform("rotate", kernel.Kernel.Rotate))
	env.AddFunction("union", b.boolean("union", kernel.Kernel.Union))
	env.AddFunction("difference", b.boolean("difference", kernel.Kernel.Difference))
	env.AddFunction("intersection", b.boolean("intersection", kernel.Kernel.Intersection))
	env.AddFunction("tessellate", b.tessellate)
	env.AddFunction("mesh", b.mesh)
	env.AddFunction("plane", b.plane)
	env.AddFunction("flip", b.flip)
	env.AddFunction("intersect", b.section(section.ModeIntersect))
	env.AddFunction("clip", b.section(section.ModeClip))
}

// (vec3 1 2 3)
func (b *builtins) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// needKernel reports an error for solid builtins when the engine was
// created without a kernel.
func (b *builtins) needKernel(fn string) error {
	if b.kernel == nil {
		return fmt.Errorf("%s: no geometry kernel configured", fn)
	}
	return nil
}

// positive reads a required, strictly positive keyword argument.
func positive(pa kwArgs, fn, kw string) (float64, error) {
	if _, ok := pa.kw[kw]; !ok {
		return 0, fmt.Errorf("%s: missing :%s", fn, kw)
	}
	f, err := pa.float(kw, 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s: %s must be positive, got %g", fn, kw, f)
	}
	return f, nil
}

// (box :size (vec3 40 20 10))
func (b *builtins) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := b.needKernel("box"); err != nil {
		return zygo.SexpNull, err
	}
	pa := parseArgs(args)
	if _, ok := pa.kw["size"]; !ok {
		return zygo.SexpNull, fmt.Errorf("box: missing :size")
	}
	size, err := pa.vec("size", r3.Vec{})
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return zygo.SexpNull, fmt.Errorf("box: size must be positive, got %v", size)
	}
	return &sexpSolid{
		solid: b.kernel.Box(size.X, size.Y, size.Z),
		desc:  fmt.Sprintf("box %gx%gx%g", size.X, size.Y, size.Z),
	}, nil
}

// (cylinder :height 50 :radius 10)
func (b *builtins) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := b.needKernel("cylinder"); err != nil {
		return zygo.SexpNull, err
	}
	pa := parseArgs(args)
	h, err := positive(pa, "cylinder", "height")
	if err != nil {
		return zygo.SexpNull, err
	}
	r, err := positive(pa, "cylinder", "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{solid: b.kernel.Cylinder(h, r), desc: fmt.Sprintf("cylinder h=%g r=%g", h, r)}, nil
}

// (sphere :radius 10)
func (b *builtins) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := b.needKernel("sphere"); err != nil {
		return zygo.SexpNull, err
	}
	r, err := positive(parseArgs(args), "sphere", "radius")
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{solid: b.kernel.Sphere(r), desc: fmt.Sprintf("sphere r=%g", r)}, nil
}

// (translate solid (vec3 0 0 5)) and (rotate solid (vec3 0 0 90))
func (b *builtins) transform(fn string, apply func(kernel.Kernel, kernel.Solid, float64, float64, float64) kernel.Solid) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3, got %d arguments", fn, len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return &sexpSolid{
			solid: apply(b.kernel, s.solid, v.X, v.Y, v.Z),
			desc:  fmt.Sprintf("%s (%s) %g %g %g", fn, s.desc, v.X, v.Y, v.Z),
		}, nil
	}
}

// (union a b c ...), folded left.
func (b *builtins) boolean(fn string, apply func(k kernel.Kernel, a, b kernel.Solid) kernel.Solid) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", fn, len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: operand 1: %w", fn, err)
		}
		solid := acc.solid
		for i := 1; i < len(args); i++ {
			s, err := toSolid(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", fn, i+1, err)
			}
			solid = apply(b.kernel, solid, s.solid)
		}
		return &sexpSolid{solid: solid, desc: fmt.Sprintf("%s of %d solids", fn, len(args))}, nil
	}
}

// toMesh turns a solid or mesh argument into a section.Mesh.
func (b *builtins) toMesh(s zygo.Sexp) (*section.Mesh, error) {
	switch v := s.(type) {
	case *sexpMesh:
		return v.mesh, nil
	case *sexpSolid:
		km, err := b.kernel.ToMesh(v.solid)
		if err != nil {
			return nil, err
		}
		if km.IsEmpty() {
			return nil, fmt.Errorf("%s tessellated to an empty mesh", v.SexpString(nil))
		}
		return km.Section()
	}
	return nil, fmt.Errorf("expected solid or mesh, got %T (%s)", s, s.SexpString(nil))
}

// (tessellate solid) meshes a solid once so that several sections can
// share the result.
func (b *builtins) tessellate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("tessellate requires exactly 1 argument, got %d", len(args))
	}
	if _, err := toSolid(args[0]); err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
	}
	m, err := b.toMesh(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
	}
	return &sexpMesh{mesh: m}, nil
}

// (mesh :vertices (list (vec3 0 0 0) ...) :faces (list (list 0 1 2) ...))
func (b *builtins) mesh(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)

	var vertices []r3.Vec
	if v, ok := pa.kw["vertices"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: vertices: %w", err)
		}
		for i, item := range items {
			vec, err := toVec3(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: vertex %d: %w", i, err)
			}
			vertices = append(vertices, vec)
		}
	}

	var faces []section.Face
	if v, ok := pa.kw["faces"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: faces: %w", err)
		}
		for i, item := range items {
			f, err := toFace(item, len(vertices))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: face %d: %w", i, err)
			}
			faces = append(faces, f)
		}
	}

	return &sexpMesh{mesh: section.NewMesh(vertices, faces)}, nil
}

// toFace reads a list of three vertex indices below n.
func toFace(s zygo.Sexp, n int) (section.Face, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return section.Face{}, err
	}
	if len(items) != 3 {
		return section.Face{}, fmt.Errorf("expected 3 vertex indices, got %d", len(items))
	}
	var f section.Face
	for j, item := range items {
		idx, err := toInt(item)
		if err != nil {
			return section.Face{}, err
		}
		if idx >= n {
			return section.Face{}, fmt.Errorf("vertex index %d out of range (%d vertices)", idx, n)
		}
		f[j] = idx
	}
	return f, nil
}

// (plane :origin (vec3 0 0 0) :normal (vec3 0 0 1)); both default to the
// z=0 plane.
func (b *builtins) plane(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	def := section.DefaultPlane()

	origin, err := pa.vec("origin", def.Origin)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("plane: %w", err)
	}
	normal, err := pa.vec("normal", def.Normal)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("plane: %w", err)
	}
	p := section.Plane{Origin: origin, Normal: normal}
	if !p.Valid() {
		return zygo.SexpNull, fmt.Errorf("plane: normal: must be non-zero and finite, got %v", normal)
	}
	return &sexpPlane{plane: p}, nil
}

// (flip plane)
func (b *builtins) flip(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("flip requires exactly 1 argument, got %d", len(args))
	}
	p, err := toPlane(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("flip: %w", err)
	}
	return &sexpPlane{plane: p.Flip()}, nil
}

// (intersect "name" target [plane]) and (clip "name" target [plane]).
// The plane defaults to z=0 with its normal along +z.
func (b *builtins) section(mode section.Mode) zygo.ZlispUserFunction {
	fn := mode.String()
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 || len(args) > 3 {
			return zygo.SexpNull, fmt.Errorf("%s requires a name, a solid or mesh and an optional plane, got %d arguments", fn, len(args))
		}
		secName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
		}
		m, err := b.toMesh(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: target: %w", fn, err)
		}
		p := section.DefaultPlane()
		if len(args) == 3 {
			if p, err = toPlane(args[2]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: plane: %w", fn, err)
			}
		}

		paths := section.Section(m, p, mode)
		if err := b.result.add(Section{Name: secName, Mode: mode, Plane: p, Paths: paths}); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return &sexpSection{name: secName, mode: mode, paths: len(paths)}, nil
	}
}
