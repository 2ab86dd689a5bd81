package manifold

import "errors"

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// DefaultSegments is the number of sides used for cylinders and spheres.
const DefaultSegments = 64

// Options configures the Manifold kernel.
type Options struct {
	// Segments is the circular resolution; zero means DefaultSegments.
	Segments int
}

func (o Options) segments() int {
	if o.Segments <= 0 {
		return DefaultSegments
	}
	return o.Segments
}

// triangleSoup expands indexed triangles into 9 floats each, taking the
// position from the first three of stride properties per vertex.
// Triangles referencing missing vertices are skipped.
func triangleSoup(props []float32, stride int, indices []uint32) []float32 {
	if stride < 3 {
		return nil
	}
	numVert := len(props) / stride
	soup := make([]float32, 0, len(indices)*3)
	for t := 0; t+3 <= len(indices); t += 3 {
		tri := indices[t : t+3]
		if int(tri[0]) >= numVert || int(tri[1]) >= numVert || int(tri[2]) >= numVert {
			continue
		}
		for _, i := range tri {
			base := int(i) * stride
			soup = append(soup, props[base], props[base+1], props[base+2])
		}
	}
	return soup
}
