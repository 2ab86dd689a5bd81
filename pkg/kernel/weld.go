package kernel

// Weld turns a triangle soup (9 floats per triangle, no shared vertices)
// into an indexed mesh. Vertices with bit-identical positions are merged
// in order of first appearance, and triangles left with a repeated vertex
// are dropped.
func Weld(soup []float32) *Mesh {
	type key [3]float32

	index := make(map[key]uint32)
	var vertices []float32
	indices := make([]uint32, 0, len(soup)/3)

	for t := 0; t+9 <= len(soup); t += 9 {
		var tri [3]uint32
		for j := 0; j < 3; j++ {
			p := key{soup[t+j*3], soup[t+j*3+1], soup[t+j*3+2]}
			i, ok := index[p]
			if !ok {
				i = uint32(len(vertices) / 3)
				index[p] = i
				vertices = append(vertices, p[0], p[1], p[2])
			}
			tri[j] = i
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		indices = append(indices, tri[0], tri[1], tri[2])
	}
	return &Mesh{Vertices: vertices, Indices: indices}
}
