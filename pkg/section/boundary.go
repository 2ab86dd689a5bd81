package section

import "slices"

// freeEdge is a boundary edge, kept with the direction it has in the
// winding of its only face.
type freeEdge struct {
	from, to int
	face     int
}

func (e freeEdge) edge() Edge { return NewEdge(e.from, e.to) }

// other returns the endpoint of e that is not v.
func (e freeEdge) other(v int) int {
	if e.from == v {
		return e.to
	}
	return e.from
}

// freeEdges returns the boundary edges that touch the positive side, in
// order of first appearance (face order, then v0v1, v1v2, v2v0).
func freeEdges(faces []Face, offsets []float64) []freeEdge {
	count := make(map[Edge]int)
	var seen []freeEdge
	for fi, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			e := NewEdge(a, b)
			if count[e] == 0 {
				seen = append(seen, freeEdge{from: a, to: b, face: fi})
			}
			count[e]++
		}
	}

	free := seen[:0]
	for _, fe := range seen {
		if count[fe.edge()] != 1 {
			continue
		}
		if offsets[fe.from] > 0 || offsets[fe.to] > 0 {
			free = append(free, fe)
		}
	}
	return free
}

// run is a maximal chain of consecutive positive-side boundary vertices.
// start and end are the crossing free edges that bound it, nil where the
// chain stopped without reaching the plane. A loop has neither and comes
// back to its first vertex.
type run struct {
	start, end *Edge
	vertices   []int
	loop       bool
}

// spliceable reports whether r can bridge two crossing edges.
func (r *run) spliceable() bool {
	return r.start != nil && r.end != nil
}

type runBuilder struct {
	free     []freeEdge
	offsets  []float64
	incident map[int][]int
	used     []bool
}

// boundaryRuns chains the free edges into runs. Runs are seeded first from
// the free edges entering the positive side, then from those leaving it,
// then from whatever is left, each group in discovery order.
func boundaryRuns(free []freeEdge, offsets []float64) []*run {
	b := &runBuilder{
		free:     free,
		offsets:  offsets,
		incident: make(map[int][]int),
		used:     make([]bool, len(free)),
	}
	for i, fe := range free {
		b.incident[fe.from] = append(b.incident[fe.from], i)
		b.incident[fe.to] = append(b.incident[fe.to], i)
	}

	entering := func(fe freeEdge) bool { return !b.positive(fe.from) }
	leaving := func(fe freeEdge) bool { return !b.positive(fe.to) }
	var runs []*run
	for _, seeds := range []func(freeEdge) bool{entering, leaving, nil} {
		for i, fe := range free {
			if !b.used[i] && (seeds == nil || seeds(fe)) {
				runs = append(runs, b.grow(i))
			}
		}
	}
	return runs
}

func (b *runBuilder) positive(v int) bool {
	return b.offsets[v] > 0
}

// grow builds the run containing the free edge seed. The back of the run
// is extended along the boundary winding and the front against it.
func (b *runBuilder) grow(seed int) *run {
	b.used[seed] = true
	fe := b.free[seed]
	r := &run{}
	switch {
	case b.positive(fe.from) && b.positive(fe.to):
		r.vertices = []int{fe.from, fe.to}
	case b.positive(fe.to):
		e := fe.edge()
		r.start = &e
		r.vertices = []int{fe.to}
	default:
		e := fe.edge()
		r.end = &e
		r.vertices = []int{fe.from}
	}

	for prev := seed; r.end == nil && !r.loop; {
		v := r.vertices[len(r.vertices)-1]
		i, ok := b.pick(v, prev, true)
		if !ok {
			break
		}
		b.used[i] = true
		prev = i
		w := b.free[i].other(v)
		switch {
		case !b.positive(w):
			e := b.free[i].edge()
			r.end = &e
		case w == r.vertices[0] && r.start == nil:
			r.loop = true
		default:
			r.vertices = append(r.vertices, w)
		}
	}

	for prev := seed; r.start == nil && !r.loop; {
		v := r.vertices[0]
		i, ok := b.pick(v, prev, false)
		if !ok {
			break
		}
		b.used[i] = true
		prev = i
		w := b.free[i].other(v)
		switch {
		case !b.positive(w):
			e := b.free[i].edge()
			r.start = &e
		case w == r.vertices[len(r.vertices)-1] && r.end == nil:
			r.loop = true
		default:
			r.vertices = slices.Insert(r.vertices, 0, w)
		}
	}
	return r
}

// pick chooses the unused free edge to continue from vertex v, where prev
// is the edge the walk arrived by. Walking forward, an edge leaving v in
// its face winding continues the boundary; walking backward, one entering
// v does. Continuing edges always win. Among them an edge of a different
// face than prev wins, and after that one that stays on the positive side
// over one that crosses the plane. Ties go to discovery order. The
// preferences only matter where the boundary touches itself at a vertex.
func (b *runBuilder) pick(v, prev int, forward bool) (int, bool) {
	best, bestRank := -1, 8
	for _, i := range b.incident[v] {
		if b.used[i] {
			continue
		}
		fe := b.free[i]
		rank := 0
		if !(forward && fe.from == v) && !(!forward && fe.to == v) {
			rank += 4
		}
		if fe.face == b.free[prev].face {
			rank += 2
		}
		if !b.positive(fe.other(v)) {
			rank++
		}
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	return best, best >= 0
}

// loopPath returns a loop as an edge path of vertex self-edges, closed by
// repeating the first one.
func (r *run) loopPath() []Edge {
	path := make([]Edge, 0, len(r.vertices)+1)
	for _, v := range r.vertices {
		path = append(path, Edge{A: v, B: v})
	}
	return append(path, path[0])
}

// closeWithBoundary closes open edge paths by alternately attaching runs
// and further open paths until the path comes back to its first edge.
// Paths absorbed into an earlier one are dropped from the result; loops
// follow the paths.
func closeWithBoundary(paths [][]Edge, runs []*run) [][]Edge {
	usedPath := make([]bool, len(paths))
	usedRun := make([]bool, len(runs))

	findRun := func(tail Edge) (*run, bool, bool) {
		for k, r := range runs {
			if usedRun[k] || !r.spliceable() {
				continue
			}
			if *r.start == tail {
				usedRun[k] = true
				return r, false, true
			}
			if *r.end == tail {
				usedRun[k] = true
				return r, true, true
			}
		}
		return nil, false, false
	}
	findPath := func(from Edge) ([]Edge, bool) {
		for j, q := range paths {
			if usedPath[j] || isClosed(q) {
				continue
			}
			if q[0] == from {
				usedPath[j] = true
				return q, true
			}
			if q[len(q)-1] == from {
				usedPath[j] = true
				return reversed(q), true
			}
		}
		return nil, false
	}

	var out [][]Edge
	for i, p := range paths {
		if usedPath[i] {
			continue
		}
		usedPath[i] = true
		if isClosed(p) {
			out = append(out, p)
			continue
		}

		ring := slices.Clone(p)
		head := ring[0]
		for {
			r, reverse, ok := findRun(ring[len(ring)-1])
			if !ok {
				break
			}
			vertices, far := r.vertices, *r.end
			if reverse {
				vertices = slices.Clone(vertices)
				slices.Reverse(vertices)
				far = *r.start
			}
			for _, v := range vertices {
				ring = append(ring, Edge{A: v, B: v})
			}
			ring = append(ring, far)
			if far == head {
				break
			}
			q, ok := findPath(far)
			if !ok {
				break
			}
			ring = append(ring, q[1:]...)
		}
		out = append(out, ring)
	}

	for _, r := range runs {
		if r.loop {
			out = append(out, r.loopPath())
		}
	}
	return out
}
