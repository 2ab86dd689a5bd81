package section

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// vertexOffsets returns the plane offset of every vertex, in index order.
func vertexOffsets(vertices []r3.Vec, p Plane) []float64 {
	offsets := make([]float64, len(vertices))
	for i, v := range vertices {
		offsets[i] = p.Offset(v)
	}
	return offsets
}

// crossing describes how a directed edge passes through the plane.
type crossing int8

const (
	crossNone crossing = iota
	crossUp            // from the non-positive side to the positive side
	crossDown          // from the positive side to the non-positive side
)

// edgeCrossing classifies the directed edge a→b. A vertex exactly on the
// plane counts as being on the negative side, so every crossing is seen by
// exactly one rule.
func edgeCrossing(a, b int, offsets []float64) crossing {
	switch {
	case offsets[b] > 0 && offsets[a] <= 0:
		return crossUp
	case offsets[a] > 0 && offsets[b] <= 0:
		return crossDown
	}
	return crossNone
}

// crossingMap links the entry edge of every crossing face, as an ordered
// vertex pair, to the vertex at the far end of the face's exit edge.
// Entries are consumed while tracing; the smallest remaining key is
// always the next starting point.
type crossingMap struct {
	next   map[Edge]int
	keys   []Edge // ascending
	cursor int
}

// crossingFaces scans every face and records one entry per face that
// crosses the plane.
func crossingFaces(faces []Face, offsets []float64) *crossingMap {
	m := &crossingMap{next: make(map[Edge]int)}
	for _, f := range faces {
		e01 := edgeCrossing(f[0], f[1], offsets)
		e12 := edgeCrossing(f[1], f[2], offsets)
		if e01 == crossNone && e12 == crossNone {
			continue
		}

		// The odd vertex is the one shared by both crossing edges.
		odd := 1
		switch {
		case e01 == crossNone:
			odd = 2
		case e12 == crossNone:
			odd = 0
		}
		up := 0
		if offsets[f[odd]] > 0 {
			up = 1
		}

		key := Edge{A: f[(odd+1+up)%3], B: f[odd]}
		if _, ok := m.next[key]; !ok {
			m.keys = append(m.keys, key)
		}
		m.next[key] = f[(odd+2-up)%3]
	}
	slices.SortFunc(m.keys, compareEdges)
	return m
}

// Len returns the number of entries not yet consumed.
func (m *crossingMap) Len() int {
	return len(m.next)
}

// first returns the smallest remaining entry.
func (m *crossingMap) first() (Edge, int, bool) {
	for m.cursor < len(m.keys) {
		k := m.keys[m.cursor]
		if v, ok := m.next[k]; ok {
			return k, v, true
		}
		m.cursor++
	}
	return Edge{}, 0, false
}

// take removes the entry for key and returns its value.
func (m *crossingMap) take(key Edge) (int, bool) {
	v, ok := m.next[key]
	if ok {
		delete(m.next, key)
	}
	return v, ok
}
