package section

import "slices"

// traceEdgePath consumes one connected run of crossing faces from m and
// returns the crossed edges in order, canonicalised. The path is closed
// when the walk came back to the edge it started from.
func traceEdgePath(m *crossingMap) []Edge {
	key, closing, ok := m.first()
	if !ok {
		return nil
	}
	m.take(key)

	path := []Edge{key}
	for {
		next := Edge{A: key.B, B: closing}
		v, ok := m.take(next)
		if !ok {
			next = next.swapped()
			v, ok = m.take(next)
		}
		if !ok {
			break
		}
		path = append(path, next)
		key, closing = next, v
	}
	path = append(path, Edge{A: path[len(path)-1].B, B: closing})

	for i := range path {
		path[i] = path[i].canonical()
	}
	return path
}

// traceEdgePaths drains m into fragments.
func traceEdgePaths(m *crossingMap) [][]Edge {
	var paths [][]Edge
	for m.Len() > 0 {
		paths = append(paths, traceEdgePath(m))
	}
	return paths
}

func isClosed(path []Edge) bool {
	return len(path) > 1 && path[0] == path[len(path)-1]
}

func reversed(path []Edge) []Edge {
	r := slices.Clone(path)
	slices.Reverse(r)
	return r
}

// chainEdgePaths joins open fragments that share an end edge. Fragments
// are undirected, so all four head/tail pairings are tried. Closed
// fragments are passed through as they are. The order of the result
// follows the first fragment of every chain.
func chainEdgePaths(fragments [][]Edge) [][]Edge {
	used := make([]bool, len(fragments))
	var chains [][]Edge
	for i, f := range fragments {
		if used[i] {
			continue
		}
		used[i] = true
		if isClosed(f) {
			chains = append(chains, f)
			continue
		}

		chain := slices.Clone(f)
		for grown := true; grown && !isClosed(chain); {
			grown = false
			for j := i + 1; j < len(fragments); j++ {
				if used[j] || isClosed(fragments[j]) {
					continue
				}
				joined, ok := splice(chain, fragments[j])
				if !ok {
					continue
				}
				chain = joined
				used[j] = true
				grown = true
				if isClosed(chain) {
					break
				}
			}
		}
		chains = append(chains, chain)
	}
	return chains
}

// splice attaches f to either end of chain if they share an end edge.
// The shared edge appears once in the result.
func splice(chain, f []Edge) ([]Edge, bool) {
	head, tail := chain[0], chain[len(chain)-1]
	first, last := f[0], f[len(f)-1]
	switch {
	case first == tail:
		return append(chain, f[1:]...), true
	case last == tail:
		return append(chain, reversed(f)[1:]...), true
	case last == head:
		return append(slices.Clone(f[:len(f)-1]), chain...), true
	case first == head:
		r := reversed(f)
		return append(r[:len(r)-1], chain...), true
	}
	return nil, false
}
