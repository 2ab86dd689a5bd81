package manifold

import (
	"errors"
	"slices"
	"testing"

	"github.com/chazu/kerf/pkg/kernel"
)

func TestOptionsSegments(t *testing.T) {
	if got := (Options{}).segments(); got != DefaultSegments {
		t.Errorf("zero Segments = %d, want %d", got, DefaultSegments)
	}
	if got := (Options{Segments: -3}).segments(); got != DefaultSegments {
		t.Errorf("negative Segments = %d, want %d", got, DefaultSegments)
	}
	if got := (Options{Segments: 12}).segments(); got != 12 {
		t.Errorf("Segments = %d, want 12", got)
	}
}

func TestTriangleSoupStride(t *testing.T) {
	// Two vertices carry a normal after their position; the second
	// triangle points past the end and is skipped.
	props := []float32{
		0, 0, 0, 9, 9, 9,
		1, 0, 0, 9, 9, 9,
		0, 1, 0, 9, 9, 9,
	}
	got := triangleSoup(props, 6, []uint32{0, 1, 2, 0, 1, 7})
	want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	if !slices.Equal(got, want) {
		t.Fatalf("triangleSoup = %v, want %v", got, want)
	}
	if triangleSoup(props, 2, []uint32{0, 1, 2}) != nil {
		t.Error("stride below 3 should give no triangles")
	}
}

func TestSplitVerticesWeldBack(t *testing.T) {
	// A quad whose diagonal vertices are duplicated, as MeshGL does at
	// property seams.
	props := []float32{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 0,
	}
	m := kernel.Weld(triangleSoup(props, 3, []uint32{0, 1, 2, 3, 4, 5}))
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
}

func TestNewWithoutTag(t *testing.T) {
	k, err := New(Options{})
	if err == nil {
		if k == nil {
			t.Fatal("New returned neither a kernel nor an error")
		}
		return // built with -tags=manifold
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("New() error = %v, want ErrUnavailable", err)
	}
	if k != nil {
		t.Error("New returned a kernel together with an error")
	}
}
