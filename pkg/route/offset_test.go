package route

import (
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

func chainEdge(id string, seq ...string) flow.Edge {
	return flow.Edge{
		ID:     id,
		Source: seq[0],
		Target: seq[len(seq)-1],
		Type:   flow.KindMultiSegment,
		Data:   &flow.MultiSegmentData{NodeSequence: seq},
	}
}

func TestOffsetForRank(t *testing.T) {
	want := map[int]float64{-1: 0, 0: 30, 1: -30, 2: 60, 3: -60, 4: 90, 5: -90}
	for rank, off := range want {
		if got := OffsetForRank(rank, DefaultBaseShift); got != off {
			t.Errorf("Rank %d: expected %v, got %v", rank, off, got)
		}
	}
	if got := OffsetForRank(1, 10); got != -10 {
		t.Errorf("Expected -10 with base 10, got %v", got)
	}
}

func TestCompetingEdgesSortedAndUndirected(t *testing.T) {
	edges := []flow.Edge{
		chainEdge("E3", "N1", "N2"),
		{ID: "direct", Source: "N1", Target: "N2"},
		chainEdge("E1", "N2", "N1"),
		chainEdge("other", "N1", "N3", "N2"),
		chainEdge("E2", "N0", "N1", "N2"),
	}
	got := CompetingEdges(edges, "N1", "N2")
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	want := []string{"E1", "E2", "E3"}
	if len(ids) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestThreeCompetingOffsets(t *testing.T) {
	edges := []flow.Edge{
		chainEdge("E2", "N1", "N2"),
		chainEdge("E3", "N1", "N2"),
		chainEdge("E1", "N1", "N2"),
	}
	eng := newOffsetEngine(edges, DefaultBaseShift)
	want := map[string]float64{"E1": 30, "E2": -30, "E3": 60}
	seen := map[float64]bool{}
	for id, off := range want {
		got := eng.offset(id, "N1", "N2")
		if got != off {
			t.Errorf("%s: expected %v, got %v", id, off, got)
		}
		seen[got] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected distinct offsets, got %v", seen)
	}
}

func TestOffsetUnknownEdge(t *testing.T) {
	eng := newOffsetEngine([]flow.Edge{chainEdge("E1", "a", "b")}, 0)
	if got := eng.offset("missing", "a", "b"); got != 0 {
		t.Errorf("Expected 0 for unknown edge, got %v", got)
	}
	if got := eng.offset("E1", "a", "c"); got != 0 {
		t.Errorf("Expected 0 for span the edge never visits, got %v", got)
	}
	if eng.base != DefaultBaseShift {
		t.Errorf("Expected default base, got %v", eng.base)
	}
}

func TestOffsetMemoMatchesDirect(t *testing.T) {
	edges := []flow.Edge{chainEdge("b", "x", "y"), chainEdge("a", "y", "x")}
	eng := newOffsetEngine(edges, DefaultBaseShift)
	// Second lookup in the other direction hits the memo.
	first := eng.offset("b", "x", "y")
	second := eng.offset("b", "y", "x")
	direct := OffsetForRank(Rank("b", CompetingEdges(edges, "x", "y")), DefaultBaseShift)
	if first != direct || second != direct {
		t.Errorf("Expected %v both ways, got %v and %v", direct, first, second)
	}
}

func TestShift(t *testing.T) {
	p := Point{10, 20}
	if got := Shift(p, flow.HandleLeft, 30); got != (Point{10, 50}) {
		t.Errorf("Left handle should shift y, got %v", got)
	}
	if got := Shift(p, flow.HandleRight, -30); got != (Point{10, -10}) {
		t.Errorf("Right handle should shift y, got %v", got)
	}
	if got := Shift(p, flow.HandleTop, 30); got != (Point{40, 20}) {
		t.Errorf("Top handle should shift x, got %v", got)
	}
	if got := Shift(p, flow.HandleBottom, 0); got != p {
		t.Errorf("Zero offset should not move the point, got %v", got)
	}
}
