package flow

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseHandle(t *testing.T) {
	for _, s := range []string{"top", "Right", " bottom ", "left", ""} {
		if _, err := ParseHandle(s); err != nil {
			t.Errorf("%q: unexpected error %v", s, err)
		}
	}
	if _, err := ParseHandle("middle"); err == nil {
		t.Error("Expected error for unknown handle")
	}
	if HandleTop.Opposite() != HandleBottom || HandleLeft.Opposite() != HandleRight {
		t.Error("Unexpected opposite handles")
	}
	if HandleNone.Or(HandleRight) != HandleRight || HandleTop.Or(HandleRight) != HandleTop {
		t.Error("Or should only replace unset handles")
	}
}

func TestParseEdgeKind(t *testing.T) {
	tests := map[string]EdgeKind{
		"":               KindSimple,
		"default":        KindSimple,
		"curved":         KindCurved,
		"striped":        KindStriped,
		"double-striped": KindDoubleStriped,
		"multi-segment":  KindMultiSegment,
		"bezier":         KindSimple,
	}
	for in, want := range tests {
		if got := ParseEdgeKind(in); got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestNodeSizeFallback(t *testing.T) {
	n := Node{ID: "a", Position: Position{10, 10}}
	if n.Size() != DefaultSize {
		t.Errorf("Expected default size, got %v", n.Size())
	}
	if c := n.Center(); c.X != 85 || c.Y != 40 {
		t.Errorf("Unexpected centre %v", c)
	}
	n.Measured = &Size{Width: 20, Height: 10}
	if n.Size().Width != 20 {
		t.Errorf("Expected measured size, got %v", n.Size())
	}
}

func TestInitialFlow(t *testing.T) {
	f := InitialFlow()
	if len(f.Nodes) != 2 || len(f.Edges) != 1 {
		t.Fatalf("Expected 2 nodes and 1 edge, got %d/%d", len(f.Nodes), len(f.Edges))
	}
	e := f.Edges[0]
	if e.Kind() != KindStriped || e.SourceHandle != HandleBottom || e.TargetHandle != HandleTop {
		t.Errorf("Unexpected seed edge %+v", e)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Seed flow should validate: %v", err)
	}
}

func TestJSONShape(t *testing.T) {
	f := New()
	f.Nodes = append(f.Nodes, Node{ID: "1", Position: Position{1, 2}, Data: NodeData{Label: "A"}})
	gen := NewCounterIDs(7)
	if _, err := f.AddMultiSegment(gen, []string{"1", "2"}, ChainOptions{StartLabel: "s", Dashed: true}); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"nodeSequence":["1","2"]`, `"isDashed":true`, `"startLabel":"s"`, `"type":"multi-segment"`, `"zoom":1`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}

	var back FlowData
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Edges[0].Sequence()[1] != "2" || back.Nodes[0].Position.Y != 2 {
		t.Errorf("Unexpected round trip %+v", back)
	}
}

func TestAddNode(t *testing.T) {
	f := InitialFlow()
	gen := NewCounterIDs(3)
	n := f.AddNode(gen, "", Position{5, 5})
	if n.ID != "3" || n.Data.Label != "New block 3" || n.Type != "custom" {
		t.Errorf("Unexpected node %+v", n)
	}
	if n2 := f.AddNode(gen, "Named", Position{}); n2.ID != "4" || n2.Data.Label != "Named" {
		t.Errorf("Unexpected node %+v", n2)
	}
	if len(f.Nodes) != 4 {
		t.Errorf("Expected 4 nodes, got %d", len(f.Nodes))
	}
}

func TestConnect(t *testing.T) {
	f := InitialFlow()
	e, err := f.Connect("2", "1", HandleRight, HandleLeft, KindCurved)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "xy-edge__2right-1left" {
		t.Errorf("Unexpected id %q", e.ID)
	}
	if _, err := f.Connect("2", "1", HandleRight, HandleLeft, KindCurved); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("Expected ErrDuplicateEdge, got %v", err)
	}
	if _, err := f.Connect("2", "9", "", "", KindSimple); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("Expected ErrNoSuchNode, got %v", err)
	}
	if _, err := f.Connect("1", "2", "", "", KindMultiSegment); err == nil {
		t.Error("Expected multi-segment kind to be rejected")
	}
}

func TestAddMultiSegment(t *testing.T) {
	f := InitialFlow()
	gen := NewCounterIDs(1)
	if _, err := f.AddMultiSegment(gen, []string{"1"}, ChainOptions{}); !errors.Is(err, ErrShortSequence) {
		t.Errorf("Expected ErrShortSequence, got %v", err)
	}
	seq := []string{"1", "2", "ghost"}
	e, err := f.AddMultiSegment(gen, seq, ChainOptions{Color: "#f00"})
	if err != nil {
		t.Fatal(err)
	}
	seq[0] = "changed"
	if e.ID != "multi-1" || e.Source != "1" || e.Target != "ghost" {
		t.Errorf("Unexpected edge %+v", e)
	}
	if e.Data.NodeSequence[0] != "1" {
		t.Error("Sequence should be copied")
	}
	if e.MarkerEnd == nil || e.MarkerEnd.Color != "#f00" || e.MarkerEnd.Type != MarkerArrowClosed {
		t.Errorf("Unexpected marker %+v", e.MarkerEnd)
	}
	d, _ := f.AddMultiSegment(gen, []string{"1", "2"}, ChainOptions{})
	if d.MarkerEnd.Color != DefaultChainColor {
		t.Errorf("Expected default marker color, got %q", d.MarkerEnd.Color)
	}
}

func TestRemoveNodeKeepsChains(t *testing.T) {
	f := InitialFlow()
	f.AddMultiSegment(NewCounterIDs(1), []string{"1", "2"}, ChainOptions{})
	if !f.RemoveNode("2") {
		t.Fatal("Expected node to be removed")
	}
	if len(f.Edges) != 1 || !f.Edges[0].IsMultiSegment() {
		t.Errorf("Expected only the chain to survive, got %+v", f.Edges)
	}
	if f.RemoveNode("2") {
		t.Error("Second removal should report false")
	}
	if !f.RemoveEdge("multi-1") || len(f.Edges) != 0 {
		t.Error("Expected chain to be removed")
	}
}

func TestNodeMutations(t *testing.T) {
	f := InitialFlow()
	if err := f.MoveNode("1", Position{50, 60}); err != nil {
		t.Fatal(err)
	}
	if err := f.Measure("1", Size{Width: 10, Height: 20}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetLabel("1", "Start"); err != nil {
		t.Fatal(err)
	}
	n, _ := f.Node("1")
	if n.Position.X != 50 || n.Size().Height != 20 || n.Data.Label != "Start" {
		t.Errorf("Unexpected node %+v", n)
	}
	if err := f.MoveNode("nope", Position{}); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("Expected ErrNoSuchNode, got %v", err)
	}
}

func TestChainBuilder(t *testing.T) {
	f := InitialFlow()
	gen := NewCounterIDs(1)
	var b ChainBuilder
	b.Toggle("1")
	if _, err := b.Confirm(f, gen); !errors.Is(err, ErrShortSequence) {
		t.Errorf("Expected ErrShortSequence, got %v", err)
	}
	if !b.Selected("1") {
		t.Error("Failed confirm should keep the selection")
	}
	b.Toggle("2")
	b.Toggle("1")
	b.Toggle("1")
	if got := b.Sequence(); len(got) != 2 || got[0] != "2" || got[1] != "1" {
		t.Errorf("Expected [2 1], got %v", got)
	}
	b.Options().EndLabel = "done"
	e, err := b.Confirm(f, gen)
	if err != nil {
		t.Fatal(err)
	}
	if e.Data.EndLabel != "done" || e.Source != "2" {
		t.Errorf("Unexpected chain %+v", e)
	}
	if len(b.Sequence()) != 0 || b.Options().EndLabel != "" {
		t.Error("Builder should reset after confirm")
	}
}

func TestValidate(t *testing.T) {
	f := InitialFlow()
	f.Nodes = append(f.Nodes, Node{ID: "1"})
	if err := f.Validate(); err == nil {
		t.Error("Expected duplicate node error")
	}

	f = InitialFlow()
	f.Edges[0].SourceHandle = "middle"
	if err := f.Validate(); err == nil {
		t.Error("Expected invalid handle error")
	}
}

func TestProblems(t *testing.T) {
	f := InitialFlow()
	f.Edges = append(f.Edges,
		Edge{ID: "m", Type: KindMultiSegment, Data: &MultiSegmentData{NodeSequence: []string{"1", "x"}}},
		Edge{ID: "d", Source: "1", Target: "y"},
	)
	got := f.Problems()
	if len(got) != 3 {
		t.Fatalf("Expected 3 problems, got %v", got)
	}
	if got[0].EdgeID != "m" || !strings.Contains(got[1].String(), "fewer than 2") {
		t.Errorf("Unexpected problems %v", got)
	}
	if got[2].EdgeID != "d" {
		t.Errorf("Unexpected problem %v", got[2])
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Dangling references should still validate: %v", err)
	}
}

func TestRandomIDs(t *testing.T) {
	a := &RandomIDs{}
	b := &RandomIDs{}
	x, y := a.NextID("node"), b.NextID("node")
	if len(x) != 8 || x != y {
		t.Errorf("Expected reproducible ids with the default source, got %q %q", x, y)
	}
	if a.NextID("node") == x {
		t.Error("Expected a fresh id on the next call")
	}
}
