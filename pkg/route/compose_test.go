package route

import (
	"reflect"
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

func scenario() *flow.FlowData {
	f := flow.New()
	f.Nodes = []flow.Node{node("1", 0, 0), node("2", 300, 150)}
	f.Nodes[0].Measured = &flow.Size{Width: 150, Height: 60}
	f.Nodes[1].Measured = &flow.Size{Width: 150, Height: 60}
	e := chainEdge("multi-1", "1", "2")
	e.Data.StartLabel = "350/0"
	e.Data.EndLabel = "0/350"
	e.Data.IsDashed = true
	f.Edges = []flow.Edge{e}
	return f
}

func TestRouteEndToEnd(t *testing.T) {
	f := scenario()
	c, ok := NewRouter().Route(f.Edges[0], f)
	if !ok {
		t.Fatal("Expected the chain to render")
	}
	if len(c.Paths) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(c.Paths))
	}
	if c.Paths[0] != "M 150 60 L 225 60 L 225 210 L 300 210" {
		t.Errorf("Unexpected path %q", c.Paths[0])
	}
	if len(c.Strokes) != 1 || c.Strokes[0].Dash != ChainDash {
		t.Errorf("Expected one dashed stroke, got %+v", c.Strokes)
	}
	if !c.Strokes[0].Marker || c.MarkerColor != flow.DefaultChainColor {
		t.Errorf("Expected arrowhead on the only stroke, got %+v marker %q", c.Strokes[0], c.MarkerColor)
	}
	if end, _ := c.End(); end != (Point{300, 210}) {
		t.Errorf("Expected terminal point (300,210), got %v", end)
	}

	if len(c.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %d", len(c.Labels))
	}
	start, end := c.Labels[0], c.Labels[1]
	if start.Text != "350/0" || start.Role != RoleStart || start.X != 225 || start.Y != 40 {
		t.Errorf("Unexpected start label %+v", start)
	}
	if end.Text != "0/350" || end.Role != RoleEnd || end.X != 225 || end.Y != 190 {
		t.Errorf("Unexpected end label %+v", end)
	}
}

func TestRouteMissingMiddleNode(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("a", 0, 0), node("c", 400, 0)}
	f.Edges = []flow.Edge{chainEdge("m", "a", "b", "c")}

	c, ok := NewRouter().Route(f.Edges[0], f)
	if !ok {
		t.Fatal("Expected the surviving pair to render")
	}
	if len(c.Paths) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(c.Paths))
	}
	// a-c is not a span of the raw sequence, so it is not shifted.
	if c.Paths[0] != "M 150 30 L 275 30 L 275 30 L 400 30" {
		t.Errorf("Unexpected path %q", c.Paths[0])
	}
}

func TestRouteSingleResolvedNode(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("a", 0, 0)}
	f.Edges = []flow.Edge{chainEdge("m", "a", "gone"), chainEdge("n", "x", "y")}

	if _, ok := NewRouter().Route(f.Edges[0], f); ok {
		t.Error("Expected nothing to render")
	}
	if r := NewRouter().RouteAll(f); len(r.Connectors) != 0 {
		t.Errorf("Expected no connectors, got %d", len(r.Connectors))
	}
}

func TestRouteShortOrEmptyChain(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("a", 0, 0)}
	short := chainEdge("s", "a")
	noData := flow.Edge{ID: "n", Type: flow.KindMultiSegment}
	for _, e := range []flow.Edge{short, noData} {
		if _, ok := NewRouter().Route(e, f); ok {
			t.Errorf("%s: expected nothing to render", e.ID)
		}
	}
}

func TestRouteChainStyling(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("a", 0, 0), node("b", 300, 0), node("c", 300, 300), node("d", 0, 300)}
	e := chainEdge("m", "a", "b", "c", "d")
	e.Data.Color = "#ff0000"
	e.Data.StartLabel = "in"
	e.Data.EndLabel = "out"
	f.Edges = []flow.Edge{e}

	c, ok := NewRouter().Route(e, f)
	if !ok {
		t.Fatal("Expected the chain to render")
	}
	if len(c.Strokes) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(c.Strokes))
	}
	for i, s := range c.Strokes {
		if s.Color != "#ff0000" || s.Width != ChainWidth || s.Dash != "" {
			t.Errorf("Stroke %d: unexpected style %+v", i, s)
		}
		if s.Marker != (i == 2) {
			t.Errorf("Stroke %d: marker %v", i, s.Marker)
		}
	}
	if c.MarkerColor != "#ff0000" {
		t.Errorf("Expected marker colored like the chain, got %q", c.MarkerColor)
	}
	if len(c.Labels) != 2 || c.Labels[0].Role != RoleStart || c.Labels[1].Role != RoleEnd {
		t.Errorf("Expected start and end labels only, got %+v", c.Labels)
	}
	// b->c is vertical, so the last segment enters d from the right.
	if c.Segments[2].TargetHandle != flow.HandleRight {
		t.Errorf("Expected last segment to enter right, got %s", c.Segments[2].TargetHandle)
	}
}

func TestRouteCompetingChains(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("N1", 0, 0), node("N2", 400, 0)}
	f.Edges = []flow.Edge{
		chainEdge("E3", "N1", "N2"),
		chainEdge("E1", "N1", "N2"),
		chainEdge("E2", "N2", "N1"),
	}
	r := NewRouter().RouteAll(f)
	if len(r.Connectors) != 3 {
		t.Fatalf("Expected 3 connectors, got %d", len(r.Connectors))
	}
	want := map[string]float64{"E1": 60, "E2": 0, "E3": 90}
	for id, y := range want {
		c, ok := r.Connector(id)
		if !ok {
			t.Fatalf("%s not routed", id)
		}
		if got := c.Segments[0].Start().Y; got != y {
			t.Errorf("%s: expected source y %v, got %v", id, y, got)
		}
	}
}

func TestRouteInheritsDirectHandles(t *testing.T) {
	f := flow.InitialFlow()
	f.Edges = append(f.Edges, chainEdge("m", "1", "2"))
	c, ok := NewRouter().Route(f.Edges[1], f)
	if !ok {
		t.Fatal("Expected the chain to render")
	}
	if c.Paths[0] != "M 105 60 L 105 105 L 405 105 L 405 150" {
		t.Errorf("Unexpected path %q", c.Paths[0])
	}
}

func TestRouteFollowsMeasurement(t *testing.T) {
	f := scenario()
	before, _ := NewRouter().Route(f.Edges[0], f)
	if err := f.Measure("1", flow.Size{Width: 200, Height: 80}); err != nil {
		t.Fatal(err)
	}
	after, _ := NewRouter().Route(f.Edges[0], f)
	if before.Paths[0] == after.Paths[0] {
		t.Error("Expected the route to move with the measured size")
	}
	if got := after.Segments[0].Start(); got != (Point{200, 70}) {
		t.Errorf("Expected source (200,70), got %v", got)
	}
}

func TestRouteAllIdempotent(t *testing.T) {
	f := scenario()
	f.Nodes = append(f.Nodes, node("3", 0, 300))
	f.Edges = append(f.Edges,
		chainEdge("multi-2", "2", "1", "3"),
		flow.Edge{ID: "d", Source: "1", Target: "3", Type: flow.KindCurved},
	)
	f.Edges[1].Data.StartLabel = "x"

	router := NewRouter()
	a := router.RouteAll(f)
	b := router.RouteAll(f)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical renders for identical snapshots")
	}
	if len(a.Connectors) != 3 {
		t.Errorf("Expected 3 connectors, got %d", len(a.Connectors))
	}
}

func TestRouteLabelsAvoidEachOther(t *testing.T) {
	f := flow.New()
	f.Nodes = []flow.Node{node("a", 0, 0), node("b", 400, 0)}
	e1 := chainEdge("m1", "a", "b")
	e1.Data.StartLabel = "first"
	e2 := chainEdge("m2", "a", "b")
	e2.Data.StartLabel = "second"
	f.Edges = []flow.Edge{e1, e2}

	r := NewRouter().RouteAll(f)
	l1 := r.Connectors[0].Labels[0]
	l2 := r.Connectors[1].Labels[0]
	if RectOverlap(LabelRect(l1), LabelRect(l2)) > 0 {
		t.Errorf("Labels overlap: %+v %+v", l1, l2)
	}

	plain := NewRouter()
	plain.AvoidLabelOverlap = false
	c, _ := plain.Route(e1, f)
	seg := c.Segments[0]
	if c.Labels[0].X != seg.StartLabel.X || c.Labels[0].Y != seg.StartLabel.Y {
		t.Errorf("Expected label at the raw anchor, got %+v", c.Labels[0])
	}
}
