package route

import (
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

func TestAnchorPoint(t *testing.T) {
	n := node("n", 10, 20) // default 150x60
	tests := []struct {
		h    flow.Handle
		want Point
	}{
		{flow.HandleTop, Point{85, 20}},
		{flow.HandleRight, Point{160, 50}},
		{flow.HandleBottom, Point{85, 80}},
		{flow.HandleLeft, Point{10, 50}},
		{flow.HandleNone, Point{85, 50}},
	}
	for _, tt := range tests {
		if got := AnchorPoint(n, tt.h); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.h, tt.want, got)
		}
	}
}

func TestBoundsUsesMeasurement(t *testing.T) {
	n := node("n", 0, 0)
	if b := Bounds(n); b.W != 150 || b.H != 60 || b.X != 75 || b.Y != 30 {
		t.Errorf("Unexpected default bounds %+v", b)
	}
	n.Measured = &flow.Size{Width: 40, Height: 20}
	if b := Bounds(n); b.W != 40 || b.H != 20 || b.X != 20 || b.Y != 10 {
		t.Errorf("Unexpected measured bounds %+v", b)
	}
	n.Measured = &flow.Size{}
	if b := Bounds(n); b.W != 150 {
		t.Errorf("Zero measurement should fall back to default, got %+v", b)
	}
}

func TestRectOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	if got := RectOverlap(a, Rect{X: 5, Y: 5, W: 10, H: 10}); got != 25 {
		t.Errorf("Expected 25, got %v", got)
	}
	if got := RectOverlap(a, Rect{X: 10, Y: 0, W: 10, H: 10}); got != 0 {
		t.Errorf("Touching rects should not overlap, got %v", got)
	}
}

func TestPointMath(t *testing.T) {
	p := Point{3, 4}
	if p.Len() != 5 {
		t.Errorf("Expected length 5, got %v", p.Len())
	}
	if got := p.Mid(Point{5, 6}); got != (Point{4, 5}) {
		t.Errorf("Unexpected midpoint %v", got)
	}
	if got := Outward(flow.HandleTop); got != (Point{0, -1}) {
		t.Errorf("Unexpected outward vector %v", got)
	}
}
