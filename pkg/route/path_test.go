package route

import (
	"strings"
	"testing"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

func TestBuildOrthogonalHorizontal(t *testing.T) {
	seg := BuildOrthogonal(Point{150, 60}, flow.HandleRight, Point{300, 210}, flow.HandleLeft, DefaultPathOptions())

	want := []Point{{150, 60}, {225, 60}, {225, 210}, {300, 210}}
	if len(seg.Points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(seg.Points))
	}
	for i, p := range want {
		if seg.Points[i] != p {
			t.Errorf("Point %d: expected %v, got %v", i, p, seg.Points[i])
		}
	}
	if seg.D != "M 150 60 L 225 60 L 225 210 L 300 210" {
		t.Errorf("Unexpected path %q", seg.D)
	}
	if seg.StartLabel != (Point{225, 40}) {
		t.Errorf("Expected start label (225,40), got %v", seg.StartLabel)
	}
	if seg.EndLabel != (Point{225, 190}) {
		t.Errorf("Expected end label (225,190), got %v", seg.EndLabel)
	}
}

func TestBuildOrthogonalVertical(t *testing.T) {
	seg := BuildOrthogonal(Point{75, 60}, flow.HandleBottom, Point{375, 150}, flow.HandleTop, DefaultPathOptions())
	if seg.D != "M 75 60 L 75 105 L 375 105 L 375 150" {
		t.Errorf("Unexpected path %q", seg.D)
	}
	// Vertical legs put captions to the right of the corner.
	if seg.StartLabel != (Point{95, 105}) {
		t.Errorf("Expected start label (95,105), got %v", seg.StartLabel)
	}
}

func TestBuildOrthogonalKickOff(t *testing.T) {
	// Target is behind the source: the trunk still leaves 30px of run.
	seg := BuildOrthogonal(Point{150, 30}, flow.HandleRight, Point{100, 200}, flow.HandleLeft, DefaultPathOptions())
	if seg.Points[1].X != 180 {
		t.Errorf("Expected trunk at x=180, got %v", seg.Points[1].X)
	}

	seg = BuildOrthogonal(Point{100, 0}, flow.HandleTop, Point{0, -10}, flow.HandleBottom, DefaultPathOptions())
	if seg.Points[1].Y != -30 {
		t.Errorf("Expected trunk at y=-30, got %v", seg.Points[1].Y)
	}
}

func TestBuildOrthogonalAlwaysRightAngles(t *testing.T) {
	cases := []struct {
		src, dst Point
		sh, th   flow.Handle
	}{
		{Point{0, 0}, Point{400, 120}, flow.HandleRight, flow.HandleLeft},
		{Point{0, 0}, Point{-400, 120}, flow.HandleLeft, flow.HandleRight},
		{Point{0, 0}, Point{80, 400}, flow.HandleBottom, flow.HandleTop},
		{Point{0, 0}, Point{80, 400}, flow.HandleBottom, flow.HandleLeft},
	}
	for _, c := range cases {
		seg := BuildOrthogonal(c.src, c.sh, c.dst, c.th, DefaultPathOptions())
		for i := 1; i < len(seg.Points); i++ {
			a, b := seg.Points[i-1], seg.Points[i]
			if a.X != b.X && a.Y != b.Y {
				t.Errorf("%s->%s leg %d is diagonal: %v -> %v", c.sh, c.th, i, a, b)
			}
		}
		if seg.Start() != c.src || seg.End() != c.dst {
			t.Errorf("Endpoints moved: %v %v", seg.Start(), seg.End())
		}
	}
}

func TestBuildOrthogonalDegenerate(t *testing.T) {
	seg := BuildOrthogonal(Point{}, flow.HandleRight, Point{}, flow.HandleLeft, DefaultPathOptions())
	if len(seg.Points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(seg.Points))
	}
	if !strings.HasPrefix(seg.D, "M 0 0") {
		t.Errorf("Unexpected path %q", seg.D)
	}
}

func TestPathDataRounded(t *testing.T) {
	got := PathData([]Point{{0, 0}, {100, 0}, {100, 100}}, 10)
	want := "M 0 0 L 90 0 Q 100 0 100 10 L 100 100"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// Radius is clamped to half the shorter leg.
	got = PathData([]Point{{0, 0}, {10, 0}, {10, 100}}, 15)
	want = "M 0 0 L 5 0 Q 10 0 10 5 L 10 100"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	if PathData(nil, 0) != "" {
		t.Error("Expected empty path for no points")
	}
}

func TestPathDataNegativeZero(t *testing.T) {
	var negZero float64
	negZero = -negZero * 0
	got := PathData([]Point{{negZero, 1.5}, {2, negZero}}, 0)
	if got != "M 0 1.5 L 2 0" {
		t.Errorf("Unexpected path %q", got)
	}
}
