package route

import (
	"math"
	"strings"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// PathOptions tunes the orthogonal path builder.
type PathOptions struct {
	KickOff      float64 // Minimum run straight out of a node before turning
	LabelMargin  float64 // Distance between a caption anchor and the stroke
	CornerRadius float64 // 0 draws square corners
}

// DefaultPathOptions returns the standard builder settings.
func DefaultPathOptions() PathOptions {
	return PathOptions{
		KickOff:     30,
		LabelMargin: 20,
	}
}

// Segment is one orthogonal connector between two anchors.
type Segment struct {
	Points       []Point // source, corner 1, corner 2, target
	D            string  // SVG path data
	SourceHandle flow.Handle
	TargetHandle flow.Handle
	StartLabel   Point // Caption anchor near the source
	EndLabel     Point // Caption anchor near the target
}

// Start returns the first point of the segment.
func (s Segment) Start() Point { return s.Points[0] }

// End returns the last point of the segment.
func (s Segment) End() Point { return s.Points[len(s.Points)-1] }

// BuildOrthogonal joins src and dst with two right-angle turns.
//
// The route is horizontal when either handle is left or right: it runs out
// along x to a vertical trunk, along the trunk to the target's y, then into
// the target. Otherwise it runs along y to a horizontal trunk. The trunk sits
// halfway between the endpoints but never closer than KickOff to the side
// the route leaves from.
func BuildOrthogonal(src Point, sh flow.Handle, dst Point, th flow.Handle, opts PathOptions) Segment {
	var c1, c2 Point
	if sh.Horizontal() || th.Horizontal() {
		x := trunk(src.X, dst.X, sh, th, flow.HandleRight, flow.HandleLeft, opts.KickOff)
		c1 = Point{x, src.Y}
		c2 = Point{x, dst.Y}
	} else {
		y := trunk(src.Y, dst.Y, sh, th, flow.HandleBottom, flow.HandleTop, opts.KickOff)
		c1 = Point{src.X, y}
		c2 = Point{dst.X, y}
	}
	pts := []Point{src, c1, c2, dst}
	return Segment{
		Points:       pts,
		D:            PathData(pts, opts.CornerRadius),
		SourceHandle: sh,
		TargetHandle: th,
		StartLabel:   captionAnchor(src, c1, opts.LabelMargin),
		EndLabel:     captionAnchor(dst, c2, opts.LabelMargin),
	}
}

// trunk picks the cross-axis coordinate of the middle leg. plus and minus
// are the handles facing the positive and negative direction of the axis.
func trunk(s, d float64, sh, th, plus, minus flow.Handle, kick float64) float64 {
	mid := (s + d) / 2
	switch {
	case sh == plus:
		return math.Max(s+kick, mid)
	case sh == minus:
		return math.Min(s-kick, mid)
	case th == minus:
		return math.Min(d-kick, mid)
	case th == plus:
		return math.Max(d+kick, mid)
	}
	return mid
}

// captionAnchor lifts a corner off the leg that ends at an endpoint: above a
// horizontal leg, to the right of a vertical one.
func captionAnchor(end, corner Point, margin float64) Point {
	if end.Y == corner.Y {
		return Point{corner.X, corner.Y - margin}
	}
	return Point{corner.X + margin, corner.Y}
}

// PathData renders a polyline as SVG path data. With a positive radius,
// interior corners are rounded with quadratic curves no larger than half of
// either adjoining leg.
func PathData(pts []Point, radius float64) string {
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	writeCmd(&sb, "M", pts[0])
	for i := 1; i < len(pts); i++ {
		p := pts[i]
		if radius <= 0 || i == len(pts)-1 {
			writeCmd(&sb, "L", p)
			continue
		}
		prev, next := pts[i-1], pts[i+1]
		in, out := p.Dist(prev), p.Dist(next)
		r := math.Min(radius, math.Min(in/2, out/2))
		if r <= 0 {
			writeCmd(&sb, "L", p)
			continue
		}
		before := p.Sub(p.Sub(prev).Scale(r / in))
		after := p.Add(next.Sub(p).Scale(r / out))
		writeCmd(&sb, "L", before)
		sb.WriteString(" Q ")
		writeXY(&sb, p)
		sb.WriteByte(' ')
		writeXY(&sb, after)
	}
	return sb.String()
}

func writeCmd(sb *strings.Builder, cmd string, p Point) {
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(cmd)
	sb.WriteByte(' ')
	writeXY(sb, p)
}

func writeXY(sb *strings.Builder, p Point) {
	sb.WriteString(formatCoord(p.X))
	sb.WriteByte(' ')
	sb.WriteString(formatCoord(p.Y))
}
