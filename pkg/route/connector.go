package route

import (
	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// Direct connector appearance.
const (
	DefaultEdgeColor = "#b1b1b7"
	CurveRadius      = 15.0
	StripeThreshold  = 100.0 // Shorter striped connectors are drawn straight
	StripeWidth      = 20.0
	StripeDash       = "100 100"
	BandWidth        = 16.0
)

// connector dispatches on the closed set of edge kinds.
func (p *pass) connector(e flow.Edge) (Connector, bool) {
	switch e.Kind() {
	case flow.KindMultiSegment:
		return p.chain(e)
	case flow.KindCurved:
		return p.direct(e, p.curved)
	case flow.KindStriped:
		return p.direct(e, p.striped)
	case flow.KindDoubleStriped:
		return p.direct(e, p.doubleStriped)
	default:
		return p.direct(e, p.simple)
	}
}

type strokeFunc func(src Point, sh flow.Handle, dst Point, th flow.Handle) (Segment, []Stroke)

// direct resolves the endpoints of a single-span edge and hands them to draw.
// Unset handles attach right of the source and left of the target.
func (p *pass) direct(e flow.Edge, draw strokeFunc) (Connector, bool) {
	s, ok := p.nodes[e.Source]
	if !ok {
		return Connector{}, false
	}
	t, ok := p.nodes[e.Target]
	if !ok {
		return Connector{}, false
	}
	sh := e.SourceHandle.Or(flow.HandleRight)
	th := e.TargetHandle.Or(flow.HandleLeft)
	seg, strokes := draw(AnchorPoint(s, sh), sh, AnchorPoint(t, th), th)

	c := Connector{
		EdgeID:   e.ID,
		Kind:     e.Kind(),
		Paths:    []string{seg.D},
		Strokes:  strokes,
		Segments: []Segment{seg},
	}
	if e.MarkerEnd != nil {
		c.MarkerColor = e.MarkerEnd.Color
		if c.MarkerColor == "" {
			c.MarkerColor = strokes[len(strokes)-1].Color
		}
		c.Strokes[len(c.Strokes)-1].Marker = true
	}
	return c, true
}

func straight(src Point, sh flow.Handle, dst Point, th flow.Handle) Segment {
	pts := []Point{src, dst}
	return Segment{Points: pts, D: PathData(pts, 0), SourceHandle: sh, TargetHandle: th}
}

func (p *pass) step(src Point, sh flow.Handle, dst Point, th flow.Handle, radius float64) Segment {
	opts := p.r.Path
	opts.CornerRadius = radius
	return BuildOrthogonal(src, sh, dst, th, opts)
}

func (p *pass) simple(src Point, sh flow.Handle, dst Point, th flow.Handle) (Segment, []Stroke) {
	seg := straight(src, sh, dst, th)
	return seg, []Stroke{{Path: seg.D, Color: DefaultEdgeColor, Width: 1}}
}

func (p *pass) curved(src Point, sh flow.Handle, dst Point, th flow.Handle) (Segment, []Stroke) {
	seg := p.step(src, sh, dst, th, CurveRadius)
	return seg, []Stroke{{Path: seg.D, Color: DefaultEdgeColor, Width: 1}}
}

func (p *pass) stripedPath(src Point, sh flow.Handle, dst Point, th flow.Handle) Segment {
	if src.Dist(dst) > StripeThreshold {
		return p.step(src, sh, dst, th, 0)
	}
	return straight(src, sh, dst, th)
}

// stripeLayers draws a frame, a white body and a dashed black pattern.
func stripeLayers(d string, width, dashOffset, dx, dy float64) []Stroke {
	return []Stroke{
		{Path: d, Color: "black", Width: width + 2, DX: dx, DY: dy},
		{Path: d, Color: "white", Width: width, DX: dx, DY: dy},
		{Path: d, Color: "black", Width: width, Dash: StripeDash, DashOffset: dashOffset, DX: dx, DY: dy},
	}
}

func (p *pass) striped(src Point, sh flow.Handle, dst Point, th flow.Handle) (Segment, []Stroke) {
	seg := p.stripedPath(src, sh, dst, th)
	return seg, stripeLayers(seg.D, StripeWidth, 0, 0, 0)
}

// doubleStriped draws two touching bands either side of a square step path,
// the second dash-shifted so the pattern alternates.
func (p *pass) doubleStriped(src Point, sh flow.Handle, dst Point, th flow.Handle) (Segment, []Stroke) {
	seg := p.step(src, sh, dst, th, 0)
	v := dst.Sub(src)
	l := v.Len()
	if l == 0 {
		l = 1
	}
	off := (BandWidth + 2) / 2
	nx, ny := -v.Y/l*off, v.X/l*off
	strokes := stripeLayers(seg.D, BandWidth, 0, nx, ny)
	strokes = append(strokes, stripeLayers(seg.D, BandWidth, 100, -nx, -ny)...)
	return seg, strokes
}
