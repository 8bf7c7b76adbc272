package route

import (
	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// Chain stroke defaults.
const (
	ChainWidth = 3.0
	ChainDash  = "10 5"
)

// Stroke is one drawn layer of a connector.
type Stroke struct {
	Path       string  `json:"path"`
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Dash       string  `json:"dash,omitempty"`
	DashOffset float64 `json:"dashOffset,omitempty"`
	DX         float64 `json:"dx,omitempty"` // Translation of the whole layer
	DY         float64 `json:"dy,omitempty"`
	Marker     bool    `json:"marker,omitempty"` // Arrowhead at the end of this layer
}

// Connector is the render description of one edge.
type Connector struct {
	EdgeID      string        `json:"edgeId"`
	Kind        flow.EdgeKind `json:"kind"`
	Paths       []string      `json:"paths"`
	Strokes     []Stroke      `json:"strokes"`
	Labels      []Label       `json:"labels,omitempty"`
	MarkerColor string        `json:"markerColor,omitempty"`
	Segments    []Segment     `json:"-"`
}

// End returns the terminal point of the connector.
func (c Connector) End() (Point, bool) {
	if len(c.Segments) == 0 {
		return Point{}, false
	}
	return c.Segments[len(c.Segments)-1].End(), true
}

// Render is the routed form of a whole diagram.
type Render struct {
	Connectors []Connector `json:"connectors"`
}

// Connector returns the routed edge with the given id.
func (r Render) Connector(id string) (Connector, bool) {
	for _, c := range r.Connectors {
		if c.EdgeID == id {
			return c, true
		}
	}
	return Connector{}, false
}

// Router turns diagram snapshots into connector geometry. A Router holds
// only settings; every call recomputes from the snapshot it is given.
type Router struct {
	BaseShift         float64
	Path              PathOptions
	AvoidLabelOverlap bool
}

// NewRouter returns a Router with the standard settings.
func NewRouter() *Router {
	return &Router{
		BaseShift:         DefaultBaseShift,
		Path:              DefaultPathOptions(),
		AvoidLabelOverlap: true,
	}
}

// RouteAll routes every edge of f in edge order. Edges that cannot be drawn
// yet (missing nodes, short chains) are left out.
func (r *Router) RouteAll(f *flow.FlowData) Render {
	out := Render{Connectors: make([]Connector, 0, len(f.Edges))}
	p := r.pass(f)
	for _, e := range f.Edges {
		if c, ok := p.connector(e); ok {
			out.Connectors = append(out.Connectors, c)
		}
	}
	return out
}

// Route routes a single edge of f. It returns false when the edge renders
// nothing.
func (r *Router) Route(e flow.Edge, f *flow.FlowData) (Connector, bool) {
	return r.pass(f).connector(e)
}

// pass is the state of one routing call.
type pass struct {
	r      *Router
	nodes  map[string]flow.Node
	edges  []flow.Edge
	offset *offsetEngine
	labels *LabelPlacer
}

func (r *Router) pass(f *flow.FlowData) *pass {
	p := &pass{
		r:      r,
		nodes:  f.NodeMap(),
		edges:  f.Edges,
		offset: newOffsetEngine(f.Edges, r.BaseShift),
	}
	if r.AvoidLabelOverlap {
		rects := make([]Rect, len(f.Nodes))
		for i, n := range f.Nodes {
			rects[i] = Bounds(n)
		}
		p.labels = NewLabelPlacer(rects)
	}
	return p
}

// chain expands a multi-segment edge into one orthogonal segment per
// consecutive pair of resolvable nodes.
func (p *pass) chain(e flow.Edge) (Connector, bool) {
	d := e.Data
	if d == nil {
		return Connector{}, false
	}
	var nodes []flow.Node
	for _, id := range d.NodeSequence {
		if n, ok := p.nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) < 2 {
		return Connector{}, false
	}

	color := d.Color
	if color == "" {
		color = flow.DefaultChainColor
	}
	var dash string
	if d.IsDashed {
		dash = ChainDash
	}
	c := Connector{EdgeID: e.ID, Kind: flow.KindMultiSegment, MarkerColor: color}
	if e.MarkerEnd != nil && e.MarkerEnd.Color != "" {
		c.MarkerColor = e.MarkerEnd.Color
	}

	last := len(nodes) - 2
	for i := 0; i <= last; i++ {
		s, t := nodes[i], nodes[i+1]
		ports := ResolveHandles(s, t, p.edges)
		off := p.offset.offset(e.ID, s.ID, t.ID)
		src := Shift(ports.SourcePos, ports.SourceHandle, off)
		dst := Shift(ports.TargetPos, ports.TargetHandle, off)
		seg := BuildOrthogonal(src, ports.SourceHandle, dst, ports.TargetHandle, p.r.Path)

		c.Segments = append(c.Segments, seg)
		c.Paths = append(c.Paths, seg.D)
		c.Strokes = append(c.Strokes, Stroke{
			Path:   seg.D,
			Color:  color,
			Width:  ChainWidth,
			Dash:   dash,
			Marker: i == last,
		})
	}

	if d.StartLabel != "" {
		a := c.Segments[0].StartLabel
		c.Labels = append(c.Labels, p.place(Label{Text: d.StartLabel, X: a.X, Y: a.Y, Role: RoleStart}))
	}
	if d.EndLabel != "" {
		a := c.Segments[last].EndLabel
		c.Labels = append(c.Labels, p.place(Label{Text: d.EndLabel, X: a.X, Y: a.Y, Role: RoleEnd}))
	}
	return c, true
}

func (p *pass) place(l Label) Label {
	if p.labels == nil {
		return l
	}
	return p.labels.Place(l)
}
