// Package flow provides the node-and-edge data model of a flowchart diagram.
package flow

import (
	"errors"
	"fmt"
	"strings"
)

// Handle names the side of a node where a connector attaches.
type Handle string

const (
	HandleNone   Handle = ""
	HandleTop    Handle = "top"
	HandleRight  Handle = "right"
	HandleBottom Handle = "bottom"
	HandleLeft   Handle = "left"
)

// ParseHandle converts a handle id into a Handle.
func ParseHandle(s string) (Handle, error) {
	switch h := Handle(strings.ToLower(strings.TrimSpace(s))); h {
	case HandleNone, HandleTop, HandleRight, HandleBottom, HandleLeft:
		return h, nil
	}
	return HandleNone, fmt.Errorf("unknown handle %q", s)
}

// Valid reports whether h is one of the four sides or unset.
func (h Handle) Valid() bool {
	_, err := ParseHandle(string(h))
	return err == nil
}

// Horizontal returns true for left and right.
func (h Handle) Horizontal() bool {
	return h == HandleLeft || h == HandleRight
}

// Opposite returns the facing side.
func (h Handle) Opposite() Handle {
	switch h {
	case HandleTop:
		return HandleBottom
	case HandleBottom:
		return HandleTop
	case HandleLeft:
		return HandleRight
	case HandleRight:
		return HandleLeft
	}
	return HandleNone
}

// Or returns h, or def when h is unset.
func (h Handle) Or(def Handle) Handle {
	if h == HandleNone {
		return def
	}
	return h
}

// Position is the top-left corner of a node in diagram pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a measured width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultSize is used until the rendering layer measures a node.
var DefaultSize = Size{Width: 150, Height: 60}

// NodeData carries the user-visible payload of a node.
type NodeData struct {
	Label string `json:"label"`
}

// Node is a box in the diagram.
type Node struct {
	ID       string            `json:"id"`
	Type     string            `json:"type,omitempty"`
	Position Position          `json:"position"`
	Measured *Size             `json:"measured,omitempty"`
	Data     NodeData          `json:"data"`
	Style    map[string]string `json:"style,omitempty"`
}

// Size returns the measured size, or DefaultSize when the node has not been
// measured yet. Zero measurements count as unmeasured.
func (n Node) Size() Size {
	if n.Measured == nil || n.Measured.Width <= 0 || n.Measured.Height <= 0 {
		return DefaultSize
	}
	return *n.Measured
}

// Center returns the centre of the node's bounding box.
func (n Node) Center() Position {
	s := n.Size()
	return Position{X: n.Position.X + s.Width/2, Y: n.Position.Y + s.Height/2}
}

// EdgeKind selects how a connector is drawn.
type EdgeKind string

const (
	KindSimple        EdgeKind = "simple"
	KindCurved        EdgeKind = "curved"
	KindStriped       EdgeKind = "striped"
	KindDoubleStriped EdgeKind = "double-striped"
	KindMultiSegment  EdgeKind = "multi-segment"
)

// Kinds lists every connector kind in menu order.
var Kinds = []EdgeKind{KindSimple, KindCurved, KindStriped, KindDoubleStriped, KindMultiSegment}

// ParseEdgeKind maps a type tag onto the closed set of kinds. Empty,
// "default" and unknown tags are drawn as simple connectors.
func ParseEdgeKind(s string) EdgeKind {
	for _, k := range Kinds {
		if string(k) == s {
			return k
		}
	}
	return KindSimple
}

// MultiSegmentData describes a routed chain of nodes.
type MultiSegmentData struct {
	NodeSequence []string `json:"nodeSequence"`
	StartLabel   string   `json:"startLabel,omitempty"`
	EndLabel     string   `json:"endLabel,omitempty"`
	IsDashed     bool     `json:"isDashed,omitempty"`
	Color        string   `json:"color,omitempty"`
}

// Marker describes an arrowhead at the end of a connector.
type Marker struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
}

// Edge is either a direct connector or a multi-segment chain.
type Edge struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	SourceHandle Handle            `json:"sourceHandle,omitempty"`
	TargetHandle Handle            `json:"targetHandle,omitempty"`
	Type         EdgeKind          `json:"type,omitempty"`
	Data         *MultiSegmentData `json:"data,omitempty"`
	MarkerEnd    *Marker           `json:"markerEnd,omitempty"`
	ZIndex       int               `json:"zIndex,omitempty"`
}

// Kind returns the normalized connector kind.
func (e Edge) Kind() EdgeKind {
	return ParseEdgeKind(string(e.Type))
}

// IsMultiSegment returns true for routed chains.
func (e Edge) IsMultiSegment() bool {
	return e.Kind() == KindMultiSegment
}

// Sequence returns the chain of node ids, or nil for direct edges.
func (e Edge) Sequence() []string {
	if !e.IsMultiSegment() || e.Data == nil {
		return nil
	}
	return e.Data.NodeSequence
}

// Viewport is the editor camera.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// FlowData is a complete diagram snapshot.
type FlowData struct {
	Nodes     []Node   `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	Viewport  Viewport `json:"viewport"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

var (
	ErrShortSequence = errors.New("multi-segment edge needs at least 2 nodes")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrNoSuchNode    = errors.New("no such node")
)

// New returns an empty diagram with a unit zoom.
func New() *FlowData {
	return &FlowData{
		Nodes:    make([]Node, 0),
		Edges:    make([]Edge, 0),
		Viewport: Viewport{Zoom: 1},
	}
}

// InitialFlow returns the two seed blocks and the striped connector a new
// editor session starts with.
func InitialFlow() *FlowData {
	f := New()
	f.Nodes = append(f.Nodes,
		Node{ID: "1", Type: "custom", Position: Position{0, 0}, Data: NodeData{Label: "Block 1"}},
		Node{ID: "2", Type: "custom", Position: Position{300, 150}, Data: NodeData{Label: "Block 2"}},
	)
	f.Edges = append(f.Edges, Edge{
		ID: "1->2", Source: "1", Target: "2",
		SourceHandle: HandleBottom, TargetHandle: HandleTop,
		Type: KindStriped,
	})
	return f
}

// NodeIndex returns the index of a node, or -1 if not found.
func (f *FlowData) NodeIndex(id string) int {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns the node with the given id.
func (f *FlowData) Node(id string) (Node, bool) {
	if i := f.NodeIndex(id); i >= 0 {
		return f.Nodes[i], true
	}
	return Node{}, false
}

// EdgeIndex returns the index of an edge, or -1 if not found.
func (f *FlowData) EdgeIndex(id string) int {
	for i := range f.Edges {
		if f.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// Edge returns the edge with the given id.
func (f *FlowData) Edge(id string) (Edge, bool) {
	if i := f.EdgeIndex(id); i >= 0 {
		return f.Edges[i], true
	}
	return Edge{}, false
}

// NodeMap indexes nodes by id. Later duplicates win.
func (f *FlowData) NodeMap() map[string]Node {
	m := make(map[string]Node, len(f.Nodes))
	for _, n := range f.Nodes {
		m[n.ID] = n
	}
	return m
}

// String returns a short summary of the diagram.
func (f *FlowData) String() string {
	multi := 0
	for _, e := range f.Edges {
		if e.IsMultiSegment() {
			multi++
		}
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Flow: %d nodes, %d edges (%d multi-segment)\n", len(f.Nodes), len(f.Edges), multi))
	sb.WriteString(fmt.Sprintf("  Viewport: x=%g y=%g zoom=%g\n", f.Viewport.X, f.Viewport.Y, f.Viewport.Zoom))
	return sb.String()
}
