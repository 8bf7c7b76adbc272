package flow

import (
	"fmt"
	"slices"
)

// Default appearance of new multi-segment chains.
const (
	DefaultChainColor = "#555"
	MarkerArrowClosed = "arrowclosed"
	chainZIndex       = 1000
)

// AddNode appends a custom node with an id from gen and returns it.
func (f *FlowData) AddNode(gen IDGenerator, label string, pos Position) Node {
	id := gen.NextID("node")
	if label == "" {
		label = "New block " + id
	}
	n := Node{ID: id, Type: "custom", Position: pos, Data: NodeData{Label: label}}
	f.Nodes = append(f.Nodes, n)
	return n
}

// Connect adds a direct connector between two nodes.
func (f *FlowData) Connect(source, target string, sourceHandle, targetHandle Handle, kind EdgeKind) (Edge, error) {
	if f.NodeIndex(source) < 0 {
		return Edge{}, fmt.Errorf("source %q: %w", source, ErrNoSuchNode)
	}
	if f.NodeIndex(target) < 0 {
		return Edge{}, fmt.Errorf("target %q: %w", target, ErrNoSuchNode)
	}
	if kind == KindMultiSegment {
		return Edge{}, fmt.Errorf("use AddMultiSegment for %s edges", kind)
	}
	id := fmt.Sprintf("xy-edge__%s%s-%s%s", source, sourceHandle, target, targetHandle)
	if f.EdgeIndex(id) >= 0 {
		return Edge{}, fmt.Errorf("%s: %w", id, ErrDuplicateEdge)
	}
	e := Edge{
		ID:           id,
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Type:         ParseEdgeKind(string(kind)),
	}
	f.Edges = append(f.Edges, e)
	return e, nil
}

// ChainOptions carries the optional captions and stroke of a chain.
type ChainOptions struct {
	StartLabel string
	EndLabel   string
	Dashed     bool
	Color      string
}

// AddMultiSegment adds a routed chain through sequence. Unknown ids are
// accepted; they are skipped at render time.
func (f *FlowData) AddMultiSegment(gen IDGenerator, sequence []string, opts ChainOptions) (Edge, error) {
	if len(sequence) < 2 {
		return Edge{}, ErrShortSequence
	}
	color := opts.Color
	markerColor := color
	if markerColor == "" {
		markerColor = DefaultChainColor
	}
	e := Edge{
		ID:     "multi-" + gen.NextID("edge"),
		Source: sequence[0],
		Target: sequence[len(sequence)-1],
		Type:   KindMultiSegment,
		ZIndex: chainZIndex,
		MarkerEnd: &Marker{
			Type:  MarkerArrowClosed,
			Color: markerColor,
		},
		Data: &MultiSegmentData{
			NodeSequence: slices.Clone(sequence),
			StartLabel:   opts.StartLabel,
			EndLabel:     opts.EndLabel,
			IsDashed:     opts.Dashed,
			Color:        color,
		},
	}
	if f.EdgeIndex(e.ID) >= 0 {
		return Edge{}, fmt.Errorf("%s: %w", e.ID, ErrDuplicateEdge)
	}
	f.Edges = append(f.Edges, e)
	return e, nil
}

// RemoveEdge deletes an edge. It returns false if the id is unknown.
func (f *FlowData) RemoveEdge(id string) bool {
	i := f.EdgeIndex(id)
	if i < 0 {
		return false
	}
	f.Edges = slices.Delete(f.Edges, i, i+1)
	return true
}

// RemoveNode deletes a node and the direct edges attached to it.
// Multi-segment chains keep their references and skip the missing node.
func (f *FlowData) RemoveNode(id string) bool {
	i := f.NodeIndex(id)
	if i < 0 {
		return false
	}
	f.Nodes = slices.Delete(f.Nodes, i, i+1)
	f.Edges = slices.DeleteFunc(f.Edges, func(e Edge) bool {
		return !e.IsMultiSegment() && (e.Source == id || e.Target == id)
	})
	return true
}

// MoveNode sets the top-left position of a node.
func (f *FlowData) MoveNode(id string, pos Position) error {
	i := f.NodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrNoSuchNode)
	}
	f.Nodes[i].Position = pos
	return nil
}

// Measure records the rendered size of a node.
func (f *FlowData) Measure(id string, size Size) error {
	i := f.NodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrNoSuchNode)
	}
	f.Nodes[i].Measured = &size
	return nil
}

// SetLabel changes the caption of a node.
func (f *FlowData) SetLabel(id, label string) error {
	i := f.NodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrNoSuchNode)
	}
	f.Nodes[i].Data.Label = label
	return nil
}

// ChainBuilder collects nodes clicked in order while a multi-segment edge is
// being created.
type ChainBuilder struct {
	selected []string
	opts     ChainOptions
}

// Toggle appends id to the chain, or removes it if already selected.
func (b *ChainBuilder) Toggle(id string) {
	if i := slices.Index(b.selected, id); i >= 0 {
		b.selected = slices.Delete(b.selected, i, i+1)
		return
	}
	b.selected = append(b.selected, id)
}

// Selected reports whether id is part of the chain.
func (b *ChainBuilder) Selected(id string) bool {
	return slices.Contains(b.selected, id)
}

// Sequence returns a copy of the selected ids in click order.
func (b *ChainBuilder) Sequence() []string {
	return slices.Clone(b.selected)
}

// Options returns the captions and stroke settings for the chain.
func (b *ChainBuilder) Options() *ChainOptions {
	return &b.opts
}

// Confirm adds the chain to f and resets the builder. The builder is left
// untouched when fewer than 2 nodes are selected.
func (b *ChainBuilder) Confirm(f *FlowData, gen IDGenerator) (Edge, error) {
	e, err := f.AddMultiSegment(gen, b.selected, b.opts)
	if err != nil {
		return Edge{}, err
	}
	b.Cancel()
	return e, nil
}

// Cancel clears the selection and options.
func (b *ChainBuilder) Cancel() {
	b.selected = nil
	b.opts = ChainOptions{}
}
