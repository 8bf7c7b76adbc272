package flow

import (
	"fmt"
)

// Validate checks that the diagram is well-formed: ids are present and
// unique and handles name a real side. Dangling references are not errors;
// see Problems.
func (f *FlowData) Validate() error {
	nodes := make(map[string]bool, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d has no id", i)
		}
		if nodes[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		nodes[n.ID] = true
	}

	edges := make(map[string]bool, len(f.Edges))
	for i, e := range f.Edges {
		if e.ID == "" {
			return fmt.Errorf("edge %d has no id", i)
		}
		if edges[e.ID] {
			return fmt.Errorf("duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true
		if !e.SourceHandle.Valid() {
			return fmt.Errorf("edge %q: invalid source handle %q", e.ID, e.SourceHandle)
		}
		if !e.TargetHandle.Valid() {
			return fmt.Errorf("edge %q: invalid target handle %q", e.ID, e.TargetHandle)
		}
	}
	return nil
}

// Problem is a non-fatal finding about a diagram.
type Problem struct {
	EdgeID  string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("edge %s: %s", p.EdgeID, p.Message)
}

// Problems lists references the router will have to skip.
func (f *FlowData) Problems() []Problem {
	nodes := f.NodeMap()
	var out []Problem
	for _, e := range f.Edges {
		if e.IsMultiSegment() {
			seq := e.Sequence()
			if len(seq) < 2 {
				out = append(out, Problem{e.ID, fmt.Sprintf("node sequence has %d entries", len(seq))})
				continue
			}
			resolved := 0
			for _, id := range seq {
				if _, ok := nodes[id]; ok {
					resolved++
				} else {
					out = append(out, Problem{e.ID, fmt.Sprintf("missing node %q", id)})
				}
			}
			if resolved < 2 {
				out = append(out, Problem{e.ID, "fewer than 2 nodes resolve; nothing is drawn"})
			}
			continue
		}
		if _, ok := nodes[e.Source]; !ok {
			out = append(out, Problem{e.ID, fmt.Sprintf("missing source %q", e.Source)})
		}
		if _, ok := nodes[e.Target]; !ok {
			out = append(out, Problem{e.ID, fmt.Sprintf("missing target %q", e.Target)})
		}
	}
	return out
}
