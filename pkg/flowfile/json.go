package flowfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// ParseJSON parses a diagram snapshot from JSON.
func ParseJSON(data []byte) (*flow.FlowData, error) {
	f := flow.New()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse flow json: %w", err)
	}
	if f.Nodes == nil {
		f.Nodes = make([]flow.Node, 0)
	}
	if f.Edges == nil {
		f.Edges = make([]flow.Edge, 0)
	}
	if f.Viewport.Zoom == 0 {
		f.Viewport.Zoom = 1
	}
	return f, nil
}

// ToJSON converts a diagram snapshot to JSON.
func ToJSON(f *flow.FlowData, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(f, "", "  ")
	}
	return json.Marshal(f)
}
