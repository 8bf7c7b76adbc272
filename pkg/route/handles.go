package route

import (
	"math"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// Ports is the resolved attachment of one segment.
type Ports struct {
	SourcePos    Point
	SourceHandle flow.Handle
	TargetPos    Point
	TargetHandle flow.Handle
}

// ResolveHandles picks the sides a segment leaves source and enters target.
//
// A direct edge already drawn from source to target donates its handles
// (right/left when unset). Otherwise the dominant axis between the node
// centres decides, and |dx| == |dy| counts as horizontal.
func ResolveHandles(source, target flow.Node, edges []flow.Edge) Ports {
	sh, th, ok := directHandles(source.ID, target.ID, edges)
	if !ok {
		sh, th = inferHandles(Center(source), Center(target))
	}
	return Ports{
		SourcePos:    AnchorPoint(source, sh),
		SourceHandle: sh,
		TargetPos:    AnchorPoint(target, th),
		TargetHandle: th,
	}
}

func directHandles(sourceID, targetID string, edges []flow.Edge) (flow.Handle, flow.Handle, bool) {
	for _, e := range edges {
		if e.IsMultiSegment() {
			continue
		}
		if e.Source == sourceID && e.Target == targetID {
			return e.SourceHandle.Or(flow.HandleRight), e.TargetHandle.Or(flow.HandleLeft), true
		}
	}
	return flow.HandleNone, flow.HandleNone, false
}

func inferHandles(sc, tc Point) (flow.Handle, flow.Handle) {
	dx := tc.X - sc.X
	dy := tc.Y - sc.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return flow.HandleRight, flow.HandleLeft
		}
		return flow.HandleLeft, flow.HandleRight
	}
	if dy > 0 {
		return flow.HandleBottom, flow.HandleTop
	}
	return flow.HandleTop, flow.HandleBottom
}
