package route

import (
	"sort"

	"github.com/ha1tch/flowchart-toolkit/pkg/flow"
)

// DefaultBaseShift is the distance between neighbouring parallel routes.
const DefaultBaseShift = 30.0

// Anchor is a (node, side) attachment used to group competing routes.
type Anchor struct {
	NodeID string
	Side   flow.Handle
}

// CompetingEdges returns the multi-segment edges whose node sequence visits
// a and b consecutively, in either order, sorted by id.
func CompetingEdges(edges []flow.Edge, a, b string) []flow.Edge {
	var out []flow.Edge
	for _, e := range edges {
		if spansPair(e.Sequence(), a, b) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func spansPair(seq []string, a, b string) bool {
	for i := 0; i+1 < len(seq); i++ {
		if (seq[i] == a && seq[i+1] == b) || (seq[i] == b && seq[i+1] == a) {
			return true
		}
	}
	return false
}

// Rank returns the position of id among competing edges, or -1.
func Rank(id string, competing []flow.Edge) int {
	for i, e := range competing {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// OffsetForRank turns a rank into a signed perpendicular shift. Even ranks
// go to the positive side and odd ranks to the negative side, each pair one
// base step further out: 0,1,2,3,4 -> +1,-1,+2,-2,+3 times base.
// A negative rank means no shift.
func OffsetForRank(rank int, base float64) float64 {
	if rank < 0 {
		return 0
	}
	step := float64(rank/2+1) * base
	if rank%2 == 1 {
		return -step
	}
	return step
}

// Shift moves p across the handle's primary direction: along x for top and
// bottom handles, along y for left and right.
func Shift(p Point, h flow.Handle, offset float64) Point {
	if h.Horizontal() {
		p.Y += offset
	} else {
		p.X += offset
	}
	return p
}

type span struct{ a, b string }

func newSpan(a, b string) span {
	if b < a {
		a, b = b, a
	}
	return span{a, b}
}

// offsetEngine assigns offsets during one routing pass. Sorted competitor
// ids are memoised per undirected span; the memo lives only as long as the
// engine, so results never depend on it.
type offsetEngine struct {
	base  float64
	edges []flow.Edge
	memo  map[span][]string
}

func newOffsetEngine(edges []flow.Edge, base float64) *offsetEngine {
	if base == 0 {
		base = DefaultBaseShift
	}
	return &offsetEngine{base: base, edges: edges, memo: make(map[span][]string)}
}

func (o *offsetEngine) competitors(a, b string) []string {
	key := newSpan(a, b)
	if ids, ok := o.memo[key]; ok {
		return ids
	}
	competing := CompetingEdges(o.edges, a, b)
	ids := make([]string, len(competing))
	for i, e := range competing {
		ids[i] = e.ID
	}
	o.memo[key] = ids
	return ids
}

// offset returns the shift for edgeID on the span a-b.
func (o *offsetEngine) offset(edgeID, a, b string) float64 {
	rank := -1
	for i, id := range o.competitors(a, b) {
		if id == edgeID {
			rank = i
			break
		}
	}
	return OffsetForRank(rank, o.base)
}
